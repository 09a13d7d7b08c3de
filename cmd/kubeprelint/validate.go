package main

import (
	"github.com/spf13/cobra"

	"github.com/systemstart/kube-prelint/pkg/pipeline"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate declarative artifacts",
	}
	cmd.AddCommand(manifestCmd(), overlayCmd(), chartCmd(), schemaCmd())
	return cmd
}

func manifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest PATH",
		Short: "Dry-run raw manifests (client, then server)",
		Long: `Discovers every YAML document under PATH (a file or a directory) and
runs each one through kubectl apply --dry-run=client followed by
--dry-run=server. Requires --context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pipelines.Manifest(cmd.Context(), normalizePath(args[0]))
			if err != nil {
				return err
			}
			return printReport(r)
		},
	}
}

func overlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overlay PATH",
		Short: "Build a Kustomize overlay and dry-run the rendered manifests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pipelines.Overlay(cmd.Context(), normalizePath(args[0]))
			if err != nil {
				return err
			}
			return printReport(r)
		},
	}
}

func chartCmd() *cobra.Command {
	var opts pipeline.ChartOptions

	cmd := &cobra.Command{
		Use:   "chart PATH",
		Short: "Lint and render a Helm chart, then dry-run the rendered manifests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ValuesFile != "" {
				opts.ValuesFile = normalizePath(opts.ValuesFile)
			}
			r, err := pipelines.Chart(cmd.Context(), normalizePath(args[0]), opts)
			if err != nil {
				return err
			}
			return printReport(r)
		},
	}

	cmd.Flags().StringVar(&opts.ValuesFile, "values", "", "values file for lint and render")
	cmd.Flags().StringVar(&opts.Namespace, "namespace", "", "namespace for rendering")
	cmd.Flags().StringVar(&opts.ReleaseName, "release-name", "", "release name for helm template")
	return cmd
}

func schemaCmd() *cobra.Command {
	var opts pipeline.SchemaOptions

	cmd := &cobra.Command{
		Use:   "schema PATH",
		Short: "Validate manifests against Kubernetes JSON schemas offline",
		Long: `Runs kubeconform against PATH without contacting a cluster, so no
--context is needed. Catches unknown fields, type mismatches and
missing required fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pipelines.Schema(cmd.Context(), normalizePath(args[0]), opts)
			if err != nil {
				return err
			}
			return printReport(r)
		},
	}

	cmd.Flags().StringVar(&opts.KubernetesVersion, "kubernetes-version", "master",
		"Kubernetes version for schema lookup, e.g. 1.29.0")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false,
		"reject properties not present in the schema")
	return cmd
}
