package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func contextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contexts",
		Short: "List available cluster contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			contexts, err := pipelines.ListContexts(cmd.Context())
			if err != nil {
				return err
			}

			if len(contexts.Available) == 0 {
				fmt.Println("No contexts found. Is kubectl configured?")
				return nil
			}

			fmt.Println("Available Kubernetes contexts:")
			fmt.Println()
			for _, name := range contexts.Available {
				marker := ""
				switch name {
				case contexts.Selected:
					marker = " <-- selected"
				case contexts.Current:
					marker = " (kubeconfig current)"
				}
				fmt.Printf("  - %s%s\n", name, marker)
			}

			fmt.Println()
			if contexts.Selected != "" {
				fmt.Printf("Selected context: %s\n", contexts.Selected)
			} else {
				fmt.Println("No context selected. Pass --context to cluster-facing commands.")
			}
			return nil
		},
	}
}

func fluxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flux",
		Short: "Inspect Flux installation and reconciliation state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify Flux installation and component health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := pipelines.FluxCheck(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(r)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Reconciliation status for all Flux resources across namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := pipelines.FluxStatus(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(r)
		},
	})

	return cmd
}

func argocdCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "argocd",
		Short: "Inspect ArgoCD application sync and health state",
	}
	cmd.PersistentFlags().StringVar(&namespace, "namespace", "",
		"namespace holding the Application resources (auto-detected when empty)")

	cmd.AddCommand(&cobra.Command{
		Use:   "apps",
		Short: "Sync and health status of every ArgoCD application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := pipelines.ArgoApps(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			return printReport(r)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "app NAME",
		Short: "Detailed status of one ArgoCD application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := pipelines.ArgoApp(cmd.Context(), args[0], namespace)
			if err != nil {
				return err
			}
			return printReport(r)
		},
	})

	return cmd
}
