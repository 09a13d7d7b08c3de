// kubeprelint – validate Kubernetes declarative artifacts before they
// are committed or reconciled.
//
// Usage:
//
//	kubeprelint contexts                     – list cluster contexts
//	kubeprelint validate manifest PATH       – kubectl dry-run raw manifests
//	kubeprelint validate overlay PATH        – build + dry-run a Kustomize overlay
//	kubeprelint validate chart PATH          – lint, render + dry-run a Helm chart
//	kubeprelint validate schema PATH         – offline kubeconform schema check
//	kubeprelint flux check|status            – Flux installation health / reconciliation state
//	kubeprelint argocd apps|app NAME         – ArgoCD application sync and health
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/kubecontext"
	"github.com/systemstart/kube-prelint/pkg/logging"
	"github.com/systemstart/kube-prelint/pkg/pipeline"
	"github.com/systemstart/kube-prelint/pkg/report"
	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

var version = "dev"

const (
	_ = iota
	exitSetupFailed
	exitOperationFailed
	exitValidationFailed
)

// errValidationFailed marks a run that completed but found problems,
// so the process can exit non-zero after the report is printed.
var errValidationFailed = errors.New("validation failed")

var (
	kubeContext string
	loggingType string
	logLevel    string

	pipelines *pipeline.Pipelines
)

func main() {
	root := &cobra.Command{
		Use:   "kubeprelint",
		Short: "Pre-commit validation for Kubernetes declarative artifacts",
		Long: `kubeprelint composes kubectl, helm, kubeconform, flux and argocd into
deterministic validation pipelines so manifests, overlays and charts can
be checked against a cluster (dry-run only, nothing is persisted) before
they are committed.

The cluster context is selected per run via --context; the kubeconfig's
own current-context is never read implicitly and never modified.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&kubeContext, "context", "",
		"cluster context for cluster-facing operations (held in memory, kubeconfig untouched)")
	root.PersistentFlags().StringVar(&loggingType, "logging-type", "tint",
		"logging type: json, text or tint")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging level: debug, info, warn, error")

	root.AddCommand(contextsCmd(), validateCmd(), fluxCmd(), argocdCmd())

	if err := root.Execute(); err != nil {
		if errors.Is(err, errValidationFailed) {
			os.Exit(exitValidationFailed)
		}
		slog.Error("operation failed", "error", err, "kind", api.KindOf(err))
		os.Exit(exitOperationFailed)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	if err := logging.Initialize(loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSetupFailed)
	}

	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
	} else {
		slog.Debug("using .env file")
	}

	store := kubecontext.NewMemoryStore()
	pipelines = pipeline.New(store, &toolexec.ExecRunner{})

	if kubeContext != "" {
		if err := pipelines.SelectContext(kubeContext); err != nil {
			return err
		}
	}
	return nil
}

// printReport writes the rendered report to stdout and converts a
// failing run into the validation-failed exit path.
func printReport(r *api.Report) error {
	fmt.Print(report.Render(r))
	if !r.Passed() {
		return errValidationFailed
	}
	return nil
}

// normalizePath expands a leading ~ and resolves relative paths.
func normalizePath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
