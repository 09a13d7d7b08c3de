package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// kustomizationFilenames are the marker files that make a directory a
// Kustomize overlay.
var kustomizationFilenames = []string{"kustomization.yaml", "kustomization.yml", "Kustomization"}

// Kubectl drives the cluster-facing CLI. Every cluster-targeting call
// receives the context explicitly; nothing relies on the kubeconfig's
// own current-context.
type Kubectl struct {
	runner  toolexec.Runner
	timeout time.Duration
}

func NewKubectl(r toolexec.Runner) *Kubectl {
	return &Kubectl{
		runner:  r,
		timeout: timeoutFromEnv("KUBE_PRELINT_KUBECTL_TIMEOUT", defaultKubectlTimeout),
	}
}

func contextArgs(kubeContext string) []string {
	if kubeContext == "" {
		return nil
	}
	return []string{"--context", kubeContext}
}

// DryRunClient validates a manifest locally, without a network round trip.
func (k *Kubectl) DryRunClient(ctx context.Context, kubeContext string, manifest []byte) toolexec.Result {
	return k.dryRun(ctx, kubeContext, "client", manifest)
}

// DryRunServer submits a manifest through the API server's admission
// chain without persisting it.
func (k *Kubectl) DryRunServer(ctx context.Context, kubeContext string, manifest []byte) toolexec.Result {
	return k.dryRun(ctx, kubeContext, "server", manifest)
}

func (k *Kubectl) dryRun(ctx context.Context, kubeContext, mode string, manifest []byte) toolexec.Result {
	args := append(contextArgs(kubeContext), "apply", "--dry-run="+mode, "-f", "-")
	return k.runner.Run(ctx, toolexec.Invocation{
		Program: "kubectl",
		Args:    args,
		Stdin:   manifest,
		Timeout: k.timeout,
	})
}

// KustomizeBuild renders an overlay directory to a manifest stream on
// stdout. Building is local; no context is involved.
func (k *Kubectl) KustomizeBuild(ctx context.Context, dir string) toolexec.Result {
	return k.runner.Run(ctx, toolexec.Invocation{
		Program: "kubectl",
		Args:    []string{"kustomize", dir},
		Timeout: k.timeout,
	})
}

// Contexts lists the context names known to the CLI's configuration.
func (k *Kubectl) Contexts(ctx context.Context) ([]string, toolexec.Result) {
	res := k.runner.Run(ctx, toolexec.Invocation{
		Program: "kubectl",
		Args:    []string{"config", "get-contexts", "-o", "name"},
		Timeout: k.timeout,
	})
	if res.ExitCode != 0 {
		return nil, res
	}
	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, res
}

// CurrentContext reports the kubeconfig's own persisted current
// context, empty if none is set.
func (k *Kubectl) CurrentContext(ctx context.Context) (string, toolexec.Result) {
	res := k.runner.Run(ctx, toolexec.Invocation{
		Program: "kubectl",
		Args:    []string{"config", "current-context"},
		Timeout: k.timeout,
	})
	if res.ExitCode != 0 {
		return "", res
	}
	return strings.TrimSpace(res.Stdout), res
}

// IsKustomization reports whether path names or contains a
// kustomization file.
func IsKustomization(path string) bool {
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !st.IsDir() {
		name := filepath.Base(path)
		for _, k := range kustomizationFilenames {
			if name == k {
				return true
			}
		}
		return false
	}
	for _, k := range kustomizationFilenames {
		if _, err := os.Stat(filepath.Join(path, k)); err == nil {
			return true
		}
	}
	return false
}

// KustomizationDir resolves path to the overlay directory: the parent
// when path names the kustomization file itself.
func KustomizationDir(path string) string {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// ParseWarnings extracts warning and deprecation lines from dry-run
// output so a passing stage can still surface them.
func ParseWarnings(output string) []string {
	var warnings []string
	for _, line := range strings.Split(output, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		lower := strings.ToLower(stripped)
		if strings.Contains(lower, "deprecated") || strings.HasPrefix(lower, "warning:") {
			warnings = append(warnings, stripped)
		}
	}
	return warnings
}
