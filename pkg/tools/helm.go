package tools

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// DefaultReleaseName is used when the caller does not supply one for
// chart rendering.
const DefaultReleaseName = "release-name"

// Helm drives the package-manager CLI. Lint and template are both
// local-only operations; no cluster context is involved.
type Helm struct {
	runner  toolexec.Runner
	timeout time.Duration
}

func NewHelm(r toolexec.Runner) *Helm {
	return &Helm{
		runner:  r,
		timeout: timeoutFromEnv("KUBE_PRELINT_HELM_TIMEOUT", defaultHelmTimeout),
	}
}

// Lint runs helm lint on a chart directory.
func (h *Helm) Lint(ctx context.Context, chart, valuesFile string) toolexec.Result {
	args := []string{"lint", chart}
	if valuesFile != "" {
		args = append(args, "-f", valuesFile)
	}
	return h.runner.Run(ctx, toolexec.Invocation{
		Program: "helm",
		Args:    args,
		Timeout: h.timeout,
	})
}

// Template renders a chart to a manifest stream on stdout.
func (h *Helm) Template(ctx context.Context, releaseName, chart, valuesFile, namespace string) toolexec.Result {
	if releaseName == "" {
		releaseName = DefaultReleaseName
	}
	args := []string{"template", releaseName, chart}
	if valuesFile != "" {
		args = append(args, "-f", valuesFile)
	}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	return h.runner.Run(ctx, toolexec.Invocation{
		Program: "helm",
		Args:    args,
		Timeout: h.timeout,
	})
}

// IsChart reports whether path is a Helm chart directory (or a file
// inside one), marked by Chart.yaml.
func IsChart(path string) bool {
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	dir := path
	if !st.IsDir() {
		dir = filepath.Dir(path)
	}
	for _, name := range []string{"Chart.yaml", "chart.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
