package tools

import (
	"context"
	"strings"
	"time"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// FluxResource is one reconciled resource from `flux get all` output.
type FluxResource struct {
	Namespace string
	Name      string
	Revision  string
	Suspended bool
	Ready     bool
	Message   string
}

// Flux drives the reconciler CLI.
type Flux struct {
	runner  toolexec.Runner
	timeout time.Duration
}

func NewFlux(r toolexec.Runner) *Flux {
	return &Flux{
		runner:  r,
		timeout: timeoutFromEnv("KUBE_PRELINT_FLUX_TIMEOUT", defaultFluxTimeout),
	}
}

// Check runs the installation health check.
func (f *Flux) Check(ctx context.Context, kubeContext string) toolexec.Result {
	args := append(contextArgs(kubeContext), "check")
	return f.runner.Run(ctx, toolexec.Invocation{
		Program: "flux",
		Args:    args,
		Timeout: f.timeout,
	})
}

// GetAll reports reconciliation status for all resources across
// namespaces.
func (f *Flux) GetAll(ctx context.Context, kubeContext string) toolexec.Result {
	args := append(contextArgs(kubeContext), "get", "all", "-A")
	return f.runner.Run(ctx, toolexec.Invocation{
		Program: "flux",
		Args:    args,
		Timeout: f.timeout,
	})
}

// ParseFluxResources extracts per-resource rows from `flux get all -A`
// output. The output is a sequence of whitespace-aligned tables, one per
// resource kind, each headed by a NAMESPACE ... columns line. The
// REVISION cell is blank for never-reconciled resources, so the
// SUSPENDED/READY pair is located by value rather than by position.
func ParseFluxResources(output string) []FluxResource {
	var resources []FluxResource
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] == "NAMESPACE" {
			continue
		}

		pair := -1
		for i := 2; i+1 < len(fields); i++ {
			if isBoolCell(fields[i]) && isBoolCell(fields[i+1]) {
				pair = i
				break
			}
		}
		if pair < 0 {
			continue
		}

		resources = append(resources, FluxResource{
			Namespace: fields[0],
			Name:      fields[1],
			Revision:  strings.Join(fields[2:pair], " "),
			Suspended: strings.EqualFold(fields[pair], "true"),
			Ready:     strings.EqualFold(fields[pair+1], "true"),
			Message:   strings.Join(fields[pair+2:], " "),
		})
	}
	return resources
}

func isBoolCell(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}
