package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/tools"
)

const (
	stageFluxHealth = "health"
	stageFluxReady  = "ready"
)

// FluxCheck verifies the Flux installation: a single pass/fail outcome,
// not per-document.
func (p *Pipelines) FluxCheck(ctx context.Context) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	slog.Info("running flux check", "context", kubeContext)

	report := newReport("flux-check", "Flux Health Check", kubeContext, "")
	res := p.flux.Check(ctx, kubeContext)

	output := strings.TrimSpace(res.Stdout + res.Stderr)
	doc := api.DocumentResult{Label: "flux check"}

	outcome := invocationOutcome(stageFluxHealth, res)
	if outcome.Status == api.StatusFail {
		// flux check writes its findings to both streams; keep all of it.
		outcome.Message = output
	}
	doc.Stages = []api.StageOutcome{outcome}

	if output != "" {
		report.Details = append(report.Details, strings.Split(output, "\n")...)
	}
	report.Documents = []api.DocumentResult{doc}
	report.Summarize()
	return report, nil
}

// FluxStatus reports reconciliation state across namespaces, one
// outcome per reported resource. Suspended resources are SKIPPED.
func (p *Pipelines) FluxStatus(ctx context.Context) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	slog.Info("fetching flux status", "context", kubeContext)

	report := newReport("flux-status", "Flux Reconciliation Status", kubeContext, "")
	res := p.flux.GetAll(ctx, kubeContext)

	if res.TimedOut || res.ExitCode != 0 {
		report.Documents = []api.DocumentResult{{
			Label:  "flux get all",
			Stages: []api.StageOutcome{invocationOutcome(stageFluxReady, res)},
		}}
		report.Summarize()
		return report, nil
	}

	resources := tools.ParseFluxResources(res.Stdout)
	if len(resources) == 0 {
		outcome := api.PassStage(stageFluxReady, nil)
		outcome.Message = "no resources found"
		report.Documents = []api.DocumentResult{{
			Label:  "flux get all",
			Stages: []api.StageOutcome{outcome},
		}}
		report.Summarize()
		return report, nil
	}

	for i, r := range resources {
		dr := api.DocumentResult{Label: r.Name, Source: r.Namespace, Index: i}
		switch {
		case r.Suspended:
			dr.Stages = []api.StageOutcome{api.SkipStage(stageFluxReady)}
		case r.Ready:
			dr.Stages = []api.StageOutcome{api.PassStage(stageFluxReady, nil)}
		default:
			dr.Stages = []api.StageOutcome{api.FailStage(stageFluxReady, r.Message)}
		}
		report.Documents = append(report.Documents, dr)
	}

	report.Summarize()
	return report, nil
}
