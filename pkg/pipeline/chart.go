package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/manifest"
	"github.com/systemstart/kube-prelint/pkg/tools"
)

const (
	stageHelmLint     = "helm lint"
	stageHelmTemplate = "helm template"
)

// ChartOptions are the caller-supplied rendering parameters.
type ChartOptions struct {
	ValuesFile  string
	Namespace   string
	ReleaseName string
}

// Chart validates a Helm chart: lint, render, re-split the rendered
// stream, then the dry-run tail per document. Lint and render failures
// short-circuit the run as a single artifact-level error.
func (p *Pipelines) Chart(ctx context.Context, chartPath string, opts ChartOptions) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	if !tools.IsChart(chartPath) {
		return nil, api.Errorf(api.KindNotFound,
			"path is not a Helm chart (missing Chart.yaml): %s", chartPath)
	}

	slog.Info("validating chart", "chart", chartPath, "context", kubeContext,
		"values", opts.ValuesFile, "namespace", opts.Namespace)

	report := newReport("chart", "Helm Chart Dry-Run Validation", kubeContext, chartPath)
	if opts.ValuesFile != "" {
		report.Details = append(report.Details, "Values: "+opts.ValuesFile)
	}
	if opts.Namespace != "" {
		report.Details = append(report.Details, "Namespace: "+opts.Namespace)
	}

	artifact := api.DocumentResult{Label: filepath.Base(chartPath), Source: chartPath}

	lint := preStageOutcome(stageHelmLint, p.helm.Lint(ctx, chartPath, opts.ValuesFile))
	artifact.Stages = append(artifact.Stages, lint)
	if lint.Status != api.StatusPass {
		report.Documents = []api.DocumentResult{artifact}
		report.Summarize()
		return report, nil
	}

	render := p.helm.Template(ctx, opts.ReleaseName, chartPath, opts.ValuesFile, opts.Namespace)
	outcome := preStageOutcome(stageHelmTemplate, render)
	if outcome.Status != api.StatusPass {
		artifact.Stages = append(artifact.Stages, outcome)
		report.Documents = []api.DocumentResult{artifact}
		report.Summarize()
		return report, nil
	}

	docs := manifest.SplitStream([]byte(render.Stdout), chartPath)
	if len(docs) == 0 {
		artifact.Stages = append(artifact.Stages,
			api.ErrorStage(stageHelmTemplate, api.KindPreStageFailure, "chart rendered no resources"))
		report.Documents = []api.DocumentResult{artifact}
		report.Summarize()
		return report, nil
	}
	outcome.Message = fmt.Sprintf("%d resources", len(docs))
	artifact.Stages = append(artifact.Stages, outcome)

	report.Documents = append([]api.DocumentResult{artifact}, p.documentResults(ctx, kubeContext, docs)...)
	report.Summarize()
	return report, nil
}
