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

const stageKustomizeBuild = "kustomize build"

// Overlay validates a Kustomize overlay: build the overlay to a
// manifest stream, re-split it into documents, then run the dry-run
// tail per document. A build failure short-circuits the run as a single
// artifact-level error, since no documents exist to attribute it to.
func (p *Pipelines) Overlay(ctx context.Context, path string) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	if !tools.IsKustomization(path) {
		return nil, api.Errorf(api.KindNotFound,
			"path is not a Kustomize overlay (missing kustomization.yaml): %s", path)
	}
	dir := tools.KustomizationDir(path)

	slog.Info("validating overlay", "dir", dir, "context", kubeContext)

	report := newReport("overlay", "Kustomize Dry-Run Validation", kubeContext, path)
	artifact := api.DocumentResult{Label: filepath.Base(dir), Source: path}

	build := p.kubectl.KustomizeBuild(ctx, dir)
	outcome := preStageOutcome(stageKustomizeBuild, build)
	if outcome.Status != api.StatusPass {
		artifact.Stages = []api.StageOutcome{outcome}
		report.Documents = []api.DocumentResult{artifact}
		report.Summarize()
		return report, nil
	}

	docs := manifest.SplitStream([]byte(build.Stdout), path)
	if len(docs) == 0 {
		artifact.Stages = []api.StageOutcome{
			api.ErrorStage(stageKustomizeBuild, api.KindPreStageFailure, "build produced no resources"),
		}
		report.Documents = []api.DocumentResult{artifact}
		report.Summarize()
		return report, nil
	}
	outcome.Message = fmt.Sprintf("%d resources", len(docs))
	artifact.Stages = []api.StageOutcome{outcome}

	report.Documents = append([]api.DocumentResult{artifact}, p.documentResults(ctx, kubeContext, docs)...)
	report.Summarize()
	return report, nil
}
