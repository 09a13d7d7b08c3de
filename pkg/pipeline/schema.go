package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/toolexec"
	"github.com/systemstart/kube-prelint/pkg/tools"
)

const stageSchema = "schema"

// SchemaOptions tune the offline schema validation.
type SchemaOptions struct {
	// KubernetesVersion selects the schema set, e.g. "1.29.0".
	// Empty or "master" uses the upstream default.
	KubernetesVersion string
	// Strict rejects properties absent from the schema.
	Strict bool
}

// Schema validates manifests against Kubernetes JSON schemas offline.
// No cluster is contacted, so no context selection is required.
func (p *Pipelines) Schema(ctx context.Context, path string, opts SchemaOptions) (*api.Report, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, api.Errorf(api.KindNotFound, "path does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking path %s: %w", path, err)
	}

	slog.Info("validating schemas", "path", path,
		"kubernetesVersion", opts.KubernetesVersion, "strict", opts.Strict)

	report := newReport("schema", "Kubeconform Schema Validation", "", path)
	if opts.KubernetesVersion != "" && opts.KubernetesVersion != "master" {
		report.Details = append(report.Details, "Kubernetes version: "+opts.KubernetesVersion)
	}
	if opts.Strict {
		report.Details = append(report.Details, "Strict mode: enabled")
	}

	res := p.kubeconform.Validate(ctx, path, opts.KubernetesVersion, opts.Strict)

	if res.TimedOut || res.ExitCode == toolexec.ExitNotFound {
		report.Documents = []api.DocumentResult{{
			Label:  "kubeconform",
			Source: path,
			Stages: []api.StageOutcome{preStageOutcome(stageSchema, res)},
		}}
		report.Summarize()
		return report, nil
	}

	resources := tools.ParseSchemaResources(res.Stdout)
	if len(resources) == 0 {
		if res.ExitCode != 0 {
			report.Documents = []api.DocumentResult{{
				Label:  "kubeconform",
				Source: path,
				Stages: []api.StageOutcome{
					api.ErrorStage(stageSchema, api.KindToolFailure, strings.TrimSpace(res.Stderr)),
				},
			}}
			report.Summarize()
			return report, nil
		}
		return nil, api.Errorf(api.KindNotFound, "no YAML manifests found under %s", path)
	}

	for i, r := range resources {
		label := r.Kind
		if r.Name != "" {
			label = r.Kind + "/" + r.Name
		}
		dr := api.DocumentResult{Label: label, Source: r.Filename, Index: i}

		switch r.Status {
		case tools.SchemaStatusValid:
			dr.Stages = []api.StageOutcome{api.PassStage(stageSchema, nil)}
		case tools.SchemaStatusInvalid:
			dr.Stages = []api.StageOutcome{api.FailStage(stageSchema, r.Msg)}
		case tools.SchemaStatusSkipped:
			dr.Stages = []api.StageOutcome{api.SkipStage(stageSchema)}
		default:
			dr.Stages = []api.StageOutcome{api.ErrorStage(stageSchema, api.KindToolFailure, r.Msg)}
		}
		report.Documents = append(report.Documents, dr)
	}

	report.Summarize()
	return report, nil
}
