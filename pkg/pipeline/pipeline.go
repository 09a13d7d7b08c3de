// Package pipeline composes tool invocations into the fixed-stage
// validation pipelines, one per artifact kind. Documents are validated
// strictly sequentially in discovery order; a failing or timed-out
// invocation is recorded and the run continues, so every run returns a
// complete report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/kubecontext"
	"github.com/systemstart/kube-prelint/pkg/manifest"
	"github.com/systemstart/kube-prelint/pkg/toolexec"
	"github.com/systemstart/kube-prelint/pkg/tools"
)

const (
	stageClientDryRun = "client dry-run"
	stageServerDryRun = "server dry-run"

	timeRound = time.Second
)

// Pipelines exposes one operation per artifact kind, sharing the
// context store and the tool adapters.
type Pipelines struct {
	store       kubecontext.Store
	kubectl     *tools.Kubectl
	helm        *tools.Helm
	kubeconform *tools.Kubeconform
	flux        *tools.Flux
	argocd      *tools.Argocd
}

// New wires all tool adapters onto a single runner.
func New(store kubecontext.Store, runner toolexec.Runner) *Pipelines {
	return &Pipelines{
		store:       store,
		kubectl:     tools.NewKubectl(runner),
		helm:        tools.NewHelm(runner),
		kubeconform: tools.NewKubeconform(runner),
		flux:        tools.NewFlux(runner),
		argocd:      tools.NewArgocd(runner),
	}
}

// requireContext snapshots the selected context for a run. It fails
// before any subprocess is spawned when nothing is selected.
func (p *Pipelines) requireContext() (string, error) {
	name, ok := p.store.Current()
	if !ok {
		return "", api.Errorf(api.KindUnselected,
			"no context selected: select a context before running cluster-facing validation")
	}
	return name, nil
}

func newReport(pipeline, title, kubeContext, path string) *api.Report {
	return &api.Report{
		Pipeline: pipeline,
		Title:    title,
		Context:  kubeContext,
		Path:     path,
		RunID:    uuid.NewString(),
	}
}

// invocationOutcome maps a tool result onto a stage outcome for the
// dry-run tail: timeouts and missing binaries are ERROR, a plain
// non-zero exit is FAIL carrying captured stderr.
func invocationOutcome(stage string, res toolexec.Result) api.StageOutcome {
	switch {
	case res.TimedOut:
		return api.ErrorStage(stage, api.KindTimeout,
			fmt.Sprintf("timed out after %s", res.Elapsed.Round(timeRound)))
	case res.ExitCode == toolexec.ExitNotFound:
		return api.ErrorStage(stage, api.KindNotFound, strings.TrimSpace(res.Stderr))
	case res.ExitCode != 0:
		return api.FailStage(stage, strings.TrimSpace(res.Stderr))
	default:
		return api.PassStage(stage, tools.ParseWarnings(res.Stdout+"\n"+res.Stderr))
	}
}

// preStageOutcome maps a render/build/lint result. Any failure is an
// artifact-level ERROR: no documents could be produced, so there is
// nothing to attribute a FAIL to.
func preStageOutcome(stage string, res toolexec.Result) api.StageOutcome {
	switch {
	case res.TimedOut:
		return api.ErrorStage(stage, api.KindTimeout,
			fmt.Sprintf("timed out after %s", res.Elapsed.Round(timeRound)))
	case res.ExitCode == toolexec.ExitNotFound:
		return api.ErrorStage(stage, api.KindNotFound, strings.TrimSpace(res.Stderr))
	case res.ExitCode != 0:
		return api.ErrorStage(stage, api.KindPreStageFailure, strings.TrimSpace(res.Stderr))
	default:
		return api.PassStage(stage, nil)
	}
}

// dryRunStages runs the common client-then-server dry-run tail on one
// document. A client failure skips the server stage: a client-invalid
// resource has no business reaching the admission chain.
func (p *Pipelines) dryRunStages(ctx context.Context, kubeContext string, raw []byte) []api.StageOutcome {
	client := invocationOutcome(stageClientDryRun, p.kubectl.DryRunClient(ctx, kubeContext, raw))
	if client.Status != api.StatusPass {
		return []api.StageOutcome{client, api.SkipStage(stageServerDryRun)}
	}

	server := invocationOutcome(stageServerDryRun, p.kubectl.DryRunServer(ctx, kubeContext, raw))
	return []api.StageOutcome{client, server}
}

// documentResults validates each document in order through the dry-run
// tail. Documents that failed discovery are recorded as parse errors
// without spawning anything.
func (p *Pipelines) documentResults(ctx context.Context, kubeContext string, docs []manifest.Document) []api.DocumentResult {
	results := make([]api.DocumentResult, 0, len(docs))
	for _, doc := range docs {
		dr := api.DocumentResult{Label: doc.Label(), Source: doc.Source, Index: doc.Index}
		if doc.Err != nil {
			kind := api.KindOf(doc.Err)
			if kind == api.KindNone {
				kind = api.KindParseError
			}
			dr.Stages = []api.StageOutcome{api.ErrorStage("parse", kind, doc.Err.Error())}
		} else {
			dr.Stages = p.dryRunStages(ctx, kubeContext, doc.Raw)
		}
		results = append(results, dr)
	}
	return results
}

// Manifest validates raw manifests at path: every discovered document
// goes through the client and server dry-run stages verbatim.
func (p *Pipelines) Manifest(ctx context.Context, path string) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	docs, err := manifest.Discover(path)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, api.Errorf(api.KindNotFound, "no YAML manifests found under %s", path)
	}

	slog.Info("validating manifests", "path", path, "context", kubeContext, "documents", len(docs))

	report := newReport("manifest", "Manifest Dry-Run Validation", kubeContext, path)
	report.Documents = p.documentResults(ctx, kubeContext, docs)
	report.Summarize()
	return report, nil
}

// Contexts pairs the context names known to the cluster CLI with the
// in-memory selection.
type Contexts struct {
	Available []string
	Current   string // the kubeconfig's own persisted current context
	Selected  string // the in-memory selection, empty if none
}

// ListContexts queries available contexts. Pure read; the selection and
// the kubeconfig are left untouched.
func (p *Pipelines) ListContexts(ctx context.Context) (*Contexts, error) {
	names, res := p.kubectl.Contexts(ctx)
	if res.ExitCode != 0 {
		return nil, resultError(res, "listing contexts")
	}

	// current-context exits non-zero when none is set; that is not an
	// error for listing purposes.
	current, _ := p.kubectl.CurrentContext(ctx)

	c := &Contexts{Available: names, Current: current}
	c.Selected, _ = p.store.Current()
	return c, nil
}

// SelectContext records the context for subsequent cluster-facing
// operations. No cluster I/O: existence is checked by the first
// cluster-facing call, which fails fast if the name is unknown.
func (p *Pipelines) SelectContext(name string) error {
	if err := p.store.Select(name); err != nil {
		return err
	}
	slog.Info("context selected", "context", name)
	return nil
}

// resultError converts a failed tool result into a classified error for
// operations that surface failures to the caller instead of a report.
func resultError(res toolexec.Result, activity string) error {
	switch {
	case res.TimedOut:
		return api.Errorf(api.KindTimeout, "%s: timed out after %s", activity, res.Elapsed.Round(timeRound))
	case res.ExitCode == toolexec.ExitNotFound:
		return api.Errorf(api.KindNotFound, "%s: %s", activity, strings.TrimSpace(res.Stderr))
	default:
		return api.Errorf(api.KindToolFailure, "%s: %s", activity, strings.TrimSpace(res.Stderr))
	}
}
