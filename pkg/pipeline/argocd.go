package pipeline

import (
	"context"
	"log/slog"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/tools"
)

const (
	stageArgoSync   = "sync"
	stageArgoHealth = "health"
)

func appStages(app tools.ArgoApp) []api.StageOutcome {
	var stages []api.StageOutcome

	if app.SyncStatus == "Synced" {
		stages = append(stages, api.PassStage(stageArgoSync, nil))
	} else {
		stages = append(stages, api.FailStage(stageArgoSync, "sync status: "+app.SyncStatus))
	}

	if app.HealthStatus == "Healthy" {
		stages = append(stages, api.PassStage(stageArgoHealth, nil))
	} else {
		stages = append(stages, api.FailStage(stageArgoHealth, "health status: "+app.HealthStatus))
	}

	return stages
}

func (p *Pipelines) argoNamespace(ctx context.Context, kubeContext, namespace string) (string, error) {
	if namespace != "" {
		return namespace, nil
	}
	ns := p.argocd.DetectNamespace(ctx, kubeContext)
	if ns == "" {
		return "", api.Errorf(api.KindNotFound,
			"could not auto-detect the ArgoCD namespace (argocd-cm configmap not found); pass the namespace explicitly")
	}
	return ns, nil
}

// ArgoApps reports sync and health state for every ArgoCD Application,
// one document per app.
func (p *Pipelines) ArgoApps(ctx context.Context, namespace string) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	ns, err := p.argoNamespace(ctx, kubeContext, namespace)
	if err != nil {
		return nil, err
	}

	slog.Info("listing argocd applications", "context", kubeContext, "namespace", ns)

	report := newReport("argocd-apps", "ArgoCD Application Status", kubeContext, "")
	res := p.argocd.AppList(ctx, kubeContext, ns)
	if res.TimedOut || res.ExitCode != 0 {
		report.Documents = []api.DocumentResult{{
			Label:  "argocd app list",
			Stages: []api.StageOutcome{invocationOutcome(stageArgoSync, res)},
		}}
		report.Summarize()
		return report, nil
	}

	apps, err := tools.ParseArgoApps(res.Stdout)
	if err != nil {
		report.Documents = []api.DocumentResult{{
			Label:  "argocd app list",
			Stages: []api.StageOutcome{api.ErrorStage(stageArgoSync, api.KindParseError, err.Error())},
		}}
		report.Summarize()
		return report, nil
	}

	if len(apps) == 0 {
		outcome := api.PassStage(stageArgoSync, nil)
		outcome.Message = "no applications found"
		report.Documents = []api.DocumentResult{{
			Label:  "argocd app list",
			Stages: []api.StageOutcome{outcome},
		}}
		report.Summarize()
		return report, nil
	}

	for i, app := range apps {
		report.Documents = append(report.Documents, api.DocumentResult{
			Label:  app.Name,
			Source: app.Namespace,
			Index:  i,
			Stages: appStages(app),
		})
	}

	report.Summarize()
	return report, nil
}

// ArgoApp reports one Application in detail: the app itself plus one
// document per managed resource.
func (p *Pipelines) ArgoApp(ctx context.Context, name, namespace string) (*api.Report, error) {
	kubeContext, err := p.requireContext()
	if err != nil {
		return nil, err
	}

	ns, err := p.argoNamespace(ctx, kubeContext, namespace)
	if err != nil {
		return nil, err
	}

	slog.Info("fetching argocd application", "app", name, "context", kubeContext, "namespace", ns)

	report := newReport("argocd-app", "ArgoCD Application Status", kubeContext, name)
	res := p.argocd.AppGet(ctx, kubeContext, name, ns)
	if res.TimedOut || res.ExitCode != 0 {
		report.Documents = []api.DocumentResult{{
			Label:  name,
			Stages: []api.StageOutcome{invocationOutcome(stageArgoSync, res)},
		}}
		report.Summarize()
		return report, nil
	}

	app, err := tools.ParseArgoApp(res.Stdout)
	if err != nil {
		report.Documents = []api.DocumentResult{{
			Label:  name,
			Stages: []api.StageOutcome{api.ErrorStage(stageArgoSync, api.KindParseError, err.Error())},
		}}
		report.Summarize()
		return report, nil
	}

	report.Details = append(report.Details, app.Conditions...)
	report.Documents = append(report.Documents, api.DocumentResult{
		Label:  app.Name,
		Source: app.Namespace,
		Stages: appStages(app),
	})

	for i, r := range app.Resources {
		dr := api.DocumentResult{
			Label:  r.Kind + "/" + r.Name,
			Source: r.Namespace,
			Index:  i + 1,
		}
		healthy := r.Health == "" || r.Health == "Healthy"
		if r.Status == "Synced" && healthy {
			dr.Stages = []api.StageOutcome{api.PassStage(stageArgoSync, nil)}
		} else {
			msg := "sync: " + r.Status
			if r.Health != "" {
				msg += ", health: " + r.Health
			}
			dr.Stages = []api.StageOutcome{api.FailStage(stageArgoSync, msg)}
		}
		report.Documents = append(report.Documents, dr)
	}

	report.Summarize()
	return report, nil
}
