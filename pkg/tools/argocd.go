package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// ArgoApp summarizes one ArgoCD Application.
type ArgoApp struct {
	Name           string
	Namespace      string
	Project        string
	SyncStatus     string
	HealthStatus   string
	RepoURL        string
	Path           string
	TargetRevision string
	Resources      []ArgoResource
	Conditions     []string
}

// ArgoResource is one managed resource inside an Application's status.
type ArgoResource struct {
	Kind      string
	Namespace string
	Name      string
	Status    string
	Health    string
}

// Argocd drives the argocd CLI in core mode, so the selected kube
// context is the only cluster credential involved.
type Argocd struct {
	runner  toolexec.Runner
	timeout time.Duration
}

func NewArgocd(r toolexec.Runner) *Argocd {
	return &Argocd{
		runner:  r,
		timeout: timeoutFromEnv("KUBE_PRELINT_ARGOCD_TIMEOUT", defaultArgocdTimeout),
	}
}

func argoArgs(kubeContext, namespace string) []string {
	args := []string{"--core", "--kube-context", kubeContext}
	if namespace != "" {
		args = append(args, "-n", namespace)
	}
	return args
}

// AppList lists Applications as JSON.
func (a *Argocd) AppList(ctx context.Context, kubeContext, namespace string) toolexec.Result {
	args := append([]string{"app", "list"}, argoArgs(kubeContext, namespace)...)
	args = append(args, "-o", "json")
	return a.runner.Run(ctx, toolexec.Invocation{
		Program: "argocd",
		Args:    args,
		Timeout: a.timeout,
	})
}

// AppGet fetches one Application's detailed status as JSON.
func (a *Argocd) AppGet(ctx context.Context, kubeContext, name, namespace string) toolexec.Result {
	args := append([]string{"app", "get", name}, argoArgs(kubeContext, namespace)...)
	args = append(args, "-o", "json")
	return a.runner.Run(ctx, toolexec.Invocation{
		Program: "argocd",
		Args:    args,
		Timeout: a.timeout,
	})
}

// DetectNamespace finds the namespace ArgoCD is installed in by
// locating the argocd-cm configmap. Returns empty when not found.
func (a *Argocd) DetectNamespace(ctx context.Context, kubeContext string) string {
	res := a.runner.Run(ctx, toolexec.Invocation{
		Program: "kubectl",
		Args: []string{
			"get", "configmap", "argocd-cm",
			"--all-namespaces",
			"--context", kubeContext,
			"-o", "jsonpath={.items[0].metadata.namespace}",
		},
		Timeout: a.timeout,
	})
	if res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// rawApp mirrors the subset of the Application object we consume.
type rawApp struct {
	Metadata struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"metadata"`
	Spec struct {
		Project string    `json:"project"`
		Source  rawSource `json:"source"`
		Sources []rawSource `json:"sources"`
	} `json:"spec"`
	Status struct {
		Sync struct {
			Status string `json:"status"`
		} `json:"sync"`
		Health struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"health"`
		Resources []struct {
			Kind      string `json:"kind"`
			Namespace string `json:"namespace"`
			Name      string `json:"name"`
			Status    string `json:"status"`
			Health    struct {
				Status string `json:"status"`
			} `json:"health"`
		} `json:"resources"`
		Conditions []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"conditions"`
	} `json:"status"`
}

type rawSource struct {
	RepoURL        string `json:"repoURL"`
	Path           string `json:"path"`
	TargetRevision string `json:"targetRevision"`
}

func (r rawApp) toApp() ArgoApp {
	src := r.Spec.Source
	if src.RepoURL == "" && len(r.Spec.Sources) > 0 {
		src = r.Spec.Sources[0]
	}

	app := ArgoApp{
		Name:           r.Metadata.Name,
		Namespace:      r.Metadata.Namespace,
		Project:        r.Spec.Project,
		SyncStatus:     orUnknown(r.Status.Sync.Status),
		HealthStatus:   orUnknown(r.Status.Health.Status),
		RepoURL:        src.RepoURL,
		Path:           src.Path,
		TargetRevision: src.TargetRevision,
	}

	for _, res := range r.Status.Resources {
		app.Resources = append(app.Resources, ArgoResource{
			Kind:      res.Kind,
			Namespace: res.Namespace,
			Name:      res.Name,
			Status:    res.Status,
			Health:    res.Health.Status,
		})
	}
	for _, c := range r.Status.Conditions {
		if c.Message != "" {
			app.Conditions = append(app.Conditions, c.Type+": "+c.Message)
		} else {
			app.Conditions = append(app.Conditions, c.Type)
		}
	}
	return app
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// ParseArgoApps decodes `argocd app list -o json` output.
func ParseArgoApps(stdout string) ([]ArgoApp, error) {
	var items []rawApp
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		return nil, fmt.Errorf("parsing argocd app list output: %w", err)
	}
	apps := make([]ArgoApp, 0, len(items))
	for _, item := range items {
		apps = append(apps, item.toApp())
	}
	return apps, nil
}

// ParseArgoApp decodes `argocd app get -o json` output.
func ParseArgoApp(stdout string) (ArgoApp, error) {
	var item rawApp
	if err := json.Unmarshal([]byte(stdout), &item); err != nil {
		return ArgoApp{}, fmt.Errorf("parsing argocd app get output: %w", err)
	}
	return item.toApp(), nil
}
