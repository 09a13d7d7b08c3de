package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// Per-resource statuses reported by kubeconform's JSON output.
const (
	SchemaStatusValid   = "statusValid"
	SchemaStatusInvalid = "statusInvalid"
	SchemaStatusError   = "statusError"
	SchemaStatusSkipped = "statusSkipped"
)

// SchemaResource is one validated resource from kubeconform output.
type SchemaResource struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Status   string `json:"status"`
	Msg      string `json:"msg"`
}

// Kubeconform drives the offline schema-validator CLI.
type Kubeconform struct {
	runner  toolexec.Runner
	timeout time.Duration
}

func NewKubeconform(r toolexec.Runner) *Kubeconform {
	return &Kubeconform{
		runner:  r,
		timeout: timeoutFromEnv("KUBE_PRELINT_KUBECONFORM_TIMEOUT", defaultKubeconformTimeout),
	}
}

// Validate runs kubeconform on a manifest file or directory. Missing
// schemas are ignored rather than failing the run; kubernetesVersion
// "master" (or empty) uses the upstream default schema set.
func (c *Kubeconform) Validate(ctx context.Context, path, kubernetesVersion string, strict bool) toolexec.Result {
	args := []string{"-output", "json", "-summary", "-ignore-missing-schemas"}
	if kubernetesVersion != "" && kubernetesVersion != "master" {
		args = append(args, "-kubernetes-version", kubernetesVersion)
	}
	if strict {
		args = append(args, "-strict")
	}
	args = append(args, path)

	return c.runner.Run(ctx, toolexec.Invocation{
		Program: "kubeconform",
		Args:    args,
		Timeout: c.timeout,
	})
}

// ParseSchemaResources decodes kubeconform stdout. Both output shapes
// are handled: a wrapped object {"resources": [...]} and JSONL with one
// resource object per line.
func ParseSchemaResources(stdout string) []SchemaResource {
	stdout = strings.TrimSpace(stdout)
	if stdout == "" {
		return nil
	}

	var wrapped struct {
		Resources []SchemaResource `json:"resources"`
	}
	if err := json.Unmarshal([]byte(stdout), &wrapped); err == nil && wrapped.Resources != nil {
		return wrapped.Resources
	}

	var resources []SchemaResource
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var r SchemaResource
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		if r.Filename == "" {
			continue
		}
		resources = append(resources, r)
	}
	return resources
}
