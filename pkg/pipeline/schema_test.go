package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/kubecontext"
	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

const kubeconformJSON = `{
  "resources": [
    {"filename": "app.yaml", "kind": "Deployment", "name": "web", "status": "statusValid"},
    {"filename": "app.yaml", "kind": "Service", "name": "web", "status": "statusInvalid", "msg": "missing required field \"ports\""},
    {"filename": "crd.yaml", "kind": "Certificate", "name": "tls", "status": "statusSkipped"}
  ]
}`

func TestSchemaStatusMapping(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: Deployment\n")

	p, runner := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: 1, Stdout: kubeconformJSON}
	})

	report, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.NoError(t, err)

	require.Len(t, report.Documents, 3)
	assert.Equal(t, api.StatusPass, report.Documents[0].Terminal())
	assert.Equal(t, api.StatusFail, report.Documents[1].Terminal())
	assert.Contains(t, report.Documents[1].Stages[0].Message, "ports")
	assert.Equal(t, api.StatusSkipped, report.Documents[2].Stages[0].Status)

	// Skipped documents count as passed in the summary.
	assert.Equal(t, 2, report.Counts.Passed)
	assert.Equal(t, 1, report.Counts.Failed)

	require.Len(t, runner.invocations, 1)
	assert.Equal(t, "kubeconform", runner.invocations[0].Program)
}

func TestSchemaNoContextRequired(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: ConfigMap\n")

	// No selection at all: schema validation is offline.
	p := New(kubecontext.NewMemoryStore(), &scriptRunner{script: func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{Stdout: `{"resources": [{"filename": "app.yaml", "kind": "ConfigMap", "name": "cfg", "status": "statusValid"}]}`}
	}})

	report, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Counts.Passed)
	assert.Empty(t, report.Context)
}

func TestSchemaVersionAndStrictForwarded(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: ConfigMap\n")

	p, runner := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{Stdout: `{"resources": [{"filename": "app.yaml", "kind": "ConfigMap", "name": "cfg", "status": "statusValid"}]}`}
	})
	report, err := p.Schema(context.Background(), dir, SchemaOptions{KubernetesVersion: "1.29.0", Strict: true})
	require.NoError(t, err)

	inv := runner.invocations[0]
	assert.Contains(t, inv.Args, "-kubernetes-version")
	assert.Contains(t, inv.Args, "1.29.0")
	assert.Contains(t, inv.Args, "-strict")
	assert.Contains(t, report.Details, "Kubernetes version: 1.29.0")
	assert.Contains(t, report.Details, "Strict mode: enabled")
}

func TestSchemaToolMissing(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: ConfigMap\n")

	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: toolexec.ExitNotFound, Stderr: "kubeconform: not found"}
	})

	report, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.NoError(t, err)

	require.Len(t, report.Documents, 1)
	stage := report.Documents[0].Stages[0]
	assert.Equal(t, api.StatusError, stage.Status)
	assert.Equal(t, api.KindNotFound, stage.Kind)
}

func TestSchemaTimeout(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: ConfigMap\n")

	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: -1, TimedOut: true, Elapsed: 2 * time.Minute}
	})

	report, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.NoError(t, err)

	stage := report.Documents[0].Stages[0]
	assert.Equal(t, api.StatusError, stage.Status)
	assert.Equal(t, api.KindTimeout, stage.Kind)
}

func TestSchemaUnparsableFailure(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "app.yaml", "kind: ConfigMap\n")

	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: 1, Stderr: "failed opening cache directory"}
	})

	report, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.NoError(t, err)

	stage := report.Documents[0].Stages[0]
	assert.Equal(t, api.StatusError, stage.Status)
	assert.Equal(t, api.KindToolFailure, stage.Kind)
}

func TestSchemaNoResourcesFound(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "data.json", "{}")

	p, _ := newPipelines(t, nil)

	// kubeconform exits zero with nothing validated; that is not a pass.
	_, err := p.Schema(context.Background(), dir, SchemaOptions{})
	require.Error(t, err)
	assert.Equal(t, api.KindNotFound, api.KindOf(err))
	assert.Contains(t, err.Error(), "no YAML manifests found")
}

func TestSchemaMissingPath(t *testing.T) {
	p, _ := newPipelines(t, nil)
	_, err := p.Schema(context.Background(), filepath.Join(t.TempDir(), "missing"), SchemaOptions{})
	require.Error(t, err)
	assert.Equal(t, api.KindNotFound, api.KindOf(err))
}
