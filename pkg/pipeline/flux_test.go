package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemstart/kube-prelint/pkg/api"
	"github.com/systemstart/kube-prelint/pkg/kubecontext"
	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

func TestFluxCheckPass(t *testing.T) {
	p, runner := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{Stdout: "✔ all checks passed\n"}
	})

	report, err := p.FluxCheck(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Documents, 1)
	assert.Equal(t, api.StatusPass, report.Documents[0].Terminal())
	assert.True(t, report.Passed())
	assert.Contains(t, report.Details, "✔ all checks passed")

	require.Len(t, runner.invocations, 1)
	assert.Equal(t, "flux", runner.invocations[0].Program)
	assert.Equal(t, []string{"--context", "staging", "check"}, runner.invocations[0].Args)
}

func TestFluxCheckFail(t *testing.T) {
	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: 1, Stderr: "✗ source-controller: deployment not ready\n"}
	})

	report, err := p.FluxCheck(context.Background())
	require.NoError(t, err)

	stage := report.Documents[0].Stages[0]
	assert.Equal(t, api.StatusFail, stage.Status)
	assert.Contains(t, stage.Message, "source-controller")
	assert.False(t, report.Passed())
}

const fluxStatusOutput = `NAMESPACE   	NAME                     	REVISION         	SUSPENDED	READY	MESSAGE
flux-system 	kustomization/apps       	main@sha1:a1b2c3d	False    	True 	applied revision main@sha1:a1b2c3d
flux-system 	kustomization/infra      	main@sha1:a1b2c3d	False    	False	health check failed
flux-system 	kustomization/legacy     	main@sha1:a1b2c3d	True     	False	suspended
`

func TestFluxStatusMapping(t *testing.T) {
	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{Stdout: fluxStatusOutput}
	})

	report, err := p.FluxStatus(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Documents, 3)
	assert.Equal(t, api.StatusPass, report.Documents[0].Terminal())
	assert.Equal(t, api.StatusFail, report.Documents[1].Terminal())
	assert.Contains(t, report.Documents[1].Stages[0].Message, "health check failed")
	assert.Equal(t, api.StatusSkipped, report.Documents[2].Stages[0].Status)

	assert.Equal(t, 2, report.Counts.Passed)
	assert.Equal(t, 1, report.Counts.Failed)
}

func TestFluxStatusNoResources(t *testing.T) {
	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{Stdout: ""}
	})

	report, err := p.FluxStatus(context.Background())
	require.NoError(t, err)

	// An empty resource list is still a report with a visible outcome.
	require.Len(t, report.Documents, 1)
	stage := report.Documents[0].Stages[0]
	assert.Equal(t, api.StatusPass, stage.Status)
	assert.Equal(t, "no resources found", stage.Message)
	assert.True(t, report.Passed())
}

func TestFluxStatusCommandFailure(t *testing.T) {
	p, _ := newPipelines(t, func(toolexec.Invocation) toolexec.Result {
		return toolexec.Result{ExitCode: 1, Stderr: "connection refused"}
	})

	report, err := p.FluxStatus(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Documents, 1)
	assert.Equal(t, api.StatusFail, report.Documents[0].Terminal())
}

func TestFluxRequiresContext(t *testing.T) {
	runner := &scriptRunner{}
	p := New(kubecontext.NewMemoryStore(), runner)

	_, err := p.FluxCheck(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindUnselected, api.KindOf(err))

	_, err = p.FluxStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindUnselected, api.KindOf(err))

	assert.Empty(t, runner.invocations)
}
