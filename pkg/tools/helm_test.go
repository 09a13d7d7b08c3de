package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelmLintArgs(t *testing.T) {
	fake := &fakeRunner{}
	h := NewHelm(fake)

	h.Lint(context.Background(), "./charts/app", "")
	assert.Equal(t, []string{"lint", "./charts/app"}, fake.last(t).Args)

	h.Lint(context.Background(), "./charts/app", "values-prod.yaml")
	assert.Equal(t, []string{"lint", "./charts/app", "-f", "values-prod.yaml"}, fake.last(t).Args)
}

func TestHelmTemplateArgs(t *testing.T) {
	fake := &fakeRunner{}
	h := NewHelm(fake)

	h.Template(context.Background(), "", "./charts/app", "", "")
	assert.Equal(t, []string{"template", DefaultReleaseName, "./charts/app"}, fake.last(t).Args)

	h.Template(context.Background(), "web", "./charts/app", "values.yaml", "demo")
	assert.Equal(t,
		[]string{"template", "web", "./charts/app", "-f", "values.yaml", "--namespace", "demo"},
		fake.last(t).Args)
}

func TestIsChart(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsChart(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte("name: app\n"), 0o600))
	assert.True(t, IsChart(dir))
	assert.True(t, IsChart(filepath.Join(dir, "Chart.yaml")))
	assert.False(t, IsChart(filepath.Join(dir, "missing")))
}
