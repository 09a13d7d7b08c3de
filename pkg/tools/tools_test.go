package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/systemstart/kube-prelint/pkg/toolexec"
)

// fakeRunner records invocations and replays canned results.
type fakeRunner struct {
	invocations []toolexec.Invocation
	result      toolexec.Result
}

func (f *fakeRunner) Run(_ context.Context, inv toolexec.Invocation) toolexec.Result {
	f.invocations = append(f.invocations, inv)
	res := f.result
	res.Program = inv.Program
	res.Args = inv.Args
	return res
}

func (f *fakeRunner) last(t *testing.T) toolexec.Invocation {
	t.Helper()
	if len(f.invocations) == 0 {
		t.Fatal("no invocations recorded")
	}
	return f.invocations[len(f.invocations)-1]
}

func TestTimeoutFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 60 * time.Second},
		{"valid", "30", 30 * time.Second},
		{"not a number", "soon", 60 * time.Second},
		{"zero", "0", 60 * time.Second},
		{"negative", "-5", 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("KUBE_PRELINT_TEST_TIMEOUT", tt.value)
			}
			got := timeoutFromEnv("KUBE_PRELINT_TEST_TIMEOUT", 60*time.Second)
			assert.Equal(t, tt.want, got)
		})
	}
}
