package api

import (
	"fmt"
	"testing"
)

func TestDocumentResultTerminal(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all pass", []Status{StatusPass, StatusPass}, StatusPass},
		{"no stages", nil, StatusPass},
		{"one fail", []Status{StatusPass, StatusFail}, StatusFail},
		{"fail beats error", []Status{StatusError, StatusFail}, StatusFail},
		{"error only", []Status{StatusPass, StatusError}, StatusError},
		{"skipped is not a failure", []Status{StatusPass, StatusSkipped}, StatusPass},
		{"fail then skipped", []Status{StatusFail, StatusSkipped}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DocumentResult{}
			for i, s := range tt.statuses {
				d.Stages = append(d.Stages, StageOutcome{Stage: fmt.Sprintf("stage-%d", i), Status: s})
			}
			if got := d.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReportSummarize(t *testing.T) {
	r := Report{
		Documents: []DocumentResult{
			{Stages: []StageOutcome{{Status: StatusPass}, {Status: StatusPass}}},
			{Stages: []StageOutcome{{Status: StatusPass}, {Status: StatusFail}}},
			{Stages: []StageOutcome{{Status: StatusError}, {Status: StatusSkipped}}},
			{Stages: []StageOutcome{{Status: StatusPass}}},
		},
	}
	r.Summarize()

	if r.Counts.Passed != 2 || r.Counts.Failed != 1 || r.Counts.Errored != 1 {
		t.Errorf("counts = %+v, want 2 passed, 1 failed, 1 errored", r.Counts)
	}
	if r.Passed() {
		t.Error("Passed() should be false with failures present")
	}

	total := r.Counts.Passed + r.Counts.Failed + r.Counts.Errored
	if total != len(r.Documents) {
		t.Errorf("counts sum to %d, want %d", total, len(r.Documents))
	}
}

func TestReportPassedEmpty(t *testing.T) {
	var r Report
	r.Summarize()
	if r.Passed() {
		t.Error("a report that validated nothing must not pass")
	}
}

func TestKindOf(t *testing.T) {
	err := Errorf(KindUnselected, "no context selected")
	if got := KindOf(err); got != KindUnselected {
		t.Errorf("KindOf = %q, want %q", got, KindUnselected)
	}

	wrapped := fmt.Errorf("running pipeline: %w", err)
	if got := KindOf(wrapped); got != KindUnselected {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindUnselected)
	}

	if got := KindOf(fmt.Errorf("plain")); got != KindNone {
		t.Errorf("KindOf(plain) = %q, want %q", got, KindNone)
	}
	if got := KindOf(nil); got != KindNone {
		t.Errorf("KindOf(nil) = %q, want %q", got, KindNone)
	}
}
