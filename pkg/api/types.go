package api

// Status is the verdict of a single pipeline stage.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusSkipped Status = "SKIPPED"
	StatusError   Status = "ERROR"
)

// ErrorKind classifies a failure. Every tool invocation failure and every
// discovery failure maps to exactly one kind.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindNotFound        ErrorKind = "not-found"
	KindUnselected      ErrorKind = "unselected"
	KindParseError      ErrorKind = "parse-error"
	KindToolFailure     ErrorKind = "tool-failure"
	KindTimeout         ErrorKind = "timeout"
	KindPreStageFailure ErrorKind = "pre-stage-failure"
)

// StageOutcome is one stage's verdict for one document or artifact.
type StageOutcome struct {
	Stage    string
	Status   Status
	Kind     ErrorKind
	Message  string
	Warnings []string
}

// DocumentResult holds the ordered stage outcomes for one document,
// rendered resource, or whole artifact.
type DocumentResult struct {
	Label  string
	Source string
	Index  int
	Stages []StageOutcome
}

// Terminal computes the overall status of a document: FAIL if any stage
// failed, ERROR if any stage errored, otherwise PASS.
func (d DocumentResult) Terminal() Status {
	hasError := false
	for _, s := range d.Stages {
		switch s.Status {
		case StatusFail:
			return StatusFail
		case StatusError:
			hasError = true
		}
	}
	if hasError {
		return StatusError
	}
	return StatusPass
}

// Counts aggregates per-document terminal statuses.
type Counts struct {
	Passed  int
	Failed  int
	Errored int
}

// Report is the result of one pipeline run.
type Report struct {
	Pipeline  string
	Title     string
	Context   string
	Path      string
	RunID     string
	Details   []string
	Documents []DocumentResult
	Counts    Counts
}

// Summarize recomputes the aggregate counts from the per-document
// terminal statuses. Call after the document list is final.
func (r *Report) Summarize() {
	r.Counts = Counts{}
	for _, d := range r.Documents {
		switch d.Terminal() {
		case StatusFail:
			r.Counts.Failed++
		case StatusError:
			r.Counts.Errored++
		default:
			r.Counts.Passed++
		}
	}
}

// Passed reports whether the run validated at least one document with
// no failures and no errors. A report that validated nothing never
// passes: an all-clear advisory must be backed by actual checks.
func (r *Report) Passed() bool {
	return len(r.Documents) > 0 && r.Counts.Failed == 0 && r.Counts.Errored == 0
}

// PassStage builds a passing stage outcome, carrying any warnings.
func PassStage(stage string, warnings []string) StageOutcome {
	return StageOutcome{Stage: stage, Status: StatusPass, Warnings: warnings}
}

// FailStage builds a failing stage outcome with a tool-failure kind.
func FailStage(stage, message string) StageOutcome {
	return StageOutcome{Stage: stage, Status: StatusFail, Kind: KindToolFailure, Message: message}
}

// ErrorStage builds an errored stage outcome with an explicit kind.
func ErrorStage(stage string, kind ErrorKind, message string) StageOutcome {
	return StageOutcome{Stage: stage, Status: StatusError, Kind: kind, Message: message}
}

// SkipStage builds a skipped stage outcome.
func SkipStage(stage string) StageOutcome {
	return StageOutcome{Stage: stage, Status: StatusSkipped}
}
