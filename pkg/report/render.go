// Package report renders a validation report as deterministic,
// human-readable text: a banner naming the pipeline and active context,
// one block per document, and a trailing summary with an explicit
// advisory when anything failed.
package report

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/systemstart/kube-prelint/pkg/api"
)

const reportTemplate = `{{ .Title }}
{{- with .Context }}
Context: {{ . }}
{{- end }}
{{- with .Path }}
Path: {{ . }}
{{- end }}
{{- range .Details }}
{{ . }}
{{- end }}
{{ repeat 50 "=" }}
{{ range .Documents }}{{ .Label }}
{{- range .Stages }}
{{- if eq .Status "PASS" }}
  {{ .Stage }}: PASS{{ with .Message }} ({{ . }}){{ end }}{{ if .Warnings }} (with warnings){{ end }}
{{- range .Warnings }}
    Warning: {{ . }}
{{- end }}
{{- else }}
  {{ .Stage }}: {{ .Status }}
{{- with .Message }}
    Error: {{ . }}
{{- end }}
{{- end }}
{{- end }}

{{ end }}{{ repeat 50 "=" }}
Summary: {{ .Counts.Passed }} passed, {{ .Counts.Failed }} failed
{{- if .Counts.Errored }}, {{ .Counts.Errored }} errored{{ end }}

{{ if .Passed }}All validations passed. Safe to commit.
{{- else }}DO NOT COMMIT - Fix errors first!
{{- end }}
`

var tmpl = template.Must(
	template.New("report").Funcs(sprig.FuncMap()).Parse(reportTemplate))

// Render produces the text form of a report. The byte layout is not
// contractual; the structural elements (context, per-document stage
// statuses, summary counts, advisory) are.
func Render(r *api.Report) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		// Only reachable with a broken template, which is a programming
		// error; degrade to something still usable.
		return fmt.Sprintf("%s\nreport rendering failed: %v\n", r.Title, err)
	}
	return buf.String()
}
