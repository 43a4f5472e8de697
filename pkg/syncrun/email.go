package syncrun

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

const (
	successTemplate = `<div><div><strong>Following {{.Noun}} were uploaded or updated: </strong></div>` +
		`{{if .Links}}{{range $i, $link := .Links}}{{if $i}}<br />{{end}}<p><a href="{{$link}}" target="_blank">{{$link}}</a></p>{{end}}` +
		`{{else}}No {{.Noun}}{{end}}</div>`

	failureTemplate = `<div><div><strong>Error while synchronizing {{.Source}} data to Strava:</strong></div>` +
		`<p>{{.Error}}</p>{{if .Stack}}<pre>{{.Stack}}</pre>{{end}}</div>`
)

var (
	successTmpl = template.Must(template.New("success").Parse(successTemplate))
	failureTmpl = template.Must(template.New("failure").Parse(failureTemplate))
)

// EmailSubject is the subject line of run notifications for src.
func EmailSubject(src activity.Source) string {
	return fmt.Sprintf("Strava upload information (%s)", src)
}

// noun is what a source calls its activities.
func noun(src activity.Source) string {
	if src == activity.SourceMovescount {
		return "moves"
	}
	return "activities"
}

// SuccessBody lists the source links of every item that reached Strava.
func SuccessBody(src activity.Source, report *stravasync.Report) (string, error) {
	var links []string
	if report != nil {
		for _, item := range report.Synced() {
			links = append(links, item.SourceURL)
		}
	}

	var buf bytes.Buffer
	err := successTmpl.Execute(&buf, struct {
		Noun  string
		Links []string
	}{noun(src), links})
	if err != nil {
		return "", fmt.Errorf("render success email: %w", err)
	}
	return buf.String(), nil
}

// FailureBody reports a failed run with its stack trace.
func FailureBody(src activity.Source, runErr error, stack string) (string, error) {
	var buf bytes.Buffer
	err := failureTmpl.Execute(&buf, struct {
		Source string
		Error  string
		Stack  string
	}{string(src), runErr.Error(), stack})
	if err != nil {
		return "", fmt.Errorf("render failure email: %w", err)
	}
	return buf.String(), nil
}
