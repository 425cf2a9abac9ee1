package alert

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// TimestampLayout formats the failure time in the alert header.
const TimestampLayout = "2006-01-02 15:04:05"

// Message is a composed alert, ready to hand to a transport.
type Message struct {
	Subject   string
	HTML      string
	Timestamp time.Time
	RunID     string
}

// Cause is the rendered view of one error in the alert body.
type Cause struct {
	Message string
	Origin  string
	Stack   string
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

var bodyTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: sans-serif;">
<p><b>Unable to connect to FTPS server {{.Endpoint}} at {{.Timestamp}}</b></p>
{{- if .RunID}}
<p>Run: {{.RunID}}</p>
{{- end}}
{{- with .Cause}}
<p><b>Error:</b> {{.Message}}</p>
<p><b>Origin:</b> {{.Origin}}</p>
<pre>{{.Stack}}</pre>
{{- end}}
{{- with .Inner}}
<p><b>Inner error:</b> {{.Message}}</p>
<p><b>Origin:</b> {{.Origin}}</p>
<pre>{{.Stack}}</pre>
{{- end}}
</body>
</html>
`))

type bodyData struct {
	Endpoint  string
	Timestamp string
	RunID     string
	Cause     *Cause
	Inner     *Cause
}

// Compose renders the alert for a failed check. The cause sections are left
// out entirely when cause is nil.
func Compose(subject, endpoint, runID string, cause error, now time.Time) (Message, error) {
	data := bodyData{
		Endpoint:  endpoint,
		Timestamp: now.Local().Format(TimestampLayout),
		RunID:     runID,
	}
	if cause != nil {
		outer := describe(cause)
		data.Cause = &outer
		if inner := innerCause(cause); inner != nil {
			described := describe(inner)
			data.Inner = &described
		}
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render alert body: %w", err)
	}
	return Message{
		Subject:   subject,
		HTML:      buf.String(),
		Timestamp: now,
		RunID:     runID,
	}, nil
}

// describe reports err's message with the origin and stack of the nearest
// recorded stack in its chain.
func describe(err error) Cause {
	cause := Cause{Message: err.Error(), Origin: fmt.Sprintf("%T", err)}
	tracer := findStack(err)
	if tracer == nil {
		cause.Stack = "no stack trace recorded"
		return cause
	}
	frames := tracer.StackTrace()
	if len(frames) > 0 {
		// %+s renders "pkg.Func\n\tfile"; the first line is the function.
		name, _, _ := strings.Cut(fmt.Sprintf("%+s", frames[0]), "\n")
		cause.Origin = name
	}
	cause.Stack = strings.TrimLeft(fmt.Sprintf("%+v", frames), "\n")
	return cause
}

func findStack(err error) stackTracer {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if tracer, ok := current.(stackTracer); ok {
			return tracer
		}
	}
	return nil
}

// innerCause returns the first error in the chain whose message differs from
// the outermost one. Stack wrappers repeat their child's message and are
// skipped that way.
func innerCause(err error) error {
	outer := err.Error()
	for current := errors.Unwrap(err); current != nil; current = errors.Unwrap(current) {
		if current.Error() != outer {
			return current
		}
	}
	return nil
}
