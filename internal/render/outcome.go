package render

import (
	"time"

	"git.home.luguber.info/inful/panini/internal/page"
)

// Status tells a rendered outcome from a failed one.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusFailed   Status = "failed"
)

// DiagnosticTitle is the title of the HTML document emitted for failed pages.
const DiagnosticTitle = "Panini error"

// Outcome is the result of rendering one page. Content holds the rendered
// document, or for a failed page the diagnostic document; Cause is only set
// for failures.
type Outcome struct {
	Page     *page.ParsedPage
	Status   Status
	Content  []byte
	Cause    error
	Duration time.Duration
}

// Rendered wraps successful engine output.
func Rendered(p *page.ParsedPage, content string) Outcome {
	return Outcome{Page: p, Status: StatusRendered, Content: []byte(content)}
}

// Failed builds a failed outcome carrying a viewable diagnostic document.
func Failed(p *page.ParsedPage, cause error) Outcome {
	return Outcome{Page: p, Status: StatusFailed, Content: DiagnosticDocument(cause), Cause: cause}
}

// OK reports whether the page rendered.
func (o Outcome) OK() bool { return o.Status == StatusRendered }
