package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/seenimoa/stockdash/internal/view"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Status messages shown outside the Loaded phase.
const (
	MessageIdle    = "Enter stock details and click Analyze."
	MessageLoading = "Analyzing data..."
)

// FormValues are the current input fields.
type FormValues struct {
	Symbol    string
	StartDate string
	EndDate   string
}

// Page is the template model of the dashboard.
type Page struct {
	Title       string
	Form        FormValues
	Phase       view.Phase
	Message     string // status line for idle, loading and failed
	InputError  string // rejected input, shown next to the form
	Report      *Report
	RequestID   string
	GeneratedAt string
	// Live pages load the push script and refresh on state changes.
	Live   bool
	WSPath string
}

// NewPage assembles the dashboard for the current form values and state.
// The report section is present only when the state is loaded, and is built
// against the query that began the request.
func NewPage(form models.Query, st view.State) Page {
	p := Page{
		Title: "Stock Analysis Dashboard",
		Form: FormValues{
			Symbol:    form.Symbol,
			StartDate: form.StartDate.String(),
			EndDate:   form.EndDate.String(),
		},
		Phase:       st.Phase,
		RequestID:   st.RequestID,
		GeneratedAt: ReportTimestamp(),
	}

	switch st.Phase {
	case view.PhaseLoading:
		p.Message = MessageLoading
	case view.PhaseFailed:
		p.Message = FailureMessage(st.Failure)
	case view.PhaseLoaded:
		var q models.Query
		if st.Query != nil {
			q = *st.Query
		}
		rep := Build(q, st.Result)
		p.Report = &rep
	default:
		p.Message = MessageIdle
	}
	return p
}

// FailureMessage is the line shown in the Failed phase.
func FailureMessage(f *view.Failure) string {
	if f == nil {
		return "Analysis failed."
	}
	if f.Kind == "" {
		return fmt.Sprintf("Analysis failed: %s", f.Message)
	}
	return fmt.Sprintf("Analysis failed (%s): %s", f.Kind, f.Message)
}

var pageTemplate = template.Must(template.New("dashboard").Parse(DashboardTemplate))

// GenerateHTML renders the dashboard page.
func GenerateHTML(p Page) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
