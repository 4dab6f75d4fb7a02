package lint

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Severity classifies a finding
type Severity string

// Finding severities. Errors fail the lint; warnings do not.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single problem found in the corpus
type Finding struct {
	File     string   `json:"file"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.File, f.Severity, f.Message)
}

// Report collects lint findings across a corpus
type Report struct {
	Findings []Finding `json:"findings"`
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{Findings: []Finding{}}
}

// Add records a finding
func (r *Report) Add(file string, severity Severity, message string) {
	r.Findings = append(r.Findings, Finding{
		File:     file,
		Severity: severity,
		Message:  message,
	})
}

// Errors returns only the error-severity findings
func (r *Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the warning-severity findings
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any error-severity finding was recorded
func (r *Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Err aggregates all error-severity findings into a single error,
// or nil when the corpus is clean.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Errors() {
		result = multierror.Append(result, fmt.Errorf("%s", f.String()))
	}
	return result.ErrorOrNil()
}

func sortedPaths(corpus map[string]*article) []string {
	paths := make([]string, 0, len(corpus))
	for path := range corpus {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
