package gen

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/typemap"
)

// Output is one backend's rendered result within a run.
type Output struct {
	Backend typemap.Backend

	// Text is the full generated source. Empty when no declaration
	// survived mapping for this backend; callers must not write a file
	// for an empty output.
	Text string

	// Rendered counts the declarations present in Text.
	Rendered int

	// Diags holds the backend-local diagnostics (unmappable types and
	// the declarations skipped because of them).
	Diags []*diag.Diagnostic
}

// Report is the complete outcome of one generation run.
type Report struct {
	// RunID correlates log lines and outputs from the same run.
	RunID string

	// Outputs holds one entry per requested backend, in canonical
	// backend order regardless of completion order.
	Outputs []Output

	// Diags holds the backend-independent diagnostics from extraction,
	// model building, and dependency ordering.
	Diags []*diag.Diagnostic
}

// Warnings returns every warning-severity diagnostic in the run, shared
// phase first, then per backend in canonical order.
func (r *Report) Warnings() []*diag.Diagnostic {
	return r.filter(diag.SeverityWarning)
}

// Fatals returns every fatal-severity diagnostic in the run.
func (r *Report) Fatals() []*diag.Diagnostic {
	return r.filter(diag.SeverityFatal)
}

// Succeeded reports whether every requested backend produced output with
// no fatal diagnostics. Warnings never affect success.
func (r *Report) Succeeded() bool {
	return len(r.Fatals()) == 0
}

func (r *Report) filter(sev diag.Severity) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, d := range r.Diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	for _, o := range r.Outputs {
		for _, d := range o.Diags {
			if d.Severity == sev {
				out = append(out, d)
			}
		}
	}
	return out
}
