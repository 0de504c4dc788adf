// Package diag defines the error taxonomy and the collector that threads
// collected outcomes through every pipeline stage. Errors are accumulated,
// never thrown-and-abandoned: a run produces a full report of successes,
// warnings, and failures rather than stopping at the first problem.
package diag

import (
	"errors"
	"fmt"
)

// Code identifies the diagnostic category.
type Code string

const (
	// CodeUnsupportedConstruct indicates an exported item the engine cannot
	// translate (generics, non-C layout, non-primitive constants). The
	// declaration is dropped; the run continues.
	CodeUnsupportedConstruct Code = "UNSUPPORTED_CONSTRUCT"

	// CodeUnresolvedType indicates a reference to a name not present in the
	// build. Fatal to the referencing declaration only.
	CodeUnresolvedType Code = "UNRESOLVED_TYPE"

	// CodeDuplicateName indicates two declarations sharing a name. The later
	// declaration is dropped.
	CodeDuplicateName Code = "DUPLICATE_NAME"

	// CodeDuplicateDiscriminant indicates two enum variants resolving to the
	// same value. Fatal to that enum only.
	CodeDuplicateDiscriminant Code = "DUPLICATE_DISCRIMINANT"

	// CodeUnbreakableCycle indicates a reference cycle involving a function
	// declaration. Functions cannot be forward-declared structurally, so
	// this is fatal to the whole run.
	CodeUnbreakableCycle Code = "UNBREAKABLE_CYCLE"

	// CodeUnmappableType indicates a type with no representation on one
	// backend. Fatal to that backend's rendering of that declaration;
	// other declarations and other backends continue.
	CodeUnmappableType Code = "UNMAPPABLE_TYPE"
)

// Severity distinguishes dropped-with-warning outcomes from fatal ones.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic is one collected outcome. Decl names the affected declaration
// and Backend the affected backend; either may be empty for run-wide
// diagnostics.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Decl     string
	Backend  string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	switch {
	case d.Decl != "" && d.Backend != "":
		return fmt.Sprintf("%s: %s (decl=%s, backend=%s)", d.Code, d.Message, d.Decl, d.Backend)
	case d.Decl != "":
		return fmt.Sprintf("%s: %s (decl=%s)", d.Code, d.Message, d.Decl)
	case d.Backend != "":
		return fmt.Sprintf("%s: %s (backend=%s)", d.Code, d.Message, d.Backend)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Is reports whether err is a Diagnostic with the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Code == code
	}
	return false
}

// UnsupportedConstruct creates a warning for a dropped declaration.
func UnsupportedConstruct(decl, reason string) *Diagnostic {
	return &Diagnostic{
		Code:     CodeUnsupportedConstruct,
		Severity: SeverityWarning,
		Message:  reason,
		Decl:     decl,
	}
}

// UnresolvedType creates a fatal diagnostic for a dangling reference.
func UnresolvedType(name, referrer string) *Diagnostic {
	return &Diagnostic{
		Code:     CodeUnresolvedType,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("type %q cannot be resolved", name),
		Decl:     referrer,
	}
}

// DuplicateName creates a fatal diagnostic for a name collision.
func DuplicateName(name string) *Diagnostic {
	return &Diagnostic{
		Code:     CodeDuplicateName,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("name %q is already declared", name),
		Decl:     name,
	}
}

// DuplicateDiscriminant creates a fatal diagnostic for an enum whose
// variants collide on a value.
func DuplicateDiscriminant(enum, variant string, value int64) *Diagnostic {
	return &Diagnostic{
		Code:     CodeDuplicateDiscriminant,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("variant %s resolves to duplicate discriminant %d", variant, value),
		Decl:     enum,
	}
}

// UnbreakableCycle creates a run-fatal diagnostic for a cycle through a
// function declaration.
func UnbreakableCycle(path string) *Diagnostic {
	return &Diagnostic{
		Code:     CodeUnbreakableCycle,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("reference cycle through a function cannot be broken: %s", path),
	}
}

// UnmappableType creates a per-backend fatal diagnostic.
func UnmappableType(decl, backend, typeDesc string) *Diagnostic {
	return &Diagnostic{
		Code:     CodeUnmappableType,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("no %s representation for type %s", backend, typeDesc),
		Decl:     decl,
		Backend:  backend,
	}
}
