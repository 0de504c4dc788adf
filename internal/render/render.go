// Package render emits target source text from an ordered interface model.
//
// Each backend renderer is a pure function over the read-only model, the
// dependency graph, and the type mapper: no filesystem access, and
// identical input always yields byte-identical output, so generated text
// can be regression-tested against golden files.
package render

import (
	"strings"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/typemap"
)

// Options carries the per-backend configuration supplied by the caller.
type Options struct {
	// Package is the Java package or .NET namespace. Unused by C.
	Package string

	// Library is the native library name used for loading (Java
	// System.loadLibrary, C# DllImport) and the C include guard.
	Library string

	// Prefix is prepended to exported native symbol names and generated
	// support type names.
	Prefix string

	// StripDocs suppresses doc comment forwarding.
	StripDocs bool
}

// Result is one backend's rendered output. Rendered counts the
// declarations that survived mapping; callers write nothing for a backend
// with zero survivors.
type Result struct {
	Text     string
	Rendered int
}

// skip records a mapping failure and tells the caller to drop the
// declaration from this backend's output only.
func skip(c *diag.Collector, d *diag.Diagnostic) {
	c.Add(d)
}

// pendingCallback holds a callback type whose emission waits until the
// whole surrounding signature has mapped; a later mapping failure drops
// the declaration and must not leave an orphan callback type behind.
type pendingCallback struct {
	name string
	desc *typemap.TrampolineDesc
}

// docLines splits a forwarded doc comment into trimmed lines, dropping a
// single trailing empty line.
func docLines(doc string) []string {
	if doc == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// usesString reports whether any declaration in the model references the
// string type, which needs a support typedef in the C prologue.
func usesString(m *ir.Model) bool {
	found := false
	var walk func(t ir.TypeRef)
	walk = func(t ir.TypeRef) {
		switch v := t.(type) {
		case ir.String:
			found = true
		case ir.Pointer:
			walk(v.Elem)
		case ir.FixedArray:
			walk(v.Elem)
		case ir.Option:
			walk(v.Inner)
		case ir.ResultLike:
			walk(v.Ok)
			walk(v.Err)
		case ir.Callback:
			for _, p := range v.Params {
				walk(p)
			}
			walk(v.Return)
		}
	}
	for _, d := range m.Decls() {
		switch d.Kind {
		case ir.DeclFunc:
			for _, p := range d.Func.Params {
				walk(p.Type)
			}
			walk(d.Func.Return)
		case ir.DeclStruct:
			for _, f := range d.Struct.Fields {
				walk(f.Type)
			}
		case ir.DeclEnum:
			for _, v := range d.Enum.Variants {
				if v.Payload != nil {
					walk(v.Payload)
				}
			}
		case ir.DeclAlias:
			walk(d.Alias.Target)
		case ir.DeclConst:
			walk(d.Const.Type)
		}
	}
	return found
}
