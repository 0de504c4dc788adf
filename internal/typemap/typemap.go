// Package typemap converts canonical type references into per-backend
// target representations. Mapping rules are declarative data tables, one
// per backend, so each backend's rules are independently testable.
//
// A mapping miss is never a silent truncation: it produces an
// UnmappableType diagnostic that is fatal only for that backend's
// rendering of that declaration.
package typemap

import (
	"fmt"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// Backend identifies one target output platform.
type Backend string

const (
	BackendC      Backend = "c"
	BackendJava   Backend = "java"
	BackendDotNet Backend = "dotnet"
)

// All lists every supported backend in canonical order.
var All = []Backend{BackendC, BackendJava, BackendDotNet}

// Strategy describes how a value crosses the boundary.
type Strategy string

const (
	// StrategyDirect passes through with no conversion.
	StrategyDirect Strategy = "direct"

	// StrategyHandle crosses as an opaque native handle.
	StrategyHandle Strategy = "handle"

	// StrategyArrayCopy crosses as a managed array copy; ownership never
	// crosses the boundary by reference.
	StrategyArrayCopy Strategy = "array_copy"

	// StrategyUTF8 crosses as a UTF-8 buffer with an explicit length.
	StrategyUTF8 Strategy = "utf8"

	// StrategyTrampoline crosses through a generated callback trampoline.
	StrategyTrampoline Strategy = "trampoline"

	// StrategyStatusOut follows the error-out-parameter convention: an
	// integer status return plus an output parameter for the payload.
	StrategyStatusOut Strategy = "status_out"

	// StrategyNullable encodes absence as the target's null reference.
	StrategyNullable Strategy = "nullable"
)

// Mapped is the target representation of one canonical type.
type Mapped struct {
	// Storage is the target type name at the call boundary. It is empty
	// for callbacks, whose declarator the renderer composes from the
	// Trampoline descriptor.
	Storage  string
	ByValue  bool
	Strategy Strategy

	// Note carries explicit marshaling semantics the renderer forwards
	// into generated doc comments (array copy semantics, encoding).
	Note string

	// Elem is the element representation for arrays and the inner
	// representation for nullable wrappers and pointers.
	Elem *Mapped
	Len  int

	// Out is the success payload for StrategyStatusOut; nil when the
	// success channel is void. ErrType names the generated error surface.
	Out     *Mapped
	ErrType string

	Trampoline *TrampolineDesc
}

// TrampolineDesc is the generated glue signature adapting a foreign
// callback to the native calling convention. Backends sharing a model
// produce byte-for-byte identical native signatures from it.
type TrampolineDesc struct {
	Params []Mapped
	Return Mapped
}

// Mapper maps canonical types for one backend over one model.
type Mapper struct {
	backend Backend
	model   *ir.Model
	graph   *depgraph.Graph
	prefix  string
}

// New creates a mapper. prefix is the backend's symbol prefix, applied to
// generated support type names.
func New(backend Backend, model *ir.Model, graph *depgraph.Graph, prefix string) *Mapper {
	return &Mapper{backend: backend, model: model, graph: graph, prefix: prefix}
}

// Backend returns the mapper's target backend.
func (m *Mapper) Backend() Backend {
	return m.backend
}

// Map converts t as used by declaration user. The user id is needed to
// honor opaque forward references chosen by the dependency graph: the same
// named type can map to a full representation at one use site and an
// opaque handle at another.
func (m *Mapper) Map(user ir.DeclID, t ir.TypeRef) (Mapped, *diag.Diagnostic) {
	switch m.backend {
	case BackendC:
		return m.mapC(user, t)
	case BackendJava:
		return m.mapJava(user, t)
	case BackendDotNet:
		return m.mapDotNet(user, t)
	}
	return Mapped{}, m.unmappable(user, t)
}

// unmappable builds the per-backend fatal diagnostic for a mapping miss.
func (m *Mapper) unmappable(user ir.DeclID, t ir.TypeRef) *diag.Diagnostic {
	return diag.UnmappableType(m.model.Decl(user).Name, string(m.backend), Describe(t, m.model))
}

// Describe renders a type reference for diagnostics.
func Describe(t ir.TypeRef, model *ir.Model) string {
	switch v := t.(type) {
	case ir.Primitive:
		switch v.Kind {
		case ir.PrimVoid:
			return "void"
		case ir.PrimBool:
			return "bool"
		case ir.PrimFloat:
			return fmt.Sprintf("f%d", v.Width)
		case ir.PrimSize:
			if v.Signed {
				return "isize"
			}
			return "usize"
		default:
			if v.Signed {
				return fmt.Sprintf("i%d", v.Width)
			}
			return fmt.Sprintf("u%d", v.Width)
		}
	case ir.String:
		return "string"
	case ir.Pointer:
		return "*" + Describe(v.Elem, model)
	case ir.FixedArray:
		return fmt.Sprintf("[%s; %d]", Describe(v.Elem, model), v.Len)
	case ir.Named:
		return model.Decl(v.ID).Name
	case ir.Option:
		return "Option<" + Describe(v.Inner, model) + ">"
	case ir.ResultLike:
		return fmt.Sprintf("Result<%s, %s>", Describe(v.Ok, model), Describe(v.Err, model))
	case ir.Callback:
		return "fn(...)"
	}
	return fmt.Sprintf("%T", t)
}

// errSurface names the generated error surface for a ResultLike error
// channel: the declaration name when the error is a named enum, otherwise
// the mapped storage type.
func (m *Mapper) errSurface(errType ir.TypeRef, mapped Mapped) string {
	if named, ok := errType.(ir.Named); ok {
		return m.model.Decl(named.ID).Name
	}
	return mapped.Storage
}
