package typemap

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// cPrimitives is the C rule table. Every canonical primitive has an exact
// fixed-width C representation, so this table is total.
var cPrimitives = map[ir.Primitive]string{
	{Kind: ir.PrimVoid}:                          "void",
	{Kind: ir.PrimBool}:                          "bool",
	{Kind: ir.PrimInt, Width: 8, Signed: true}:   "int8_t",
	{Kind: ir.PrimInt, Width: 16, Signed: true}:  "int16_t",
	{Kind: ir.PrimInt, Width: 32, Signed: true}:  "int32_t",
	{Kind: ir.PrimInt, Width: 64, Signed: true}:  "int64_t",
	{Kind: ir.PrimInt, Width: 8}:                 "uint8_t",
	{Kind: ir.PrimInt, Width: 16}:                "uint16_t",
	{Kind: ir.PrimInt, Width: 32}:                "uint32_t",
	{Kind: ir.PrimInt, Width: 64}:                "uint64_t",
	{Kind: ir.PrimFloat, Width: 32}:              "float",
	{Kind: ir.PrimFloat, Width: 64}:              "double",
	{Kind: ir.PrimSize, Signed: true}:            "intptr_t",
	{Kind: ir.PrimSize}:                          "uintptr_t",
}

func (m *Mapper) mapC(user ir.DeclID, t ir.TypeRef) (Mapped, *diag.Diagnostic) {
	switch v := t.(type) {
	case ir.Primitive:
		storage, ok := cPrimitives[v]
		if !ok {
			return Mapped{}, m.unmappable(user, t)
		}
		return Mapped{Storage: storage, ByValue: true, Strategy: StrategyDirect}, nil

	case ir.String:
		return Mapped{
			Storage:  m.prefix + "string_t",
			ByValue:  true,
			Strategy: StrategyUTF8,
			Note:     "UTF-8 buffer with explicit byte length; not null-terminated",
		}, nil

	case ir.Pointer:
		if named, ok := v.Elem.(ir.Named); ok {
			decl := m.model.Decl(named.ID)
			if decl.Kind == ir.DeclOpaque || m.graph.Opaque(user, named.ID) {
				// The incomplete type carries one level of indirection;
				// the pointer is it.
				storage := decl.Name + " *"
				if !v.Mutable {
					storage = "const " + decl.Name + " *"
				}
				return Mapped{Storage: storage, Strategy: StrategyHandle, Note: "opaque handle; no visible layout"}, nil
			}
		}
		elem, d := m.mapC(user, v.Elem)
		if d != nil {
			return Mapped{}, d
		}
		if elem.Storage == "" {
			return Mapped{}, m.unmappable(user, t)
		}
		storage := elem.Storage + " *"
		if !v.Mutable {
			storage = "const " + elem.Storage + " *"
		}
		return Mapped{Storage: storage, Strategy: StrategyDirect, Elem: &elem}, nil

	case ir.FixedArray:
		elem, d := m.mapC(user, v.Elem)
		if d != nil {
			return Mapped{}, d
		}
		return Mapped{Storage: elem.Storage, ByValue: true, Strategy: StrategyDirect, Elem: &elem, Len: v.Len}, nil

	case ir.Named:
		return m.mapCNamed(user, v)

	case ir.Option:
		inner, d := m.mapC(user, v.Inner)
		if d != nil {
			return Mapped{}, d
		}
		if inner.ByValue {
			// By-value inners cross behind a nullable pointer.
			return Mapped{
				Storage:  inner.Storage + " *",
				Strategy: StrategyNullable,
				Note:     "NULL encodes absence",
				Elem:     &inner,
			}, nil
		}
		out := inner
		out.Strategy = StrategyNullable
		out.Note = "NULL encodes absence"
		return out, nil

	case ir.Callback:
		desc, d := m.trampoline(user, v, m.mapC)
		if d != nil {
			return Mapped{}, d
		}
		return Mapped{Strategy: StrategyTrampoline, Trampoline: desc}, nil

	case ir.ResultLike:
		return m.mapResult(user, v, m.mapC, "int32_t")
	}

	return Mapped{}, m.unmappable(user, t)
}

func (m *Mapper) mapCNamed(user ir.DeclID, v ir.Named) (Mapped, *diag.Diagnostic) {
	decl := m.model.Decl(v.ID)

	if decl.Kind == ir.DeclOpaque || m.graph.Opaque(user, v.ID) {
		return Mapped{
			Storage:  decl.Name + " *",
			Strategy: StrategyHandle,
			Note:     "opaque handle; no visible layout",
		}, nil
	}

	switch decl.Kind {
	case ir.DeclStruct, ir.DeclEnum:
		return Mapped{Storage: decl.Name, ByValue: true, Strategy: StrategyDirect}, nil
	case ir.DeclAlias:
		target, d := m.mapC(user, decl.Alias.Target)
		if d != nil {
			return Mapped{}, d
		}
		// The typedef already carries the target's declarator shape
		// (array bound, function pointer). A use site names the typedef
		// and nothing else, or an aliased array would nest its bound.
		target.Storage = decl.Name
		target.Len = 0
		target.Elem = nil
		target.Trampoline = nil
		return target, nil
	}

	return Mapped{}, m.unmappable(user, v)
}

// trampoline maps a callback signature with the given per-backend rule
// function, producing the descriptor the renderer wires to the foreign
// calling convention.
func (m *Mapper) trampoline(user ir.DeclID, cb ir.Callback, rule func(ir.DeclID, ir.TypeRef) (Mapped, *diag.Diagnostic)) (*TrampolineDesc, *diag.Diagnostic) {
	desc := &TrampolineDesc{}
	for _, p := range cb.Params {
		mapped, d := rule(user, p)
		if d != nil {
			return nil, d
		}
		desc.Params = append(desc.Params, mapped)
	}
	ret, d := rule(user, cb.Return)
	if d != nil {
		return nil, d
	}
	desc.Return = ret
	return desc, nil
}

// mapResult maps a two-channel return onto the error-out-parameter
// convention: status is the integer status type for the backend.
func (m *Mapper) mapResult(user ir.DeclID, v ir.ResultLike, rule func(ir.DeclID, ir.TypeRef) (Mapped, *diag.Diagnostic), status string) (Mapped, *diag.Diagnostic) {
	mapped := Mapped{
		Storage:  status,
		ByValue:  true,
		Strategy: StrategyStatusOut,
		Note:     "returns 0 on success; the payload is written through the output parameter only on status 0",
	}

	if !ir.IsVoid(v.Ok) {
		out, d := rule(user, v.Ok)
		if d != nil {
			return Mapped{}, d
		}
		mapped.Out = &out
	}

	errMapped, d := rule(user, v.Err)
	if d != nil {
		return Mapped{}, d
	}
	mapped.ErrType = m.errSurface(v.Err, errMapped)

	return mapped, nil
}
