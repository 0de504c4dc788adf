package typemap

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// javaPrimitives is the JVM rule table. The JVM has no unsigned integers:
// u8, u16, and u32 widen to the next signed size so the full value range
// survives. u64 has no lossless representation and is deliberately absent;
// mapping it is an UnmappableType error, never a silent reinterpretation.
var javaPrimitives = map[ir.Primitive]string{
	{Kind: ir.PrimVoid}:                          "void",
	{Kind: ir.PrimBool}:                          "boolean",
	{Kind: ir.PrimInt, Width: 8, Signed: true}:   "byte",
	{Kind: ir.PrimInt, Width: 16, Signed: true}:  "short",
	{Kind: ir.PrimInt, Width: 32, Signed: true}:  "int",
	{Kind: ir.PrimInt, Width: 64, Signed: true}:  "long",
	{Kind: ir.PrimInt, Width: 8}:                 "short",
	{Kind: ir.PrimInt, Width: 16}:                "int",
	{Kind: ir.PrimInt, Width: 32}:                "long",
	{Kind: ir.PrimFloat, Width: 32}:              "float",
	{Kind: ir.PrimFloat, Width: 64}:              "double",
	{Kind: ir.PrimSize, Signed: true}:            "long",
	{Kind: ir.PrimSize}:                          "long",
}

// javaBoxed maps Java primitive storage to its boxed reference type for
// nullable wrappers.
var javaBoxed = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

func (m *Mapper) mapJava(user ir.DeclID, t ir.TypeRef) (Mapped, *diag.Diagnostic) {
	switch v := t.(type) {
	case ir.Primitive:
		storage, ok := javaPrimitives[v]
		if !ok {
			return Mapped{}, m.unmappable(user, t)
		}
		mapped := Mapped{Storage: storage, ByValue: true, Strategy: StrategyDirect}
		if v.Kind == ir.PrimInt && !v.Signed {
			mapped.Note = "widened to preserve the unsigned value range"
		}
		return mapped, nil

	case ir.String:
		return Mapped{
			Storage:  "String",
			Strategy: StrategyUTF8,
			Note:     "marshaled as a UTF-8 buffer with explicit length",
		}, nil

	case ir.Pointer:
		return Mapped{
			Storage:  "long",
			ByValue:  true,
			Strategy: StrategyHandle,
			Note:     "native pointer handle",
		}, nil

	case ir.FixedArray:
		elem, d := m.mapJava(user, v.Elem)
		if d != nil {
			return Mapped{}, d
		}
		return Mapped{
			Storage:  elem.Storage + "[]",
			Strategy: StrategyArrayCopy,
			Note:     "crosses the boundary as a copy; mutations are not shared",
			Elem:     &elem,
			Len:      v.Len,
		}, nil

	case ir.Named:
		return m.mapJavaNamed(user, v)

	case ir.Option:
		inner, d := m.mapJava(user, v.Inner)
		if d != nil {
			return Mapped{}, d
		}
		out := inner
		if boxed, ok := javaBoxed[inner.Storage]; ok {
			out.Storage = boxed
		}
		out.ByValue = false
		out.Strategy = StrategyNullable
		out.Note = "null encodes absence"
		return out, nil

	case ir.Callback:
		desc, d := m.trampoline(user, v, m.mapJava)
		if d != nil {
			return Mapped{}, d
		}
		return Mapped{Strategy: StrategyTrampoline, Trampoline: desc}, nil

	case ir.ResultLike:
		return m.mapResult(user, v, m.mapJava, "int")
	}

	return Mapped{}, m.unmappable(user, t)
}

func (m *Mapper) mapJavaNamed(user ir.DeclID, v ir.Named) (Mapped, *diag.Diagnostic) {
	decl := m.model.Decl(v.ID)

	if decl.Kind == ir.DeclOpaque || m.graph.Opaque(user, v.ID) {
		return Mapped{
			Storage:  "long",
			ByValue:  true,
			Strategy: StrategyHandle,
			Note:     "opaque handle to " + decl.Name,
		}, nil
	}

	switch decl.Kind {
	case ir.DeclStruct:
		return Mapped{Storage: decl.Name, Strategy: StrategyDirect}, nil
	case ir.DeclEnum:
		if decl.Enum.Tagged {
			return Mapped{
				Storage:  "long",
				ByValue:  true,
				Strategy: StrategyHandle,
				Note:     "tagged union handle; inspect with the generated " + decl.Name + " tag accessor",
			}, nil
		}
		return Mapped{
			Storage:  "int",
			ByValue:  true,
			Strategy: StrategyDirect,
			Note:     "values defined by " + decl.Name,
		}, nil
	case ir.DeclAlias:
		// Aliases have no managed-side identity; map the target.
		return m.mapJava(user, decl.Alias.Target)
	}

	return Mapped{}, m.unmappable(user, v)
}
