package typemap

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// dotnetPrimitives is the .NET rule table. The CLR has unsigned integers,
// so every canonical primitive maps exactly.
var dotnetPrimitives = map[ir.Primitive]string{
	{Kind: ir.PrimVoid}:                          "void",
	{Kind: ir.PrimBool}:                          "bool",
	{Kind: ir.PrimInt, Width: 8, Signed: true}:   "sbyte",
	{Kind: ir.PrimInt, Width: 16, Signed: true}:  "short",
	{Kind: ir.PrimInt, Width: 32, Signed: true}:  "int",
	{Kind: ir.PrimInt, Width: 64, Signed: true}:  "long",
	{Kind: ir.PrimInt, Width: 8}:                 "byte",
	{Kind: ir.PrimInt, Width: 16}:                "ushort",
	{Kind: ir.PrimInt, Width: 32}:                "uint",
	{Kind: ir.PrimInt, Width: 64}:                "ulong",
	{Kind: ir.PrimFloat, Width: 32}:              "float",
	{Kind: ir.PrimFloat, Width: 64}:              "double",
	{Kind: ir.PrimSize, Signed: true}:            "IntPtr",
	{Kind: ir.PrimSize}:                          "UIntPtr",
}

func (m *Mapper) mapDotNet(user ir.DeclID, t ir.TypeRef) (Mapped, *diag.Diagnostic) {
	switch v := t.(type) {
	case ir.Primitive:
		storage, ok := dotnetPrimitives[v]
		if !ok {
			return Mapped{}, m.unmappable(user, t)
		}
		return Mapped{Storage: storage, ByValue: true, Strategy: StrategyDirect}, nil

	case ir.String:
		// Crosses as an explicit ptr+len struct; plain string marshaling
		// would smuggle in a null-termination assumption.
		return Mapped{
			Storage:  "NativeString",
			ByValue:  true,
			Strategy: StrategyUTF8,
			Note:     "UTF-8 buffer with explicit byte length",
		}, nil

	case ir.Pointer:
		return Mapped{
			Storage:  "IntPtr",
			ByValue:  true,
			Strategy: StrategyHandle,
			Note:     "native pointer handle",
		}, nil

	case ir.FixedArray:
		elem, d := m.mapDotNet(user, v.Elem)
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
		return m.mapDotNetNamed(user, v)

	case ir.Option:
		inner, d := m.mapDotNet(user, v.Inner)
		if d != nil {
			return Mapped{}, d
		}
		out := inner
		out.Storage = inner.Storage + "?"
		out.ByValue = false
		out.Strategy = StrategyNullable
		out.Note = "null encodes absence"
		return out, nil

	case ir.Callback:
		desc, d := m.trampoline(user, v, m.mapDotNet)
		if d != nil {
			return Mapped{}, d
		}
		return Mapped{Strategy: StrategyTrampoline, Trampoline: desc}, nil

	case ir.ResultLike:
		return m.mapResult(user, v, m.mapDotNet, "int")
	}

	return Mapped{}, m.unmappable(user, t)
}

func (m *Mapper) mapDotNetNamed(user ir.DeclID, v ir.Named) (Mapped, *diag.Diagnostic) {
	decl := m.model.Decl(v.ID)

	if decl.Kind == ir.DeclOpaque || m.graph.Opaque(user, v.ID) {
		return Mapped{
			Storage:  "IntPtr",
			ByValue:  true,
			Strategy: StrategyHandle,
			Note:     "opaque handle to " + decl.Name,
		}, nil
	}

	switch decl.Kind {
	case ir.DeclStruct:
		return Mapped{Storage: decl.Name, ByValue: true, Strategy: StrategyDirect}, nil
	case ir.DeclEnum:
		if decl.Enum.Tagged {
			return Mapped{
				Storage:  "IntPtr",
				ByValue:  true,
				Strategy: StrategyHandle,
				Note:     "tagged union handle; inspect with the generated " + decl.Name + " tag accessor",
			}, nil
		}
		return Mapped{Storage: decl.Name, ByValue: true, Strategy: StrategyDirect}, nil
	case ir.DeclAlias:
		// C# has no typedef; map the target directly.
		return m.mapDotNet(user, decl.Alias.Target)
	}

	return Mapped{}, m.unmappable(user, v)
}
