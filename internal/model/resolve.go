package model

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/source"
)

// primitives maps source primitive names to their canonical forms.
var primitives = map[string]ir.Primitive{
	"unit":  {Kind: ir.PrimVoid},
	"void":  {Kind: ir.PrimVoid},
	"bool":  {Kind: ir.PrimBool},
	"i8":    {Kind: ir.PrimInt, Width: 8, Signed: true},
	"i16":   {Kind: ir.PrimInt, Width: 16, Signed: true},
	"i32":   {Kind: ir.PrimInt, Width: 32, Signed: true},
	"i64":   {Kind: ir.PrimInt, Width: 64, Signed: true},
	"u8":    {Kind: ir.PrimInt, Width: 8},
	"u16":   {Kind: ir.PrimInt, Width: 16},
	"u32":   {Kind: ir.PrimInt, Width: 32},
	"u64":   {Kind: ir.PrimInt, Width: 64},
	"f32":   {Kind: ir.PrimFloat, Width: 32},
	"f64":   {Kind: ir.PrimFloat, Width: 64},
	"usize": {Kind: ir.PrimSize},
	"isize": {Kind: ir.PrimSize, Signed: true},
}

// resolve converts a source type expression into a canonical TypeRef,
// resolving named references against the claimed name set. Named ids are
// provisional candidate positions until compact renumbers them. On failure
// a diagnostic is collected against referrer and ok is false.
func (b *builder) resolve(expr source.TypeExpr, referrer string) (ir.TypeRef, bool) {
	switch expr.Kind {
	case source.ExprPrim:
		p, known := primitives[expr.Name]
		if !known {
			b.c.Add(diag.UnresolvedType(expr.Name, referrer))
			return nil, false
		}
		return p, true

	case source.ExprString:
		return ir.String{}, true

	case source.ExprPtr:
		elem, ok := b.resolve(*expr.Elem, referrer)
		if !ok {
			return nil, false
		}
		return ir.Pointer{Elem: elem, Mutable: expr.Mutable}, true

	case source.ExprArray:
		elem, ok := b.resolve(*expr.Elem, referrer)
		if !ok {
			return nil, false
		}
		return ir.FixedArray{Elem: elem, Len: expr.Len}, true

	case source.ExprNamed:
		pos, found := b.index[expr.Name]
		if !found {
			b.c.Add(diag.UnresolvedType(expr.Name, referrer))
			return nil, false
		}
		return ir.Named{ID: ir.DeclID(pos)}, true

	case source.ExprFn:
		cb := ir.Callback{Return: ir.Unit}
		for _, p := range expr.Params {
			t, ok := b.resolve(p, referrer)
			if !ok {
				return nil, false
			}
			cb.Params = append(cb.Params, t)
		}
		if expr.Return != nil {
			t, ok := b.resolve(*expr.Return, referrer)
			if !ok {
				return nil, false
			}
			cb.Return = t
		}
		return cb, true

	case source.ExprOption:
		inner, ok := b.resolve(*expr.Elem, referrer)
		if !ok {
			return nil, false
		}
		return ir.Option{Inner: inner}, true

	case source.ExprResult:
		okT, ok := b.resolve(*expr.Ok, referrer)
		if !ok {
			return nil, false
		}
		errT, ok := b.resolve(*expr.Err, referrer)
		if !ok {
			return nil, false
		}
		return ir.ResultLike{Ok: okT, Err: errT}, true
	}

	b.c.Add(diag.UnresolvedType(string(expr.Kind), referrer))
	return nil, false
}

// declRefs returns every declaration id a declaration references.
func declRefs(d *ir.Decl) []ir.DeclID {
	var ids []ir.DeclID
	switch d.Kind {
	case ir.DeclFunc:
		for _, p := range d.Func.Params {
			ids = ir.NamedIDs(p.Type, ids)
		}
		ids = ir.NamedIDs(d.Func.Return, ids)
	case ir.DeclStruct:
		for _, f := range d.Struct.Fields {
			ids = ir.NamedIDs(f.Type, ids)
		}
	case ir.DeclEnum:
		for _, v := range d.Enum.Variants {
			if v.Payload != nil {
				ids = ir.NamedIDs(v.Payload, ids)
			}
		}
	case ir.DeclAlias:
		ids = ir.NamedIDs(d.Alias.Target, ids)
	case ir.DeclConst:
		ids = ir.NamedIDs(d.Const.Type, ids)
	}
	return ids
}

// rewriteDecl applies f to every Named id inside the declaration.
func rewriteDecl(d *ir.Decl, f func(ir.DeclID) ir.DeclID) {
	switch d.Kind {
	case ir.DeclFunc:
		for i := range d.Func.Params {
			d.Func.Params[i].Type = rewriteRef(d.Func.Params[i].Type, f)
		}
		d.Func.Return = rewriteRef(d.Func.Return, f)
	case ir.DeclStruct:
		for i := range d.Struct.Fields {
			d.Struct.Fields[i].Type = rewriteRef(d.Struct.Fields[i].Type, f)
		}
	case ir.DeclEnum:
		for i := range d.Enum.Variants {
			if d.Enum.Variants[i].Payload != nil {
				d.Enum.Variants[i].Payload = rewriteRef(d.Enum.Variants[i].Payload, f)
			}
		}
	case ir.DeclAlias:
		d.Alias.Target = rewriteRef(d.Alias.Target, f)
	case ir.DeclConst:
		d.Const.Type = rewriteRef(d.Const.Type, f)
	}
}

func rewriteRef(t ir.TypeRef, f func(ir.DeclID) ir.DeclID) ir.TypeRef {
	switch v := t.(type) {
	case ir.Named:
		return ir.Named{ID: f(v.ID)}
	case ir.Pointer:
		return ir.Pointer{Elem: rewriteRef(v.Elem, f), Mutable: v.Mutable}
	case ir.FixedArray:
		return ir.FixedArray{Elem: rewriteRef(v.Elem, f), Len: v.Len}
	case ir.Option:
		return ir.Option{Inner: rewriteRef(v.Inner, f)}
	case ir.ResultLike:
		return ir.ResultLike{Ok: rewriteRef(v.Ok, f), Err: rewriteRef(v.Err, f)}
	case ir.Callback:
		params := make([]ir.TypeRef, len(v.Params))
		for i, p := range v.Params {
			params[i] = rewriteRef(p, f)
		}
		return ir.Callback{Params: params, Return: rewriteRef(v.Return, f)}
	}
	return t
}
