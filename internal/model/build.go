// Package model builds the immutable interface model from raw extracted
// declarations. It resolves every named type reference, normalizes enum
// discriminants, and guarantees that the finished model contains no
// dangling references: every ir.Named points at a declaration present in
// the model.
package model

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/extract"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/source"
)

// Build constructs the interface model from raw declarations. Failures are
// fatal to the affected declaration only: the declaration is dropped, a
// diagnostic is collected on c, and the build continues. Declarations that
// reference a dropped declaration are dropped in turn, so the returned
// model never dangles.
func Build(raws []extract.Raw, c *diag.Collector) *ir.Model {
	b := &builder{
		index: make(map[string]int),
		c:     c,
	}

	// Pass 1: claim names. The first declaration of a name wins; later
	// ones are rejected.
	for _, raw := range raws {
		if _, taken := b.index[raw.Item.Name]; taken {
			c.Add(diag.DuplicateName(raw.Item.Name))
			continue
		}
		b.index[raw.Item.Name] = len(b.raws)
		b.raws = append(b.raws, raw)
	}
	b.failed = make([]bool, len(b.raws))
	b.decls = make([]ir.Decl, len(b.raws))

	// Pass 2: resolve each declaration against the claimed names.
	for pos := range b.raws {
		b.buildDecl(pos)
	}

	// Pass 3: dropping a declaration orphans anything that referenced it.
	// Iterate to a fixpoint so the surviving set is closed under reference.
	b.dropOrphans()

	return b.compact()
}

type builder struct {
	raws   []extract.Raw
	index  map[string]int
	failed []bool
	decls  []ir.Decl
	c      *diag.Collector
}

// buildDecl converts one raw item into a provisional ir.Decl whose Named
// references use candidate positions as ids. Compact remaps them later.
func (b *builder) buildDecl(pos int) {
	item := b.raws[pos].Item
	d := ir.Decl{
		Name:  item.Name,
		Doc:   item.Doc,
		Order: b.raws[pos].Order,
	}

	ok := true
	switch item.Kind {
	case source.ItemFunc:
		d.Kind = ir.DeclFunc
		d.Func, ok = b.buildFunc(item)
	case source.ItemStruct:
		d.Kind = ir.DeclStruct
		d.Struct, ok = b.buildStruct(item)
	case source.ItemEnum:
		d.Kind = ir.DeclEnum
		d.Enum, ok = b.buildEnum(item)
	case source.ItemAlias:
		d.Kind = ir.DeclAlias
		var target ir.TypeRef
		target, ok = b.resolve(*item.Target, item.Name)
		d.Alias = &ir.AliasDecl{Target: target}
	case source.ItemOpaque:
		d.Kind = ir.DeclOpaque
	case source.ItemConst:
		d.Kind = ir.DeclConst
		var typ ir.TypeRef
		typ, ok = b.resolve(*item.ConstType, item.Name)
		d.Const = &ir.ConstDecl{Type: typ, Value: item.Value}
	}

	if !ok {
		b.failed[pos] = true
		return
	}
	b.decls[pos] = d
}

func (b *builder) buildFunc(item source.Item) (*ir.FuncDecl, bool) {
	fn := &ir.FuncDecl{Return: ir.Unit}

	for _, p := range item.Params {
		if p.Type.Kind == source.ExprResult {
			b.c.Add(diag.UnsupportedConstruct(item.Name, "result types are only allowed as return types"))
			return nil, false
		}
		t, ok := b.resolve(p.Type, item.Name)
		if !ok {
			return nil, false
		}
		fn.Params = append(fn.Params, ir.ParamDecl{Name: p.Name, Type: t})
	}

	if item.Return != nil {
		t, ok := b.resolve(*item.Return, item.Name)
		if !ok {
			return nil, false
		}
		fn.Return = t
		_, fn.ErrorOut = t.(ir.ResultLike)
	}

	return fn, true
}

func (b *builder) buildStruct(item source.Item) (*ir.StructDecl, bool) {
	st := &ir.StructDecl{}
	for _, f := range item.Fields {
		t, ok := b.resolve(f.Type, item.Name)
		if !ok {
			return nil, false
		}
		st.Fields = append(st.Fields, ir.FieldDecl{Name: f.Name, Type: t, Doc: f.Doc})
	}
	return st, true
}

// buildEnum normalizes discriminants: explicit values are kept, gaps fill
// with successor-of-previous, and duplicates reject the whole enum.
func (b *builder) buildEnum(item source.Item) (*ir.EnumDecl, bool) {
	en := &ir.EnumDecl{}
	seen := make(map[int64]bool)
	next := int64(0)

	for _, v := range item.Variants {
		value := next
		if v.Value != nil {
			value = *v.Value
		}
		if seen[value] {
			b.c.Add(diag.DuplicateDiscriminant(item.Name, v.Name, value))
			return nil, false
		}
		seen[value] = true
		next = value + 1

		variant := ir.VariantDecl{Name: v.Name, Value: value, Doc: v.Doc}
		if v.Payload != nil {
			t, ok := b.resolve(*v.Payload, item.Name)
			if !ok {
				return nil, false
			}
			variant.Payload = t
			en.Tagged = true
		}
		en.Variants = append(en.Variants, variant)
	}

	return en, true
}

// dropOrphans marks declarations referencing failed declarations as failed
// themselves, repeating until the surviving set is stable.
func (b *builder) dropOrphans() {
	for changed := true; changed; {
		changed = false
		for pos := range b.decls {
			if b.failed[pos] {
				continue
			}
			for _, ref := range declRefs(&b.decls[pos]) {
				if b.failed[int(ref)] {
					b.c.Add(diag.UnresolvedType(b.raws[ref].Item.Name, b.decls[pos].Name))
					b.failed[pos] = true
					changed = true
					break
				}
			}
		}
	}
}

// compact drops failed declarations and renumbers the survivors with
// contiguous ids, rewriting every Named reference to the final numbering.
func (b *builder) compact() *ir.Model {
	remap := make([]ir.DeclID, len(b.decls))
	var survivors []ir.Decl
	for pos := range b.decls {
		if b.failed[pos] {
			continue
		}
		remap[pos] = ir.DeclID(len(survivors))
		survivors = append(survivors, b.decls[pos])
	}

	for i := range survivors {
		survivors[i].ID = ir.DeclID(i)
		rewriteDecl(&survivors[i], func(id ir.DeclID) ir.DeclID {
			return remap[int(id)]
		})
	}

	return ir.NewModel(survivors)
}
