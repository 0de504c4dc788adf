package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

func structDecl(id ir.DeclID, name string, fields ...ir.FieldDecl) ir.Decl {
	return ir.Decl{
		ID: id, Kind: ir.DeclStruct, Name: name, Order: int(id),
		Struct: &ir.StructDecl{Fields: fields},
	}
}

func field(name string, t ir.TypeRef) ir.FieldDecl {
	return ir.FieldDecl{Name: name, Type: t}
}

func TestOrder_DefinitionBeforeUse(t *testing.T) {
	// Holder (declared first) embeds Point by value; Point must still be
	// emitted first.
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "Holder", field("p", ir.Named{ID: 1})),
		structDecl(1, "Point", field("x", ir.Primitive{Kind: ir.PrimFloat, Width: 64})),
	})

	g := Build(m)
	require.Nil(t, g.Err())

	order := g.Order()
	assert.Equal(t, []ir.DeclID{1, 0}, order)
}

func TestOrder_Deterministic(t *testing.T) {
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "A", field("b", ir.Named{ID: 1}), field("c", ir.Named{ID: 2})),
		structDecl(1, "B", field("c", ir.Named{ID: 2})),
		structDecl(2, "C", field("x", ir.Primitive{Kind: ir.PrimInt, Width: 32, Signed: true})),
	})

	first := Build(m).Order()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build(m).Order())
	}
	assert.Equal(t, []ir.DeclID{2, 1, 0}, first)
}

func TestOrder_IndependentDeclsKeepSourceOrder(t *testing.T) {
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "First"),
		structDecl(1, "Second"),
		structDecl(2, "Third"),
	})
	assert.Equal(t, []ir.DeclID{0, 1, 2}, Build(m).Order())
}

func TestSelfReferencePointer_BecomesOpaqueForward(t *testing.T) {
	// Node { next: *mut Node } is the classic linked list: the cycle
	// closes behind a pointer, so a forward declaration resolves it.
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "Node",
			field("value", ir.Primitive{Kind: ir.PrimInt, Width: 32, Signed: true}),
			field("next", ir.Pointer{Elem: ir.Named{ID: 0}, Mutable: true}),
		),
	})

	g := Build(m)
	require.Nil(t, g.Err())
	assert.True(t, g.Opaque(0, 0))
	assert.Equal(t, []ir.DeclID{0}, g.Forward())
}

func TestMutualPointerCycle_NotFatal(t *testing.T) {
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "Parent", field("child", ir.Pointer{Elem: ir.Named{ID: 1}, Mutable: true})),
		structDecl(1, "Child", field("parent", ir.Pointer{Elem: ir.Named{ID: 0}, Mutable: true})),
	})

	g := Build(m)
	require.Nil(t, g.Err())
	assert.True(t, g.Opaque(0, 1))
	assert.True(t, g.Opaque(1, 0))
	assert.Equal(t, []ir.DeclID{0, 1}, g.Forward())
	assert.Len(t, g.Order(), 2)
}

func TestHardCycle_VictimHasFewestDependents(t *testing.T) {
	// All three embed by value and the component is cyclic. Inside it,
	// B and C each have two dependents but A has only one, so A is the
	// first to become by-reference-only.
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "A", field("b", ir.Named{ID: 1}), field("c", ir.Named{ID: 2})),
		structDecl(1, "B", field("c", ir.Named{ID: 2})),
		structDecl(2, "C", field("b", ir.Named{ID: 1}), field("a", ir.Named{ID: 0})),
	})

	g := Build(m)
	require.Nil(t, g.Err())
	assert.True(t, g.Opaque(2, 0), "the edge into the victim is downgraded")
	assert.False(t, g.Opaque(0, 1), "edges out of the victim stay hard")
	assert.False(t, g.Opaque(0, 2))
}

func TestHardCycle_TieBreaksOnSourceOrder(t *testing.T) {
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "A", field("b", ir.Named{ID: 1})),
		structDecl(1, "B", field("a", ir.Named{ID: 0})),
	})

	g := Build(m)
	require.Nil(t, g.Err())
	// Equal dependent counts: the earlier declaration becomes the
	// forward-declared one.
	assert.True(t, g.Opaque(1, 0))
	assert.Equal(t, []ir.DeclID{0}, g.Forward())
}

func TestFunctionCycle_Fatal(t *testing.T) {
	// An alias whose target is a function name, used by that function's
	// own signature, closes a cycle through the function. Functions have
	// no forward-declarable structure, so the run fails.
	m := ir.NewModel([]ir.Decl{
		{
			ID: 0, Kind: ir.DeclAlias, Name: "Callback", Order: 0,
			Alias: &ir.AliasDecl{Target: ir.Named{ID: 1}},
		},
		{
			ID: 1, Kind: ir.DeclFunc, Name: "register", Order: 1,
			Func: &ir.FuncDecl{
				Params: []ir.ParamDecl{{Name: "cb", Type: ir.Named{ID: 0}}},
				Return: ir.Unit,
			},
		},
	})

	g := Build(m)
	require.NotNil(t, g.Err())
	assert.Equal(t, diag.CodeUnbreakableCycle, g.Err().Code)
	assert.Contains(t, g.Err().Message, "register")
}

func TestNoCycle_NoForwardDecls(t *testing.T) {
	m := ir.NewModel([]ir.Decl{
		structDecl(0, "Inner"),
		structDecl(1, "Outer", field("inner", ir.Named{ID: 0})),
	})

	g := Build(m)
	require.Nil(t, g.Err())
	assert.Empty(t, g.Forward())
	assert.False(t, g.Opaque(1, 0))
}
