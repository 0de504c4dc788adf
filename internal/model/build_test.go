package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/extract"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/source"
)

func raw(order int, item source.Item) extract.Raw {
	return extract.Raw{Item: item, Module: "m", Order: order}
}

func prim(name string) source.TypeExpr {
	return source.TypeExpr{Kind: source.ExprPrim, Name: name}
}

func named(name string) source.TypeExpr {
	return source.TypeExpr{Kind: source.ExprNamed, Name: name}
}

func i64p(v int64) *int64 { return &v }

func TestBuild_EnumDiscriminantGapFill(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{
			Kind: source.ItemEnum, Name: "Level", ReprC: true,
			Variants: []source.Variant{
				{Name: "Low", Value: i64p(2)},
				{Name: "Mid", Value: i64p(5)},
				{Name: "High"},
			},
		}),
	}, c)

	require.Equal(t, 1, m.Len())
	d := m.Decl(0)
	require.Equal(t, ir.DeclEnum, d.Kind)
	require.Len(t, d.Enum.Variants, 3)
	assert.Equal(t, int64(2), d.Enum.Variants[0].Value)
	assert.Equal(t, int64(5), d.Enum.Variants[1].Value)
	assert.Equal(t, int64(6), d.Enum.Variants[2].Value, "implicit value is successor of the previous variant")
	assert.False(t, d.Enum.Tagged)
	assert.Empty(t, c.All())
}

func TestBuild_EnumImplicitStartsAtZero(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{
			Kind: source.ItemEnum, Name: "Flag", ReprC: true,
			Variants: []source.Variant{{Name: "A"}, {Name: "B"}},
		}),
	}, c)

	d := m.Decl(0)
	assert.Equal(t, int64(0), d.Enum.Variants[0].Value)
	assert.Equal(t, int64(1), d.Enum.Variants[1].Value)
}

func TestBuild_DuplicateDiscriminantRejectsEnum(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{
			Kind: source.ItemEnum, Name: "Bad", ReprC: true,
			Variants: []source.Variant{
				{Name: "A", Value: i64p(3)},
				{Name: "B", Value: i64p(2)},
				{Name: "C"}, // implicit 3 collides with A
			},
		}),
		raw(1, source.Item{
			Kind: source.ItemEnum, Name: "Good", ReprC: true,
			Variants: []source.Variant{{Name: "X"}},
		}),
	}, c)

	require.Equal(t, 1, m.Len(), "only the colliding enum is dropped")
	assert.Equal(t, "Good", m.Decl(0).Name)

	fatals := c.Fatals()
	require.Len(t, fatals, 1)
	assert.Equal(t, diag.CodeDuplicateDiscriminant, fatals[0].Code)
	assert.Equal(t, "Bad", fatals[0].Decl)
}

func TestBuild_DuplicateNameKeepsFirst(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemStruct, Name: "Point", ReprC: true,
			Fields: []source.Field{{Name: "x", Type: prim("f64")}}}),
		raw(1, source.Item{Kind: source.ItemOpaque, Name: "Point"}),
	}, c)

	require.Equal(t, 1, m.Len())
	assert.Equal(t, ir.DeclStruct, m.Decl(0).Kind)

	fatals := c.Fatals()
	require.Len(t, fatals, 1)
	assert.Equal(t, diag.CodeDuplicateName, fatals[0].Code)
}

func TestBuild_UnresolvedReferenceDropsDecl(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemStruct, Name: "Broken", ReprC: true,
			Fields: []source.Field{{Name: "inner", Type: named("Missing")}}}),
		raw(1, source.Item{Kind: source.ItemStruct, Name: "Fine", ReprC: true,
			Fields: []source.Field{{Name: "x", Type: prim("i32")}}}),
	}, c)

	require.Equal(t, 1, m.Len())
	assert.Equal(t, "Fine", m.Decl(0).Name)
	require.Len(t, c.Fatals(), 1)
	assert.Equal(t, diag.CodeUnresolvedType, c.Fatals()[0].Code)
	assert.Equal(t, "Broken", c.Fatals()[0].Decl)
}

func TestBuild_OrphanCascade(t *testing.T) {
	// Corner references Broken, Broken references a missing name; both
	// must drop so no Named reference dangles.
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemStruct, Name: "Broken", ReprC: true,
			Fields: []source.Field{{Name: "inner", Type: named("Missing")}}}),
		raw(1, source.Item{Kind: source.ItemStruct, Name: "Corner", ReprC: true,
			Fields: []source.Field{{Name: "b", Type: named("Broken")}}}),
		raw(2, source.Item{Kind: source.ItemOpaque, Name: "Survivor"}),
	}, c)

	require.Equal(t, 1, m.Len())
	assert.Equal(t, "Survivor", m.Decl(0).Name)

	fatals := c.Fatals()
	require.Len(t, fatals, 2)
	for _, f := range fatals {
		assert.Equal(t, diag.CodeUnresolvedType, f.Code)
	}
}

func TestBuild_CompactRenumbersReferences(t *testing.T) {
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemStruct, Name: "Dropped", ReprC: true,
			Fields: []source.Field{{Name: "x", Type: named("Missing")}}}),
		raw(1, source.Item{Kind: source.ItemOpaque, Name: "Session"}),
		raw(2, source.Item{Kind: source.ItemStruct, Name: "Holder", ReprC: true,
			Fields: []source.Field{{Name: "s", Type: source.TypeExpr{
				Kind: source.ExprPtr, Elem: &source.TypeExpr{Kind: source.ExprNamed, Name: "Session"}, Mutable: true,
			}}}}),
	}, c)

	require.Equal(t, 2, m.Len())
	sessionID, ok := m.Lookup("Session")
	require.True(t, ok)

	holderID, ok := m.Lookup("Holder")
	require.True(t, ok)
	holder := m.Decl(holderID)
	ptr, ok := holder.Struct.Fields[0].Type.(ir.Pointer)
	require.True(t, ok)
	ref, ok := ptr.Elem.(ir.Named)
	require.True(t, ok)
	assert.Equal(t, sessionID, ref.ID, "reference must point at the compacted id")
}

func TestBuild_ErrorOutFlag(t *testing.T) {
	ret := source.TypeExpr{
		Kind: source.ExprResult,
		Ok:   &source.TypeExpr{Kind: source.ExprPrim, Name: "u32"},
		Err:  &source.TypeExpr{Kind: source.ExprPrim, Name: "i32"},
	}
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemFunc, Name: "parse", CABI: true, Return: &ret}),
		raw(1, source.Item{Kind: source.ItemFunc, Name: "reset", CABI: true}),
	}, c)

	require.Equal(t, 2, m.Len())
	assert.True(t, m.Decl(0).Func.ErrorOut)
	assert.False(t, m.Decl(1).Func.ErrorOut)
	assert.True(t, ir.IsVoid(m.Decl(1).Func.Return), "missing return defaults to void")
}

func TestBuild_ResultParamRejected(t *testing.T) {
	result := source.TypeExpr{
		Kind: source.ExprResult,
		Ok:   &source.TypeExpr{Kind: source.ExprPrim, Name: "u32"},
		Err:  &source.TypeExpr{Kind: source.ExprPrim, Name: "i32"},
	}
	c := &diag.Collector{}
	m := Build([]extract.Raw{
		raw(0, source.Item{Kind: source.ItemFunc, Name: "bad", CABI: true,
			Params: []source.Param{{Name: "r", Type: result}}}),
	}, c)

	assert.Equal(t, 0, m.Len())
	require.Len(t, c.Warnings(), 1)
	assert.Equal(t, diag.CodeUnsupportedConstruct, c.Warnings()[0].Code)
}
