package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamedIDs_Composite(t *testing.T) {
	// Result<Option<*Named(1)>, Named(2)> inside a callback parameter.
	ref := Callback{
		Params: []TypeRef{
			ResultLike{
				Ok:  Option{Inner: Pointer{Elem: Named{ID: 1}, Mutable: true}},
				Err: Named{ID: 2},
			},
			FixedArray{Elem: Named{ID: 3}, Len: 4},
		},
		Return: Named{ID: 5},
	}

	ids := NamedIDs(ref, nil)
	assert.Equal(t, []DeclID{1, 2, 3, 5}, ids)
}

func TestNamedIDs_PrimitiveOnly(t *testing.T) {
	ids := NamedIDs(Primitive{Kind: PrimInt, Width: 32, Signed: true}, nil)
	assert.Empty(t, ids)
}

func TestIsVoid(t *testing.T) {
	assert.True(t, IsVoid(Unit))
	assert.True(t, IsVoid(Primitive{Kind: PrimVoid}))
	assert.False(t, IsVoid(Primitive{Kind: PrimBool}))
	assert.False(t, IsVoid(String{}))
}

func TestDecl_IsType(t *testing.T) {
	cases := []struct {
		kind DeclKind
		want bool
	}{
		{DeclStruct, true},
		{DeclEnum, true},
		{DeclAlias, true},
		{DeclOpaque, true},
		{DeclFunc, false},
		{DeclConst, false},
	}
	for _, tc := range cases {
		d := Decl{Kind: tc.kind}
		assert.Equal(t, tc.want, d.IsType(), "kind %s", tc.kind)
	}
}

func TestModel_Lookup(t *testing.T) {
	m := NewModel([]Decl{
		{ID: 0, Kind: DeclStruct, Name: "Point", Struct: &StructDecl{}},
		{ID: 1, Kind: DeclFunc, Name: "reset", Func: &FuncDecl{Return: Unit}},
	})

	id, ok := m.Lookup("Point")
	assert.True(t, ok)
	assert.Equal(t, DeclID(0), id)

	_, ok = m.Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []DeclID{1}, m.Funcs())
}
