package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/source"
)

func u32Expr() *source.TypeExpr {
	return &source.TypeExpr{Kind: source.ExprPrim, Name: "u32"}
}

func TestExtract_SkipsUnexportedSilently(t *testing.T) {
	modules := []source.Module{{
		Name: "m",
		Items: []source.Item{
			{Kind: source.ItemStruct, Name: "Hidden", Exported: false, ReprC: true},
			{Kind: source.ItemStruct, Name: "Visible", Exported: true, ReprC: true},
		},
	}}

	c := &diag.Collector{}
	raws := Extract(modules, c)

	require.Len(t, raws, 1)
	assert.Equal(t, "Visible", raws[0].Item.Name)
	assert.Empty(t, c.All(), "unexported items are not part of the surface, not a problem with it")
}

func TestExtract_SkipsMangledFunctionsSilently(t *testing.T) {
	modules := []source.Module{{
		Name: "m",
		Items: []source.Item{
			{Kind: source.ItemFunc, Name: "internal_helper", Exported: true, CABI: false},
			{Kind: source.ItemFunc, Name: "api_call", Exported: true, CABI: true},
		},
	}}

	c := &diag.Collector{}
	raws := Extract(modules, c)

	require.Len(t, raws, 1)
	assert.Equal(t, "api_call", raws[0].Item.Name)
	assert.Empty(t, c.All())
}

func TestExtract_GenericDroppedWithWarning(t *testing.T) {
	modules := []source.Module{{
		Name: "m",
		Items: []source.Item{
			{Kind: source.ItemStruct, Name: "Pair", Exported: true, ReprC: true, Generic: true},
			{Kind: source.ItemStruct, Name: "Point", Exported: true, ReprC: true},
		},
	}}

	c := &diag.Collector{}
	raws := Extract(modules, c)

	require.Len(t, raws, 1)
	assert.Equal(t, "Point", raws[0].Item.Name)

	warnings := c.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.CodeUnsupportedConstruct, warnings[0].Code)
	assert.Equal(t, "Pair", warnings[0].Decl)
}

func TestExtract_RejectsNonCLayout(t *testing.T) {
	cases := []struct {
		name string
		item source.Item
	}{
		{
			name: "struct without repr_c",
			item: source.Item{Kind: source.ItemStruct, Name: "Loose", Exported: true},
		},
		{
			name: "enum without repr_c",
			item: source.Item{Kind: source.ItemEnum, Name: "Mode", Exported: true},
		},
		{
			name: "const with non-primitive type",
			item: source.Item{
				Kind: source.ItemConst, Name: "ORIGIN", Exported: true,
				ConstType: &source.TypeExpr{Kind: source.ExprNamed, Name: "Point"},
				Value:     "whatever",
			},
		},
		{
			name: "alias without target",
			item: source.Item{Kind: source.ItemAlias, Name: "Handle", Exported: true},
		},
		{
			name: "variadic function",
			item: source.Item{Kind: source.ItemFunc, Name: "printf_like", Exported: true, CABI: true, Variadic: true},
		},
		{
			name: "diverging function",
			item: source.Item{Kind: source.ItemFunc, Name: "abort_now", Exported: true, CABI: true, Diverging: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &diag.Collector{}
			raws := Extract([]source.Module{{Name: "m", Items: []source.Item{tc.item}}}, c)

			assert.Empty(t, raws)
			require.Len(t, c.Warnings(), 1)
			assert.Equal(t, diag.CodeUnsupportedConstruct, c.Warnings()[0].Code)
		})
	}
}

func TestExtract_OrderSpansModules(t *testing.T) {
	modules := []source.Module{
		{Name: "a", Items: []source.Item{
			{Kind: source.ItemConst, Name: "A", Exported: true, ConstType: u32Expr(), Value: "1"},
		}},
		{Name: "b", Items: []source.Item{
			{Kind: source.ItemConst, Name: "B", Exported: true, ConstType: u32Expr(), Value: "2"},
			{Kind: source.ItemConst, Name: "C", Exported: true, ConstType: u32Expr(), Value: "3"},
		}},
	}

	c := &diag.Collector{}
	raws := Extract(modules, c)

	require.Len(t, raws, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, raws[i].Item.Name)
		assert.Equal(t, i, raws[i].Order)
	}
	assert.Equal(t, "a", raws[0].Module)
	assert.Equal(t, "b", raws[1].Module)
}
