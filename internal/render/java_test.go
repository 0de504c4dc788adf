package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/source"
)

func TestJava_Golden(t *testing.T) {
	m, g, order := buildFixture(t, calcModule())

	c := &diag.Collector{}
	res := Java(m, g, order, calcOptions(), c)

	require.Equal(t, 10, res.Rendered)
	assert.Empty(t, c.All())
	golden(t).Assert(t, "java_calc", []byte(res.Text))
}

func TestJava_DropsOnlyTheUnmappableDecl(t *testing.T) {
	modules := []source.Module{{
		Name: "hashing",
		Items: []source.Item{
			{
				Kind: source.ItemFunc, Name: "hash", Exported: true, CABI: true,
				Params: []source.Param{{Name: "data", Type: prim("u64")}},
				Return: primP("u64"),
			},
			{
				Kind: source.ItemFunc, Name: "count", Exported: true, CABI: true,
				Return: primP("u32"),
			},
		},
	}}
	m, g, order := buildFixture(t, modules)

	c := &diag.Collector{}
	res := Java(m, g, order, Options{Library: "hashing"}, c)

	assert.Equal(t, 1, res.Rendered, "the u64 signature is dropped, its sibling survives")
	assert.Contains(t, res.Text, "public static native long count();")
	assert.NotContains(t, res.Text, "hash(")

	require.Len(t, c.All(), 1)
	assert.Equal(t, diag.CodeUnmappableType, c.All()[0].Code)
	assert.Equal(t, "hash", c.All()[0].Decl)
}

func TestJava_DroppedSignatureLeavesNoCallbackInterface(t *testing.T) {
	// The callback parameter maps before the u64 parameter fails; the
	// dropped function must take its callback interface down with it.
	modules := []source.Module{{
		Name: "hooks",
		Items: []source.Item{
			{
				Kind: source.ItemFunc, Name: "set_hook", Exported: true, CABI: true,
				Params: []source.Param{
					{Name: "cb", Type: source.TypeExpr{
						Kind:   source.ExprFn,
						Params: []source.TypeExpr{prim("i32")},
					}},
					{Name: "salt", Type: prim("u64")},
				},
			},
			{
				Kind: source.ItemFunc, Name: "count", Exported: true, CABI: true,
				Return: primP("u32"),
			},
		},
	}}
	m, g, order := buildFixture(t, modules)

	c := &diag.Collector{}
	res := Java(m, g, order, Options{Library: "hooks"}, c)

	assert.Equal(t, 1, res.Rendered)
	assert.NotContains(t, res.Text, "SetHookCbCallback")
	assert.NotContains(t, res.Text, "public interface")
	require.Len(t, c.All(), 1)
	assert.Equal(t, diag.CodeUnmappableType, c.All()[0].Code)
}

func TestJava_NoPackageLine(t *testing.T) {
	m, g, order := buildFixture(t, calcModule())

	opts := calcOptions()
	opts.Package = ""
	res := Java(m, g, order, opts, &diag.Collector{})

	assert.NotContains(t, res.Text, "package ")
	assert.Contains(t, res.Text, "public final class Calc {")
}

func TestJava_CallbackReturnUnsupported(t *testing.T) {
	modules := []source.Module{{
		Name: "factories",
		Items: []source.Item{
			{
				Kind: source.ItemFunc, Name: "make_handler", Exported: true, CABI: true,
				Return: &source.TypeExpr{
					Kind:   source.ExprFn,
					Params: []source.TypeExpr{prim("i32")},
				},
			},
		},
	}}
	m, g, order := buildFixture(t, modules)

	c := &diag.Collector{}
	res := Java(m, g, order, Options{Library: "factories"}, c)

	assert.Zero(t, res.Rendered)
	require.Len(t, c.All(), 1)
	assert.Equal(t, diag.CodeUnmappableType, c.All()[0].Code)
}
