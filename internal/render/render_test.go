package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/extract"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/model"
	"github.com/bindweave/bindweave/internal/source"
)

func prim(name string) source.TypeExpr {
	return source.TypeExpr{Kind: source.ExprPrim, Name: name}
}

func primP(name string) *source.TypeExpr {
	t := prim(name)
	return &t
}

func named(name string) source.TypeExpr {
	return source.TypeExpr{Kind: source.ExprNamed, Name: name}
}

func i64p(v int64) *int64 { return &v }

// buildFixture runs the full front half of the pipeline and requires it
// to be clean, so renderer tests start from a realistic ordered model.
func buildFixture(t *testing.T, modules []source.Module) (*ir.Model, *depgraph.Graph, []ir.DeclID) {
	t.Helper()
	c := &diag.Collector{}
	raws := extract.Extract(modules, c)
	m := model.Build(raws, c)
	require.Empty(t, c.Fatals())
	g := depgraph.Build(m)
	require.Nil(t, g.Err())
	return m, g, g.Order()
}

// calcModule is the shared fixture: one declaration of every major form.
func calcModule() []source.Module {
	return []source.Module{{
		Name: "calc",
		Items: []source.Item{
			{
				Kind: source.ItemConst, Name: "MAX_NODES", Exported: true,
				Doc: "Maximum node count.", ConstType: primP("u32"), Value: "64",
			},
			{
				Kind: source.ItemEnum, Name: "Status", Exported: true, ReprC: true,
				Doc: "Operation status codes.",
				Variants: []source.Variant{
					{Name: "Ok"},
					{Name: "NotFound", Value: i64p(4)},
					{Name: "Busy"},
				},
			},
			{
				Kind: source.ItemOpaque, Name: "Session", Exported: true,
				Doc: "An open session.",
			},
			{
				Kind: source.ItemStruct, Name: "Point", Exported: true, ReprC: true,
				Doc: "A point in 2-D space.",
				Fields: []source.Field{
					{Name: "x", Type: prim("f64")},
					{Name: "y", Type: prim("f64")},
				},
			},
			{
				Kind: source.ItemStruct, Name: "Rect", Exported: true, ReprC: true,
				Fields: []source.Field{
					{Name: "origin", Type: named("Point")},
					{Name: "size", Type: source.TypeExpr{
						Kind: source.ExprArray, Elem: primP("f64"), Len: 2,
					}},
				},
			},
			{
				Kind: source.ItemStruct, Name: "Config", Exported: true, ReprC: true,
				Fields: []source.Field{
					{Name: "retries", Type: source.TypeExpr{
						Kind: source.ExprOption, Elem: primP("u32"),
					}},
					{Name: "label", Type: source.TypeExpr{Kind: source.ExprString}},
				},
			},
			{
				Kind: source.ItemFunc, Name: "distance", Exported: true, CABI: true,
				Doc: "Euclidean distance between two points.",
				Params: []source.Param{
					{Name: "a", Type: named("Point")},
					{Name: "b", Type: named("Point")},
				},
				Return: primP("f64"),
			},
			{
				Kind: source.ItemFunc, Name: "open_session", Exported: true, CABI: true,
				Doc: "Opens a session.",
				Params: []source.Param{
					{Name: "name", Type: source.TypeExpr{Kind: source.ExprString}},
				},
				Return: &source.TypeExpr{
					Kind: source.ExprResult,
					Ok:   &source.TypeExpr{Kind: source.ExprNamed, Name: "Session"},
					Err:  &source.TypeExpr{Kind: source.ExprNamed, Name: "Status"},
				},
			},
			{
				Kind: source.ItemFunc, Name: "close_session", Exported: true, CABI: true,
				Params: []source.Param{
					{Name: "session", Type: named("Session")},
				},
			},
			{
				Kind: source.ItemFunc, Name: "set_logger", Exported: true, CABI: true,
				Params: []source.Param{
					{Name: "cb", Type: source.TypeExpr{
						Kind:   source.ExprFn,
						Params: []source.TypeExpr{prim("i32")},
					}},
				},
			},
		},
	}}
}

func calcOptions() Options {
	return Options{
		Package: "com.example.calc",
		Library: "calc",
		Prefix:  "calc_",
	}
}
