// Package depgraph orders declarations so definitions precede uses and
// resolves reference cycles. Cycles among struct and enum declarations are
// broken by downgrading the closing edge to an opaque forward reference;
// cycles through function declarations cannot be broken and fail the run.
package depgraph

import (
	"sort"
	"strings"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// edge is a directed dependency: User's definition requires Dep.
type edge struct {
	User ir.DeclID
	Dep  ir.DeclID
}

// Graph holds definition-before-use requirements over a model.
//
// Hard edges come from by-value uses (struct fields, array elements, enum
// payloads, function parameters and returns); the dependency must be fully
// defined first. Soft edges come from uses behind a pointer or callback;
// a forward declaration suffices, so they never constrain ordering, but
// they participate in cycle detection.
type Graph struct {
	model *ir.Model

	hard map[ir.DeclID][]ir.DeclID
	soft map[ir.DeclID][]ir.DeclID

	// opaque records use sites downgraded to opaque forward references.
	opaque map[edge]bool

	// forward records declarations that need a forward declaration in
	// C-style backends because some use precedes their definition.
	forward map[ir.DeclID]bool

	fatal *diag.Diagnostic
}

// Build derives the dependency graph from the model and resolves cycles.
// A returned graph with Err() != nil had an unbreakable cycle; ordering is
// unavailable in that case.
func Build(m *ir.Model) *Graph {
	g := &Graph{
		model:   m,
		hard:    make(map[ir.DeclID][]ir.DeclID),
		soft:    make(map[ir.DeclID][]ir.DeclID),
		opaque:  make(map[edge]bool),
		forward: make(map[ir.DeclID]bool),
	}

	for _, d := range m.Decls() {
		g.collectEdges(&d)
	}
	g.breakCycles()

	return g
}

// Err returns the run-fatal cycle diagnostic, if any.
func (g *Graph) Err() *diag.Diagnostic {
	return g.fatal
}

// Opaque reports whether user's reference to dep was downgraded to an
// opaque forward reference.
func (g *Graph) Opaque(user, dep ir.DeclID) bool {
	return g.opaque[edge{User: user, Dep: dep}]
}

// Forward returns the declarations requiring a forward declaration,
// in source order.
func (g *Graph) Forward() []ir.DeclID {
	ids := make([]ir.DeclID, 0, len(g.forward))
	for id := range g.forward {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return g.model.Decl(ids[i]).Order < g.model.Decl(ids[j]).Order
	})
	return ids
}

// Order computes the emission order: a stable depth-first topological sort
// over hard edges, visiting declarations and their dependencies in source
// order so identical input always yields identical output.
func (g *Graph) Order() []ir.DeclID {
	n := g.model.Len()
	visited := make([]bool, n)
	order := make([]ir.DeclID, 0, n)

	var visit func(id ir.DeclID)
	visit = func(id ir.DeclID) {
		if visited[id] {
			return
		}
		visited[id] = true
		deps := append([]ir.DeclID(nil), g.hard[id]...)
		sort.Slice(deps, func(i, j int) bool {
			return g.model.Decl(deps[i]).Order < g.model.Decl(deps[j]).Order
		})
		for _, dep := range deps {
			if g.opaque[edge{User: id, Dep: dep}] {
				continue
			}
			visit(dep)
		}
		order = append(order, id)
	}

	for _, d := range g.model.Decls() {
		visit(d.ID)
	}
	return order
}

// collectEdges walks one declaration's type references. The byRef flag
// flips when the walk passes through a pointer or callback, turning
// subsequent named references into soft edges.
func (g *Graph) collectEdges(d *ir.Decl) {
	var walk func(t ir.TypeRef, byRef bool)
	walk = func(t ir.TypeRef, byRef bool) {
		switch v := t.(type) {
		case ir.Named:
			g.addEdge(d.ID, v.ID, byRef)
		case ir.Pointer:
			walk(v.Elem, true)
		case ir.FixedArray:
			walk(v.Elem, byRef)
		case ir.Option:
			walk(v.Inner, byRef)
		case ir.ResultLike:
			walk(v.Ok, byRef)
			walk(v.Err, byRef)
		case ir.Callback:
			for _, p := range v.Params {
				walk(p, true)
			}
			walk(v.Return, true)
		}
	}

	switch d.Kind {
	case ir.DeclFunc:
		for _, p := range d.Func.Params {
			walk(p.Type, false)
		}
		walk(d.Func.Return, false)
	case ir.DeclStruct:
		for _, f := range d.Struct.Fields {
			walk(f.Type, false)
		}
	case ir.DeclEnum:
		for _, v := range d.Enum.Variants {
			if v.Payload != nil {
				walk(v.Payload, false)
			}
		}
	case ir.DeclAlias:
		walk(d.Alias.Target, false)
	case ir.DeclConst:
		walk(d.Const.Type, false)
	}
}

func (g *Graph) addEdge(user, dep ir.DeclID, byRef bool) {
	m := g.hard
	if byRef {
		m = g.soft
	}
	for _, existing := range m[user] {
		if existing == dep {
			return
		}
	}
	m[user] = append(m[user], dep)
}

// declName is a helper for diagnostics.
func (g *Graph) declName(id ir.DeclID) string {
	return g.model.Decl(id).Name
}

// cyclePath renders an SCC as "A -> B -> A" for diagnostics.
func (g *Graph) cyclePath(scc []ir.DeclID) string {
	names := make([]string, 0, len(scc)+1)
	for _, id := range scc {
		names = append(names, g.declName(id))
	}
	names = append(names, g.declName(scc[0]))
	return strings.Join(names, " -> ")
}
