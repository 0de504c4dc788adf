package depgraph

import (
	"sort"

	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
)

// breakCycles detects strongly connected components over the combined
// hard+soft edge set and downgrades closing edges to opaque forward
// references until the hard graph is acyclic.
//
// Policy, in order:
//  1. An SCC containing a function declaration is unbreakable: functions
//     cannot forward-declare structurally. Fatal for the run.
//  2. Soft edges inside an SCC (uses behind a pointer) are downgraded
//     first; this handles the common self-referential and mutually
//     referential struct shapes without touching layout.
//  3. If hard edges alone still form a cycle, the member with the fewest
//     dependents becomes by-reference-only: every hard edge into it from
//     inside the SCC is downgraded. Source order breaks ties.
func (g *Graph) breakCycles() {
	for {
		sccs := g.stronglyConnected()

		broke := false
		for _, scc := range sccs {
			if len(scc) == 1 && !g.selfLoop(scc[0]) {
				continue
			}

			for _, id := range scc {
				if g.model.Decl(id).Kind == ir.DeclFunc {
					g.fatal = diag.UnbreakableCycle(g.cyclePath(scc))
					return
				}
			}

			g.downgradeSCC(scc)
			broke = true
		}

		if !broke {
			return
		}
	}
}

// selfLoop reports whether id references itself through any live edge.
func (g *Graph) selfLoop(id ir.DeclID) bool {
	for _, dep := range g.liveDeps(id) {
		if dep == id {
			return true
		}
	}
	return false
}

// liveDeps returns hard and soft dependencies that have not been
// downgraded yet.
func (g *Graph) liveDeps(id ir.DeclID) []ir.DeclID {
	var deps []ir.DeclID
	for _, dep := range g.hard[id] {
		if !g.opaque[edge{User: id, Dep: dep}] {
			deps = append(deps, dep)
		}
	}
	for _, dep := range g.soft[id] {
		if !g.opaque[edge{User: id, Dep: dep}] {
			deps = append(deps, dep)
		}
	}
	return deps
}

// downgradeSCC breaks one strongly connected component.
func (g *Graph) downgradeSCC(scc []ir.DeclID) {
	inSCC := make(map[ir.DeclID]bool, len(scc))
	for _, id := range scc {
		inSCC[id] = true
	}

	// Soft edges inside the component become opaque forward references.
	for _, user := range scc {
		for _, dep := range g.soft[user] {
			e := edge{User: user, Dep: dep}
			if inSCC[dep] && !g.opaque[e] {
				g.opaque[e] = true
				g.forward[dep] = true
			}
		}
	}

	// If hard edges alone still close the cycle, pick a victim: fewest
	// dependents, then earliest source order.
	if g.hardCycle(scc, inSCC) {
		victim := g.pickVictim(scc, inSCC)
		for _, user := range scc {
			e := edge{User: user, Dep: victim}
			if g.hasHardEdge(user, victim) && !g.opaque[e] {
				g.opaque[e] = true
				g.forward[victim] = true
			}
		}
	}
}

func (g *Graph) hasHardEdge(user, dep ir.DeclID) bool {
	for _, d := range g.hard[user] {
		if d == dep {
			return true
		}
	}
	return false
}

// hardCycle reports whether the component is still cyclic considering only
// live hard edges.
func (g *Graph) hardCycle(scc []ir.DeclID, inSCC map[ir.DeclID]bool) bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[ir.DeclID]int, len(scc))

	var visit func(id ir.DeclID) bool
	visit = func(id ir.DeclID) bool {
		state[id] = visiting
		for _, dep := range g.hard[id] {
			if !inSCC[dep] || g.opaque[edge{User: id, Dep: dep}] {
				continue
			}
			switch state[dep] {
			case visiting:
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, id := range scc {
		if state[id] == unvisited && visit(id) {
			return true
		}
	}
	return false
}

// pickVictim chooses which component member becomes by-reference-only:
// the one with the fewest dependents inside the component, ties broken by
// source order.
func (g *Graph) pickVictim(scc []ir.DeclID, inSCC map[ir.DeclID]bool) ir.DeclID {
	dependents := make(map[ir.DeclID]int, len(scc))
	for _, user := range scc {
		for _, dep := range g.hard[user] {
			if inSCC[dep] && !g.opaque[edge{User: user, Dep: dep}] {
				dependents[dep]++
			}
		}
	}

	sorted := append([]ir.DeclID(nil), scc...)
	sort.Slice(sorted, func(i, j int) bool {
		if dependents[sorted[i]] != dependents[sorted[j]] {
			return dependents[sorted[i]] < dependents[sorted[j]]
		}
		return g.model.Decl(sorted[i]).Order < g.model.Decl(sorted[j]).Order
	})
	return sorted[0]
}

// stronglyConnected finds SCCs over live edges using Tarjan's algorithm.
// Returns components of size > 1 plus single nodes with self-loops only
// when they still have live cyclic edges.
func (g *Graph) stronglyConnected() [][]ir.DeclID {
	var (
		index   = 0
		stack   []ir.DeclID
		indices = make(map[ir.DeclID]int)
		lowlink = make(map[ir.DeclID]int)
		onStack = make(map[ir.DeclID]bool)
		sccs    [][]ir.DeclID
	)

	var strongConnect func(v ir.DeclID)
	strongConnect = func(v ir.DeclID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.liveDeps(v) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.DeclID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || g.selfLoop(scc[0]) {
				// Keep member order deterministic for diagnostics.
				sort.Slice(scc, func(i, j int) bool {
					return g.model.Decl(scc[i]).Order < g.model.Decl(scc[j]).Order
				})
				sccs = append(sccs, scc)
			}
		}
	}

	for _, d := range g.model.Decls() {
		if _, visited := indices[d.ID]; !visited {
			strongConnect(d.ID)
		}
	}
	return sccs
}
