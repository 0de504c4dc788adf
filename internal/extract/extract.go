// Package extract walks parsed source modules and pulls out the exported
// declarations the engine can translate. Items it cannot support are
// reported as UnsupportedConstruct warnings and dropped; the run continues.
package extract

import (
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/source"
)

// Raw is one extracted declaration in source order, before resolution.
type Raw struct {
	Item   source.Item
	Module string
	Order  int
}

// Extract returns the exported declarations of modules in source order.
// Input modules are never mutated. Items that are not part of the exported
// interface surface (unexported, or functions without a C calling
// convention) are skipped silently; exported items the engine cannot
// translate produce warnings on c.
func Extract(modules []source.Module, c *diag.Collector) []Raw {
	var raws []Raw
	order := 0
	for i := range modules {
		for _, item := range modules[i].Items {
			if !item.Exported {
				continue
			}
			if item.Kind == source.ItemFunc && !item.CABI {
				// Mangled functions cannot be called across the boundary.
				continue
			}
			if d := check(item); d != nil {
				c.Add(d)
				continue
			}
			raws = append(raws, Raw{Item: item, Module: modules[i].Name, Order: order})
			order++
		}
	}
	return raws
}

// check validates a single exported item against the supported surface.
// A non-nil result is the warning explaining why the item is dropped.
func check(item source.Item) *diag.Diagnostic {
	if item.Generic {
		return diag.UnsupportedConstruct(item.Name, "generic declarations cannot cross the FFI boundary")
	}

	switch item.Kind {
	case source.ItemStruct:
		if !item.ReprC {
			return diag.UnsupportedConstruct(item.Name, "struct layout is not C-compatible")
		}
	case source.ItemEnum:
		if !item.ReprC {
			return diag.UnsupportedConstruct(item.Name, "enum representation is not C-compatible")
		}
	case source.ItemConst:
		if item.ConstType == nil || item.ConstType.Kind != source.ExprPrim {
			return diag.UnsupportedConstruct(item.Name, "constants must have a primitive value")
		}
	case source.ItemAlias:
		if item.Target == nil {
			return diag.UnsupportedConstruct(item.Name, "alias has no target type")
		}
	case source.ItemFunc:
		if item.Variadic {
			return diag.UnsupportedConstruct(item.Name, "variadic signatures have no stable ABI form")
		}
		if item.Diverging {
			return diag.UnsupportedConstruct(item.Name, "function never returns")
		}
		// Remaining structural checks on signatures happen during model
		// build, where names can be resolved.
	case source.ItemOpaque:
	default:
		return diag.UnsupportedConstruct(item.Name, "unknown declaration kind")
	}

	return nil
}
