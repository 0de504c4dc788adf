package render

import (
	"fmt"
	"strings"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/typemap"
)

// C renders the complete header unit: include guard, common includes, an
// extern "C" wrapper, then every surviving declaration in dependency
// order. Types referenced before their definition are forward-declared.
func C(m *ir.Model, g *depgraph.Graph, order []ir.DeclID, opts Options, c *diag.Collector) Result {
	mapper := typemap.New(typemap.BackendC, m, g, opts.Prefix)
	r := &cRenderer{model: m, mapper: mapper, opts: opts, diags: c, forward: make(map[ir.DeclID]bool)}
	for _, id := range g.Forward() {
		r.forward[id] = true
	}

	var body strings.Builder
	rendered := 0
	for _, id := range order {
		text, ok := r.decl(m.Decl(id))
		if !ok {
			continue
		}
		body.WriteString(text)
		body.WriteString("\n")
		rendered++
	}
	if rendered == 0 {
		return Result{}
	}

	guard := fmt.Sprintf("%sgenerated_%s", opts.Prefix, sanitizeID(opts.Library))

	var out strings.Builder
	fmt.Fprintf(&out, "#ifndef %s\n#define %s\n\n", guard, guard)
	out.WriteString("#include <stdint.h>\n#include <stdbool.h>\n\n")
	out.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	if usesString(m) {
		fmt.Fprintf(&out, "typedef struct {\n    const uint8_t *ptr;\n    uintptr_t len;\n} %sstring_t;\n\n", opts.Prefix)
	}

	if fwd := g.Forward(); len(fwd) > 0 {
		for _, id := range fwd {
			fmt.Fprintf(&out, "typedef struct %s %s;\n", m.Decl(id).Name, m.Decl(id).Name)
		}
		out.WriteString("\n")
	}

	out.WriteString(body.String())
	out.WriteString("#ifdef __cplusplus\n}\n#endif\n\n#endif\n")

	return Result{Text: out.String(), Rendered: rendered}
}

type cRenderer struct {
	model  *ir.Model
	mapper *typemap.Mapper
	opts   Options
	diags  *diag.Collector

	// forward marks declarations already typedef'd in the prologue; their
	// definitions must not repeat the typedef (C99 rejects redefinition).
	forward map[ir.DeclID]bool
}

// decl renders one declaration. ok is false when a mapping failure dropped
// the declaration from this backend.
func (r *cRenderer) decl(d *ir.Decl) (string, bool) {
	var b strings.Builder
	r.doc(&b, d.Doc, "")

	switch d.Kind {
	case ir.DeclOpaque:
		fmt.Fprintf(&b, "typedef struct %s %s;\n", d.Name, d.Name)

	case ir.DeclStruct:
		if !r.structDecl(&b, d) {
			return "", false
		}

	case ir.DeclEnum:
		if d.Enum.Tagged {
			if !r.taggedEnum(&b, d) {
				return "", false
			}
		} else {
			r.plainEnum(&b, d)
		}

	case ir.DeclAlias:
		if !r.alias(&b, d) {
			return "", false
		}

	case ir.DeclConst:
		if _, diagErr := r.mapper.Map(d.ID, d.Const.Type); diagErr != nil {
			skip(r.diags, diagErr)
			return "", false
		}
		fmt.Fprintf(&b, "#define %s %s\n", d.Name, d.Const.Value)

	case ir.DeclFunc:
		if !r.fn(&b, d) {
			return "", false
		}
	}

	return b.String(), true
}

func (r *cRenderer) structDecl(b *strings.Builder, d *ir.Decl) bool {
	var fields strings.Builder
	for _, f := range d.Struct.Fields {
		mapped, diagErr := r.mapper.Map(d.ID, f.Type)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		r.doc(&fields, f.Doc, "    ")
		fmt.Fprintf(&fields, "    %s;\n", cDeclarator(mapped, f.Name))
	}
	if r.forward[d.ID] {
		fmt.Fprintf(b, "struct %s {\n%s};\n", d.Name, fields.String())
		return true
	}
	fmt.Fprintf(b, "typedef struct %s {\n%s} %s;\n", d.Name, fields.String(), d.Name)
	return true
}

func (r *cRenderer) plainEnum(b *strings.Builder, d *ir.Decl) {
	fmt.Fprintf(b, "typedef enum %s {\n", d.Name)
	for _, v := range d.Enum.Variants {
		r.doc(b, v.Doc, "    ")
		fmt.Fprintf(b, "    %s_%s = %d,\n", d.Name, v.Name, v.Value)
	}
	fmt.Fprintf(b, "} %s;\n", d.Name)
}

// taggedEnum emulates a tagged union: a tag enum, a payload union over the
// carrying variants, and a struct holding both.
func (r *cRenderer) taggedEnum(b *strings.Builder, d *ir.Decl) bool {
	fmt.Fprintf(b, "typedef enum %s_tag {\n", d.Name)
	for _, v := range d.Enum.Variants {
		fmt.Fprintf(b, "    %s_tag_%s = %d,\n", d.Name, v.Name, v.Value)
	}
	fmt.Fprintf(b, "} %s_tag;\n\n", d.Name)

	fmt.Fprintf(b, "typedef union %s_payload {\n", d.Name)
	for _, v := range d.Enum.Variants {
		if v.Payload == nil {
			continue
		}
		mapped, diagErr := r.mapper.Map(d.ID, v.Payload)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		fmt.Fprintf(b, "    %s;\n", cDeclarator(mapped, v.Name))
	}
	fmt.Fprintf(b, "} %s_payload;\n\n", d.Name)

	if r.forward[d.ID] {
		fmt.Fprintf(b, "struct %s {\n", d.Name)
	} else {
		fmt.Fprintf(b, "typedef struct %s {\n", d.Name)
	}
	fmt.Fprintf(b, "    %s_tag tag;\n", d.Name)
	fmt.Fprintf(b, "    %s_payload payload;\n", d.Name)
	if r.forward[d.ID] {
		b.WriteString("};\n")
	} else {
		fmt.Fprintf(b, "} %s;\n", d.Name)
	}
	return true
}

func (r *cRenderer) alias(b *strings.Builder, d *ir.Decl) bool {
	mapped, diagErr := r.mapper.Map(d.ID, d.Alias.Target)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}
	fmt.Fprintf(b, "typedef %s;\n", cDeclarator(mapped, d.Name))
	return true
}

func (r *cRenderer) fn(b *strings.Builder, d *ir.Decl) bool {
	ret, diagErr := r.mapper.Map(d.ID, d.Func.Return)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}

	var params []string
	for _, p := range d.Func.Params {
		mapped, diagErr := r.mapper.Map(d.ID, p.Type)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		params = append(params, cDeclarator(mapped, p.Name))
	}

	symbol := r.opts.Prefix + d.Name

	if d.Func.ErrorOut {
		if ret.Out != nil {
			params = append(params, cDeclarator(ptrTo(*ret.Out), "out"))
		}
		r.docLine(b, fmt.Sprintf("Returns 0 on success; nonzero is a %s value.", ret.ErrType))
		if ret.Out != nil {
			r.docLine(b, "On success the result is written through `out`.")
		}
	}

	paramList := "void"
	if len(params) > 0 {
		paramList = strings.Join(params, ", ")
	}

	if ret.Trampoline != nil {
		// A function returning a function pointer wraps the entire
		// declaration inside the pointer declarator.
		inner := fmt.Sprintf("%s(%s)", symbol, paramList)
		fmt.Fprintf(b, "%s;\n", cFnPtr(ret.Trampoline, inner))
		return true
	}

	fmt.Fprintf(b, "%s(%s);\n", cPrepend(ret.Storage, symbol), paramList)
	return true
}

func (r *cRenderer) doc(b *strings.Builder, doc, indent string) {
	if r.opts.StripDocs {
		return
	}
	for _, line := range docLines(doc) {
		if line == "" {
			fmt.Fprintf(b, "%s//\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s// %s\n", indent, line)
	}
}

// docLine writes a single generated comment line regardless of StripDocs:
// marshaling contracts stay visible even when source docs are stripped.
func (r *cRenderer) docLine(b *strings.Builder, line string) {
	fmt.Fprintf(b, "// %s\n", line)
}

// cDeclarator composes "type name" with C's declarator quirks: pointers
// attach to the name, arrays and function pointers wrap it.
func cDeclarator(m typemap.Mapped, name string) string {
	if m.Trampoline != nil {
		return cFnPtr(m.Trampoline, name)
	}
	if m.Len > 0 {
		return fmt.Sprintf("%s %s[%d]", m.Storage, name, m.Len)
	}
	return cPrepend(m.Storage, name)
}

// cPrepend joins a storage type and an identifier, collapsing the space
// after a trailing pointer.
func cPrepend(storage, name string) string {
	if strings.HasSuffix(storage, "*") {
		return storage + name
	}
	return storage + " " + name
}

// ptrTo derives the out-parameter representation: a pointer to the mapped
// payload.
func ptrTo(m typemap.Mapped) typemap.Mapped {
	storage := m.Storage + " *"
	if strings.HasSuffix(m.Storage, "*") {
		storage = m.Storage + "*"
	}
	return typemap.Mapped{Storage: storage, Strategy: typemap.StrategyDirect}
}

// cFnPtr renders "ret (*name)(params)" for a callback trampoline.
func cFnPtr(desc *typemap.TrampolineDesc, name string) string {
	params := make([]string, 0, len(desc.Params))
	for _, p := range desc.Params {
		if p.Len > 0 {
			params = append(params, ptrTo(*p.Elem).Storage)
			continue
		}
		params = append(params, p.Storage)
	}
	paramList := "void"
	if len(params) > 0 {
		paramList = strings.Join(params, ", ")
	}

	ret := desc.Return.Storage
	if strings.HasSuffix(ret, "*") {
		return fmt.Sprintf("%s(*%s)(%s)", ret, name, paramList)
	}
	return fmt.Sprintf("%s (*%s)(%s)", ret, name, paramList)
}
