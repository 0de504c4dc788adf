package render

import (
	"fmt"
	"strings"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/typemap"
)

// Java renders a single compilable class source holding constants, nested
// data classes, typed exceptions, callback interfaces, and native method
// declarations matching the generated trampoline signatures.
func Java(m *ir.Model, g *depgraph.Graph, order []ir.DeclID, opts Options, c *diag.Collector) Result {
	mapper := typemap.New(typemap.BackendJava, m, g, opts.Prefix)
	r := &javaRenderer{
		model:   m,
		mapper:  mapper,
		opts:    opts,
		diags:   c,
		cbSeen:  make(map[string]bool),
		errSeen: make(map[string]bool),
	}

	rendered := 0
	for _, id := range order {
		if r.decl(m.Decl(id)) {
			rendered++
		}
	}
	if rendered == 0 {
		return Result{}
	}

	className := ClassName(opts.Library)

	var out strings.Builder
	if opts.Package != "" {
		fmt.Fprintf(&out, "package %s;\n\n", opts.Package)
	}
	fmt.Fprintf(&out, "public final class %s {\n", className)
	fmt.Fprintf(&out, "    static {\n        System.loadLibrary(\"%s\");\n    }\n\n", opts.Library)
	fmt.Fprintf(&out, "    private %s() {}\n\n", className)
	out.WriteString(r.types.String())
	out.WriteString(r.exceptions.String())
	out.WriteString(r.callbacks.String())
	out.WriteString(r.funcs.String())
	out.WriteString("}\n")

	return Result{Text: out.String(), Rendered: rendered}
}

type javaRenderer struct {
	model  *ir.Model
	mapper *typemap.Mapper
	opts   Options
	diags  *diag.Collector

	types      strings.Builder
	exceptions strings.Builder
	callbacks  strings.Builder
	funcs      strings.Builder

	cbSeen  map[string]bool
	errSeen map[string]bool
}

func (r *javaRenderer) decl(d *ir.Decl) bool {
	switch d.Kind {
	case ir.DeclConst:
		return r.constDecl(d)
	case ir.DeclEnum:
		return r.enum(d)
	case ir.DeclStruct:
		return r.structDecl(d)
	case ir.DeclOpaque:
		r.doc(&r.types, d.Doc, "    ")
		fmt.Fprintf(&r.types, "    // %s values cross the boundary as long handles.\n\n", d.Name)
		return true
	case ir.DeclAlias:
		mapped, diagErr := r.mapper.Map(d.ID, d.Alias.Target)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		storage := mapped.Storage
		if mapped.Trampoline != nil {
			storage = r.callbackInterface(callbackName(d.Name, ""), mapped.Trampoline)
		}
		r.doc(&r.types, d.Doc, "    ")
		fmt.Fprintf(&r.types, "    // %s is an alias for %s on the native side.\n\n", d.Name, storage)
		return true
	case ir.DeclFunc:
		return r.fn(d)
	}
	return false
}

func (r *javaRenderer) constDecl(d *ir.Decl) bool {
	mapped, diagErr := r.mapper.Map(d.ID, d.Const.Type)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}
	r.doc(&r.types, d.Doc, "    ")
	fmt.Fprintf(&r.types, "    public static final %s %s = %s;\n\n", mapped.Storage, d.Name, d.Const.Value)
	return true
}

// enum renders a plain enum as a constants holder class. Tagged unions add
// a native tag accessor; their values cross the boundary as handles.
func (r *javaRenderer) enum(d *ir.Decl) bool {
	name := d.Name
	if d.Enum.Tagged {
		name = d.Name + "Tag"
	}

	r.doc(&r.types, d.Doc, "    ")
	fmt.Fprintf(&r.types, "    public static final class %s {\n", name)
	for _, v := range d.Enum.Variants {
		r.doc(&r.types, v.Doc, "        ")
		fmt.Fprintf(&r.types, "        public static final int %s = %d;\n", v.Name, v.Value)
	}
	fmt.Fprintf(&r.types, "\n        private %s() {}\n    }\n\n", name)

	if d.Enum.Tagged {
		r.docLine(&r.types, "    ", fmt.Sprintf("Returns the %s discriminant for a %s handle.", name, d.Name))
		fmt.Fprintf(&r.types, "    public static native int %sTag(long handle);\n\n", camel(d.Name))
	}
	return true
}

func (r *javaRenderer) structDecl(d *ir.Decl) bool {
	var b strings.Builder
	var cbs []pendingCallback
	r.doc(&b, d.Doc, "    ")
	fmt.Fprintf(&b, "    public static final class %s {\n", d.Name)
	for _, f := range d.Struct.Fields {
		mapped, diagErr := r.mapper.Map(d.ID, f.Type)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		storage := mapped.Storage
		if mapped.Trampoline != nil {
			storage = callbackName(d.Name, f.Name)
			cbs = append(cbs, pendingCallback{storage, mapped.Trampoline})
		}
		r.doc(&b, f.Doc, "        ")
		if mapped.Note != "" {
			r.docLine(&b, "        ", capitalize(mapped.Note)+".")
		}
		fmt.Fprintf(&b, "        public %s %s;\n", storage, camel(f.Name))
	}
	b.WriteString("    }\n\n")
	for _, cb := range cbs {
		r.callbackInterface(cb.name, cb.desc)
	}
	r.types.WriteString(b.String())
	return true
}

func (r *javaRenderer) fn(d *ir.Decl) bool {
	ret, diagErr := r.mapper.Map(d.ID, d.Func.Return)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}
	if ret.Trampoline != nil {
		skip(r.diags, diag.UnmappableType(d.Name, string(typemap.BackendJava), "callback return type"))
		return false
	}

	type param struct {
		storage string
		name    string
	}
	var params []param
	var cbs []pendingCallback
	for _, p := range d.Func.Params {
		mapped, diagErr := r.mapper.Map(d.ID, p.Type)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		storage := mapped.Storage
		if mapped.Trampoline != nil {
			storage = callbackName(d.Name, p.Name)
			cbs = append(cbs, pendingCallback{storage, mapped.Trampoline})
		}
		params = append(params, param{storage: storage, name: camel(p.Name)})
	}
	for _, cb := range cbs {
		r.callbackInterface(cb.name, cb.desc)
	}

	joined := make([]string, len(params))
	for i, p := range params {
		joined[i] = p.storage + " " + p.name
	}
	paramList := strings.Join(joined, ", ")
	method := camel(d.Name)

	if !d.Func.ErrorOut {
		r.doc(&r.funcs, d.Doc, "    ")
		fmt.Fprintf(&r.funcs, "    public static native %s %s(%s);\n\n", ret.Storage, method, paramList)
		return true
	}

	// Error-out-parameter convention: a private native method returns the
	// raw status and writes the payload into a one-element array; the
	// public wrapper turns nonzero statuses into an exception.
	excName := r.exception(ret.ErrType)

	nativeParams := paramList
	if ret.Out != nil {
		outDecl := ret.Out.Storage + "[] out"
		if nativeParams == "" {
			nativeParams = outDecl
		} else {
			nativeParams += ", " + outDecl
		}
	}
	fmt.Fprintf(&r.funcs, "    private static native int %sNative(%s);\n\n", method, nativeParams)

	retStorage := "void"
	if ret.Out != nil {
		retStorage = ret.Out.Storage
	}

	r.doc(&r.funcs, d.Doc, "    ")
	r.docLine(&r.funcs, "    ", capitalize(ret.Note)+".")
	throwsClause := ""
	if excName != "" {
		throwsClause = " throws " + excName
	}
	fmt.Fprintf(&r.funcs, "    public static %s %s(%s)%s {\n", retStorage, method, paramList, throwsClause)

	callArgs := make([]string, len(params))
	for i, p := range params {
		callArgs[i] = p.name
	}
	if ret.Out != nil {
		fmt.Fprintf(&r.funcs, "        %s[] out = new %s[1];\n", ret.Out.Storage, ret.Out.Storage)
		callArgs = append(callArgs, "out")
	}
	fmt.Fprintf(&r.funcs, "        int status = %sNative(%s);\n", method, strings.Join(callArgs, ", "))
	fmt.Fprintf(&r.funcs, "        if (status != 0) {\n")
	if excName != "" {
		fmt.Fprintf(&r.funcs, "            throw new %s(status);\n", excName)
	} else {
		fmt.Fprintf(&r.funcs, "            throw new RuntimeException(\"native call failed with status \" + status);\n")
	}
	fmt.Fprintf(&r.funcs, "        }\n")
	if ret.Out != nil {
		fmt.Fprintf(&r.funcs, "        return out[0];\n")
	}
	fmt.Fprintf(&r.funcs, "    }\n\n")
	return true
}

// exception registers and returns the typed exception class for a named
// error enum, or "" when the error channel has no named surface.
func (r *javaRenderer) exception(errType string) string {
	id, ok := r.model.Lookup(errType)
	if !ok || r.model.Decl(id).Kind != ir.DeclEnum {
		return ""
	}
	name := errType + "Exception"
	if r.errSeen[name] {
		return name
	}
	r.errSeen[name] = true

	r.docLine(&r.exceptions, "    ", fmt.Sprintf("Thrown when a native call fails with a nonzero %s status.", errType))
	fmt.Fprintf(&r.exceptions, "    public static final class %s extends Exception {\n", name)
	fmt.Fprintf(&r.exceptions, "        public final int code;\n\n")
	fmt.Fprintf(&r.exceptions, "        public %s(int code) {\n", name)
	fmt.Fprintf(&r.exceptions, "            super(\"native call failed with status \" + code);\n")
	fmt.Fprintf(&r.exceptions, "            this.code = code;\n")
	fmt.Fprintf(&r.exceptions, "        }\n    }\n\n")
	return name
}

// callbackInterface registers and returns the single-method functional
// interface for a callback use site.
func (r *javaRenderer) callbackInterface(name string, desc *typemap.TrampolineDesc) string {
	if r.cbSeen[name] {
		return name
	}
	r.cbSeen[name] = true

	params := make([]string, len(desc.Params))
	for i, p := range desc.Params {
		params[i] = fmt.Sprintf("%s arg%d", p.Storage, i)
	}
	r.docLine(&r.callbacks, "    ", "Implemented by the caller; invoked from native code through the generated trampoline.")
	fmt.Fprintf(&r.callbacks, "    public interface %s {\n", name)
	fmt.Fprintf(&r.callbacks, "        %s invoke(%s);\n", desc.Return.Storage, strings.Join(params, ", "))
	fmt.Fprintf(&r.callbacks, "    }\n\n")
	return name
}

func (r *javaRenderer) doc(b *strings.Builder, doc, indent string) {
	if r.opts.StripDocs || doc == "" {
		return
	}
	fmt.Fprintf(b, "%s/**\n", indent)
	for _, line := range docLines(doc) {
		if line == "" {
			fmt.Fprintf(b, "%s *\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s * %s\n", indent, line)
	}
	fmt.Fprintf(b, "%s */\n", indent)
}

// docLine emits a generated contract comment; these stay even when source
// docs are stripped.
func (r *javaRenderer) docLine(b *strings.Builder, indent, line string) {
	fmt.Fprintf(b, "%s/** %s */\n", indent, line)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
