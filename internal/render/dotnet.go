package render

import (
	"fmt"
	"strings"

	"github.com/bindweave/bindweave/internal/depgraph"
	"github.com/bindweave/bindweave/internal/diag"
	"github.com/bindweave/bindweave/internal/ir"
	"github.com/bindweave/bindweave/internal/typemap"
)

// DotNet renders a single compilable C# source: a static class holding
// constants, enums, sequential-layout structs, typed exceptions, callback
// delegates, and platform-invoke declarations whose entry points and
// calling convention match the C symbols byte for byte.
func DotNet(m *ir.Model, g *depgraph.Graph, order []ir.DeclID, opts Options, c *diag.Collector) Result {
	mapper := typemap.New(typemap.BackendDotNet, m, g, opts.Prefix)
	r := &dotnetRenderer{
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
	namespace := opts.Package
	if namespace == "" {
		namespace = className
	}

	var out strings.Builder
	out.WriteString("using System;\nusing System.Runtime.InteropServices;\n\n")
	fmt.Fprintf(&out, "namespace %s\n{\n", namespace)
	fmt.Fprintf(&out, "    public static class %s\n    {\n", className)
	fmt.Fprintf(&out, "        private const string LibraryName = \"%s\";\n\n", opts.Library)

	if usesString(m) {
		out.WriteString("        /// <summary>UTF-8 buffer with an explicit byte length; never null-terminated.</summary>\n")
		out.WriteString("        [StructLayout(LayoutKind.Sequential)]\n")
		out.WriteString("        public struct NativeString\n        {\n")
		out.WriteString("            public IntPtr Ptr;\n            public UIntPtr Len;\n        }\n\n")
	}

	out.WriteString(r.types.String())
	out.WriteString(r.exceptions.String())
	out.WriteString(r.delegates.String())
	out.WriteString(r.funcs.String())
	out.WriteString("    }\n}\n")

	return Result{Text: out.String(), Rendered: rendered}
}

type dotnetRenderer struct {
	model  *ir.Model
	mapper *typemap.Mapper
	opts   Options
	diags  *diag.Collector

	types      strings.Builder
	exceptions strings.Builder
	delegates  strings.Builder
	funcs      strings.Builder

	cbSeen  map[string]bool
	errSeen map[string]bool
}

func (r *dotnetRenderer) decl(d *ir.Decl) bool {
	switch d.Kind {
	case ir.DeclConst:
		return r.constDecl(d)
	case ir.DeclEnum:
		return r.enum(d)
	case ir.DeclStruct:
		return r.structDecl(d)
	case ir.DeclOpaque:
		r.doc(&r.types, d.Doc, "        ")
		fmt.Fprintf(&r.types, "        // %s values cross the boundary as IntPtr handles.\n\n", d.Name)
		return true
	case ir.DeclAlias:
		mapped, diagErr := r.mapper.Map(d.ID, d.Alias.Target)
		if diagErr != nil {
			skip(r.diags, diagErr)
			return false
		}
		storage := mapped.Storage
		if mapped.Trampoline != nil {
			storage = r.delegate(callbackName(d.Name, ""), mapped.Trampoline)
		}
		r.doc(&r.types, d.Doc, "        ")
		fmt.Fprintf(&r.types, "        // %s is an alias for %s on the native side.\n\n", d.Name, storage)
		return true
	case ir.DeclFunc:
		return r.fn(d)
	}
	return false
}

func (r *dotnetRenderer) constDecl(d *ir.Decl) bool {
	mapped, diagErr := r.mapper.Map(d.ID, d.Const.Type)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}
	r.doc(&r.types, d.Doc, "        ")
	fmt.Fprintf(&r.types, "        public const %s %s = %s;\n\n", mapped.Storage, d.Name, d.Const.Value)
	return true
}

func (r *dotnetRenderer) enum(d *ir.Decl) bool {
	name := d.Name
	if d.Enum.Tagged {
		name = d.Name + "Tag"
	}

	r.doc(&r.types, d.Doc, "        ")
	fmt.Fprintf(&r.types, "        public enum %s\n        {\n", name)
	for _, v := range d.Enum.Variants {
		r.doc(&r.types, v.Doc, "            ")
		fmt.Fprintf(&r.types, "            %s = %d,\n", v.Name, v.Value)
	}
	r.types.WriteString("        }\n\n")

	if d.Enum.Tagged {
		r.docLine(&r.types, "        ", fmt.Sprintf("Returns the %s discriminant for a %s handle.", name, d.Name))
		fmt.Fprintf(&r.types, "        [DllImport(LibraryName, EntryPoint = \"%s%s_tag\", CallingConvention = CallingConvention.Cdecl)]\n", r.opts.Prefix, d.Name)
		fmt.Fprintf(&r.types, "        public static extern int Get%sTag(IntPtr handle);\n\n", d.Name)
	}
	return true
}

func (r *dotnetRenderer) structDecl(d *ir.Decl) bool {
	var b strings.Builder
	var cbs []pendingCallback
	r.doc(&b, d.Doc, "        ")
	b.WriteString("        [StructLayout(LayoutKind.Sequential)]\n")
	fmt.Fprintf(&b, "        public struct %s\n        {\n", d.Name)
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
		r.doc(&b, f.Doc, "            ")
		if mapped.Note != "" {
			r.docLine(&b, "            ", capitalize(mapped.Note)+".")
		}
		if mapped.Strategy == typemap.StrategyArrayCopy {
			fmt.Fprintf(&b, "            [MarshalAs(UnmanagedType.ByValArray, SizeConst = %d)]\n", mapped.Len)
		}
		fmt.Fprintf(&b, "            public %s %s;\n", storage, pascal(f.Name))
	}
	b.WriteString("        }\n\n")
	for _, cb := range cbs {
		r.delegate(cb.name, cb.desc)
	}
	r.types.WriteString(b.String())
	return true
}

func (r *dotnetRenderer) fn(d *ir.Decl) bool {
	ret, diagErr := r.mapper.Map(d.ID, d.Func.Return)
	if diagErr != nil {
		skip(r.diags, diagErr)
		return false
	}
	if ret.Trampoline != nil {
		skip(r.diags, diag.UnmappableType(d.Name, string(typemap.BackendDotNet), "callback return type"))
		return false
	}

	type param struct {
		attr    string
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
		attr := ""
		if mapped.Strategy == typemap.StrategyArrayCopy {
			attr = fmt.Sprintf("[MarshalAs(UnmanagedType.LPArray, SizeConst = %d)] ", mapped.Len)
		}
		params = append(params, param{attr: attr, storage: storage, name: camel(p.Name)})
	}
	for _, cb := range cbs {
		r.delegate(cb.name, cb.desc)
	}

	joined := make([]string, len(params))
	for i, p := range params {
		joined[i] = p.attr + p.storage + " " + p.name
	}
	paramList := strings.Join(joined, ", ")
	method := pascal(d.Name)
	entry := r.opts.Prefix + d.Name

	if !d.Func.ErrorOut {
		r.doc(&r.funcs, d.Doc, "        ")
		fmt.Fprintf(&r.funcs, "        [DllImport(LibraryName, EntryPoint = \"%s\", CallingConvention = CallingConvention.Cdecl)]\n", entry)
		fmt.Fprintf(&r.funcs, "        public static extern %s %s(%s);\n\n", ret.Storage, method, paramList)
		return true
	}

	// Error-out-parameter convention: a private extern returns the raw
	// status and writes the payload through an out parameter; the public
	// wrapper turns nonzero statuses into an exception.
	excName := r.exception(ret.ErrType)

	externParams := paramList
	if ret.Out != nil {
		outDecl := "out " + ret.Out.Storage + " value"
		if externParams == "" {
			externParams = outDecl
		} else {
			externParams += ", " + outDecl
		}
	}
	fmt.Fprintf(&r.funcs, "        [DllImport(LibraryName, EntryPoint = \"%s\", CallingConvention = CallingConvention.Cdecl)]\n", entry)
	fmt.Fprintf(&r.funcs, "        private static extern int %sNative(%s);\n\n", method, externParams)

	retStorage := "void"
	if ret.Out != nil {
		retStorage = ret.Out.Storage
	}

	r.doc(&r.funcs, d.Doc, "        ")
	r.docLine(&r.funcs, "        ", capitalize(ret.Note)+".")
	fmt.Fprintf(&r.funcs, "        public static %s %s(%s)\n        {\n", retStorage, method, paramList)

	callArgs := make([]string, len(params))
	for i, p := range params {
		callArgs[i] = p.name
	}
	if ret.Out != nil {
		callArgs = append(callArgs, fmt.Sprintf("out %s value", ret.Out.Storage))
	}
	fmt.Fprintf(&r.funcs, "            int status = %sNative(%s);\n", method, strings.Join(callArgs, ", "))
	fmt.Fprintf(&r.funcs, "            if (status != 0)\n            {\n")
	if excName != "" {
		fmt.Fprintf(&r.funcs, "                throw new %s(status);\n", excName)
	} else {
		fmt.Fprintf(&r.funcs, "                throw new Exception(\"native call failed with status \" + status);\n")
	}
	fmt.Fprintf(&r.funcs, "            }\n")
	if ret.Out != nil {
		fmt.Fprintf(&r.funcs, "            return value;\n")
	}
	fmt.Fprintf(&r.funcs, "        }\n\n")
	return true
}

// exception registers and returns the typed exception class for a named
// error enum, or "" when the error channel has no named surface.
func (r *dotnetRenderer) exception(errType string) string {
	id, ok := r.model.Lookup(errType)
	if !ok || r.model.Decl(id).Kind != ir.DeclEnum {
		return ""
	}
	name := errType + "Exception"
	if r.errSeen[name] {
		return name
	}
	r.errSeen[name] = true

	r.docLine(&r.exceptions, "        ", fmt.Sprintf("Thrown when a native call fails with a nonzero %s status.", errType))
	fmt.Fprintf(&r.exceptions, "        public sealed class %s : Exception\n        {\n", name)
	fmt.Fprintf(&r.exceptions, "            public %s Code { get; }\n\n", errType)
	fmt.Fprintf(&r.exceptions, "            public %s(int code)\n", name)
	fmt.Fprintf(&r.exceptions, "                : base(\"native call failed with status \" + code)\n            {\n")
	fmt.Fprintf(&r.exceptions, "                Code = (%s)code;\n", errType)
	fmt.Fprintf(&r.exceptions, "            }\n        }\n\n")
	return name
}

// delegate registers and returns the delegate type for a callback use
// site. The unmanaged function pointer uses the same Cdecl convention the
// trampoline exports.
func (r *dotnetRenderer) delegate(name string, desc *typemap.TrampolineDesc) string {
	if r.cbSeen[name] {
		return name
	}
	r.cbSeen[name] = true

	params := make([]string, len(desc.Params))
	for i, p := range desc.Params {
		params[i] = fmt.Sprintf("%s arg%d", p.Storage, i)
	}
	r.docLine(&r.delegates, "        ", "Implemented by the caller; invoked from native code through the generated trampoline.")
	r.delegates.WriteString("        [UnmanagedFunctionPointer(CallingConvention.Cdecl)]\n")
	fmt.Fprintf(&r.delegates, "        public delegate %s %s(%s);\n\n", desc.Return.Storage, name, strings.Join(params, ", "))
	return name
}

func (r *dotnetRenderer) doc(b *strings.Builder, doc, indent string) {
	if r.opts.StripDocs || doc == "" {
		return
	}
	lines := docLines(doc)
	if len(lines) == 1 {
		fmt.Fprintf(b, "%s/// <summary>%s</summary>\n", indent, lines[0])
		return
	}
	fmt.Fprintf(b, "%s/// <summary>\n", indent)
	for _, line := range lines {
		fmt.Fprintf(b, "%s/// %s\n", indent, line)
	}
	fmt.Fprintf(b, "%s/// </summary>\n", indent)
}

// docLine emits a generated contract comment; these stay even when source
// docs are stripped.
func (r *dotnetRenderer) docLine(b *strings.Builder, indent, line string) {
	fmt.Fprintf(b, "%s/// <summary>%s</summary>\n", indent, line)
}
