package ir

// DeclID indexes a declaration within its Model. IDs are assigned in source
// order during the model build and are stable for the lifetime of the run.
type DeclID int

// DeclKind identifies the declaration form.
type DeclKind string

const (
	DeclFunc   DeclKind = "func"
	DeclStruct DeclKind = "struct"
	DeclEnum   DeclKind = "enum"
	DeclAlias  DeclKind = "alias"
	DeclOpaque DeclKind = "opaque"
	DeclConst  DeclKind = "const"
)

// Decl is one exported declaration. Exactly one of the kind-specific
// pointers is non-nil, matching Kind. Order is the source-order index used
// as the deterministic tiebreak in dependency ordering.
type Decl struct {
	ID    DeclID
	Kind  DeclKind
	Name  string
	Doc   string
	Order int

	Func   *FuncDecl
	Struct *StructDecl
	Enum   *EnumDecl
	Alias  *AliasDecl
	Const  *ConstDecl
}

// FuncDecl is an exported function signature.
//
// ErrorOut marks functions following the error-out-parameter convention:
// the rendered function returns an integer status and delivers the success
// payload through an output parameter. It is set exactly when Return is a
// ResultLike.
type FuncDecl struct {
	Params   []ParamDecl
	Return   TypeRef
	ErrorOut bool
}

// ParamDecl is one named function parameter.
type ParamDecl struct {
	Name string
	Type TypeRef
}

// StructDecl is a C-layout struct. Field order is preserved verbatim
// across all backends.
type StructDecl struct {
	Fields []FieldDecl
}

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type TypeRef
	Doc  string
}

// EnumDecl is either a plain discriminant list or a tagged union.
// Tagged is true when any variant carries a payload. Discriminant values
// are fully normalized at build time: every variant has an explicit value.
type EnumDecl struct {
	Tagged   bool
	Variants []VariantDecl
}

// VariantDecl is one enum variant. Payload is nil for plain variants.
type VariantDecl struct {
	Name    string
	Value   int64
	Payload TypeRef
	Doc     string
}

// AliasDecl maps a name onto another type.
type AliasDecl struct {
	Target TypeRef
}

// ConstDecl is an exported primitive constant. Value carries the literal
// text verbatim from the source.
type ConstDecl struct {
	Type  TypeRef
	Value string
}

// IsType reports whether the declaration introduces a type name.
func (d *Decl) IsType() bool {
	switch d.Kind {
	case DeclStruct, DeclEnum, DeclAlias, DeclOpaque:
		return true
	}
	return false
}
