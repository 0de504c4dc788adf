package source

// Module is one parsed source module. Items appear in source order.
type Module struct {
	Name  string `yaml:"name" json:"name"`
	Items []Item `yaml:"items" json:"items"`
}

// ItemKind identifies the top-level declaration form of an Item.
type ItemKind string

const (
	ItemFunc   ItemKind = "func"
	ItemStruct ItemKind = "struct"
	ItemEnum   ItemKind = "enum"
	ItemAlias  ItemKind = "alias"
	ItemOpaque ItemKind = "opaque"
	ItemConst  ItemKind = "const"
)

// Item is one top-level declaration in a module.
//
// Only the fields relevant to Kind are populated: Fields for structs,
// Variants for enums, Params/Return for functions, Target for aliases,
// Value/ConstType for constants. Opaque items carry a name only.
type Item struct {
	Kind ItemKind `yaml:"kind" json:"kind"`
	Name string   `yaml:"name" json:"name"`
	Doc  string   `yaml:"doc,omitempty" json:"doc,omitempty"`

	// Export markers. Exported means the item is public in the host
	// language; CABI means it is declared with an unmangled C calling
	// convention (functions); ReprC means a C-compatible layout
	// (structs and enums).
	Exported bool `yaml:"exported" json:"exported"`
	CABI     bool `yaml:"c_abi,omitempty" json:"c_abi,omitempty"`
	ReprC    bool `yaml:"repr_c,omitempty" json:"repr_c,omitempty"`

	// Generic marks declarations with type parameters or trait bounds.
	// The engine rejects these rather than translating them.
	Generic bool `yaml:"generic,omitempty" json:"generic,omitempty"`

	// Variadic and Diverging mark function signatures with a trailing
	// variadic parameter or a never-returning result. Neither has a
	// stable cross-boundary form, so both are rejected.
	Variadic  bool `yaml:"variadic,omitempty" json:"variadic,omitempty"`
	Diverging bool `yaml:"diverging,omitempty" json:"diverging,omitempty"`

	Fields    []Field   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Variants  []Variant `yaml:"variants,omitempty" json:"variants,omitempty"`
	Params    []Param   `yaml:"params,omitempty" json:"params,omitempty"`
	Return    *TypeExpr `yaml:"return,omitempty" json:"return,omitempty"`
	Target    *TypeExpr `yaml:"target,omitempty" json:"target,omitempty"`
	ConstType *TypeExpr `yaml:"const_type,omitempty" json:"const_type,omitempty"`
	Value     string    `yaml:"value,omitempty" json:"value,omitempty"`
}

// Field is one struct field. Order is layout-significant.
type Field struct {
	Name string   `yaml:"name" json:"name"`
	Type TypeExpr `yaml:"type" json:"type"`
	Doc  string   `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// Variant is one enum variant. Value carries an explicit discriminant when
// present; Payload is set for tagged-union variants.
type Variant struct {
	Name    string    `yaml:"name" json:"name"`
	Value   *int64    `yaml:"value,omitempty" json:"value,omitempty"`
	Payload *TypeExpr `yaml:"payload,omitempty" json:"payload,omitempty"`
	Doc     string    `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// Param is one named function parameter.
type Param struct {
	Name string   `yaml:"name" json:"name"`
	Type TypeExpr `yaml:"type" json:"type"`
}

// TypeExprKind identifies the structural form of a TypeExpr.
type TypeExprKind string

const (
	ExprPrim   TypeExprKind = "prim"   // named primitive: i8..u64, f32, f64, bool, usize, isize, unit
	ExprString TypeExprKind = "string" // UTF-8 string slice
	ExprPtr    TypeExprKind = "ptr"
	ExprArray  TypeExprKind = "array"
	ExprNamed  TypeExprKind = "named"
	ExprFn     TypeExprKind = "fn"
	ExprOption TypeExprKind = "option"
	ExprResult TypeExprKind = "result"
)

// TypeExpr is a structural type expression as written in the source.
// It is unresolved: ExprNamed carries a bare name, not a declaration id.
type TypeExpr struct {
	Kind TypeExprKind `yaml:"kind" json:"kind"`

	// Name holds the primitive name for ExprPrim and the referenced
	// declaration name for ExprNamed.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Elem is the pointee (ExprPtr), element (ExprArray), or inner type
	// (ExprOption).
	Elem    *TypeExpr `yaml:"elem,omitempty" json:"elem,omitempty"`
	Len     int       `yaml:"len,omitempty" json:"len,omitempty"`
	Mutable bool      `yaml:"mutable,omitempty" json:"mutable,omitempty"`

	// Params and Return describe ExprFn signatures.
	Params []TypeExpr `yaml:"params,omitempty" json:"params,omitempty"`
	Return *TypeExpr  `yaml:"return,omitempty" json:"return,omitempty"`

	// Ok and Err describe ExprResult two-channel returns.
	Ok  *TypeExpr `yaml:"ok,omitempty" json:"ok,omitempty"`
	Err *TypeExpr `yaml:"err,omitempty" json:"err,omitempty"`
}
