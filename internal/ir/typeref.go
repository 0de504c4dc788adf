package ir

// TypeRef is a sealed interface over the canonical type forms. Only the
// variants in this file implement it, so backends can match exhaustively.
type TypeRef interface {
	typeRef()
}

// PrimKind categorizes primitive types.
type PrimKind string

const (
	PrimVoid  PrimKind = "void"
	PrimBool  PrimKind = "bool"
	PrimInt   PrimKind = "int"   // fixed-width integer, see Width/Signed
	PrimFloat PrimKind = "float" // fixed-width float, see Width
	PrimSize  PrimKind = "size"  // pointer-sized integer, see Signed
)

// Primitive is a fixed-width scalar. Width is in bits (8, 16, 32, 64) and
// is zero for void, bool, and pointer-sized integers.
type Primitive struct {
	Kind   PrimKind
	Width  int
	Signed bool
}

func (Primitive) typeRef() {}

// String is a UTF-8 string slice: a buffer pointer plus an explicit byte
// length. Backends never assume null termination.
type String struct{}

func (String) typeRef() {}

// Pointer is a raw pointer to Elem. Mutable distinguishes *mut from *const.
type Pointer struct {
	Elem    TypeRef
	Mutable bool
}

func (Pointer) typeRef() {}

// FixedArray is an inline array of Len elements.
type FixedArray struct {
	Elem TypeRef
	Len  int
}

func (FixedArray) typeRef() {}

// Named references another declaration in the same model by id.
type Named struct {
	ID DeclID
}

func (Named) typeRef() {}

// Callback is a foreign function value: the caller supplies an
// implementation and the native side invokes it through a trampoline.
type Callback struct {
	Params []TypeRef
	Return TypeRef
}

func (Callback) typeRef() {}

// Option wraps Inner with an explicit absent state.
type Option struct {
	Inner TypeRef
}

func (Option) typeRef() {}

// ResultLike is a two-channel return: Ok on success, Err otherwise.
// Functions returning ResultLike follow the error-out-parameter convention.
type ResultLike struct {
	Ok  TypeRef
	Err TypeRef
}

func (ResultLike) typeRef() {}

// Unit is the canonical void primitive.
var Unit = Primitive{Kind: PrimVoid}

// NamedIDs appends every declaration id referenced by t, recursing through
// composite forms. Used by the dependency graph to derive edges.
func NamedIDs(t TypeRef, ids []DeclID) []DeclID {
	switch v := t.(type) {
	case Named:
		ids = append(ids, v.ID)
	case Pointer:
		ids = NamedIDs(v.Elem, ids)
	case FixedArray:
		ids = NamedIDs(v.Elem, ids)
	case Option:
		ids = NamedIDs(v.Inner, ids)
	case ResultLike:
		ids = NamedIDs(v.Ok, ids)
		ids = NamedIDs(v.Err, ids)
	case Callback:
		for _, p := range v.Params {
			ids = NamedIDs(p, ids)
		}
		ids = NamedIDs(v.Return, ids)
	}
	return ids
}

// IsVoid reports whether t is the void primitive.
func IsVoid(t TypeRef) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == PrimVoid
}
