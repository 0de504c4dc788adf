package ir

// Model is the full set of declarations for one generation run plus a
// name index. It is constructed once by the model builder and treated as
// read-only by every downstream stage.
type Model struct {
	decls  []Decl
	byName map[string]DeclID
}

// NewModel builds a model from declarations whose IDs match their slice
// positions. Callers (the model builder) guarantee name uniqueness and
// resolved references; NewModel only constructs the index.
func NewModel(decls []Decl) *Model {
	m := &Model{
		decls:  decls,
		byName: make(map[string]DeclID, len(decls)),
	}
	for i := range decls {
		m.byName[decls[i].Name] = decls[i].ID
	}
	return m
}

// Len returns the number of declarations.
func (m *Model) Len() int {
	return len(m.decls)
}

// Decl returns the declaration with the given id.
func (m *Model) Decl(id DeclID) *Decl {
	return &m.decls[id]
}

// Lookup resolves a declaration name.
func (m *Model) Lookup(name string) (DeclID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Decls returns all declarations in id order. The returned slice is the
// model's backing storage and must not be mutated.
func (m *Model) Decls() []Decl {
	return m.decls
}

// Funcs returns the ids of all function declarations in source order.
func (m *Model) Funcs() []DeclID {
	var ids []DeclID
	for i := range m.decls {
		if m.decls[i].Kind == DeclFunc {
			ids = append(ids, m.decls[i].ID)
		}
	}
	return ids
}
