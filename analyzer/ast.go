// Package analyzer implements the core analysis pipeline: program instance
// construction, name resolution, liveness, structural diffing and task
// planning/migration.
package analyzer

// NodeType is the closed tag enum of the flat node array (spec.md §3.1).
// Implementations without native sum types use a discriminator plus a
// union/variant type (spec.md §9); NodeType is that discriminator for the
// generic tree-shaped nodes, ASTNode below is the typed union for the
// handful of node shapes the resolver and board allocator need to inspect.
type NodeType uint16

const (
	NodeTypeNone NodeType = iota
	NodeTypeNull
	NodeTypeBool
	NodeTypeUInt32
	NodeTypeUInt32Bitmap
	NodeTypeStringRef
	NodeTypeArray
	// NodeTypeObject is the generic structured/"object" kind: children
	// sorted by AttributeKey ascending (spec.md §3.1 invariant).
	NodeTypeObject
	// NodeTypeObjectSQLColumnRef and NodeTypeObjectSQLTableRef are object
	// nodes the name resolver's Pass 2 sweep dispatches on specifically
	// (spec.md §4.1); structurally they are ordinary object nodes.
	NodeTypeObjectSQLColumnRef
	NodeTypeObjectSQLTableRef
)

// IsObject reports whether t is one of the object-shaped node kinds.
func (t NodeType) IsObject() bool {
	return t == NodeTypeObject || t == NodeTypeObjectSQLColumnRef || t == NodeTypeObjectSQLTableRef
}

// AttributeKey tags an object node's position within its parent (0 for
// positional/array children). Values below DsonDynamicKeysBase are known
// keys from the closed enum; values at or above it index into the parser's
// dson-key table (spec.md §6.1) for user-defined dson keys.
type AttributeKey uint32

const (
	AttributeKeyNone AttributeKey = 0

	// Known dson position keys (spec.md's supplemented board-card feature).
	AttributeKeyDsonPosition AttributeKey = iota + 100
	AttributeKeyDsonWidth
	AttributeKeyDsonRow
	AttributeKeyDsonColumn
	AttributeKeyDsonHeight

	// DsonDynamicKeysBase is the sentinel spec.md §6.1 describes: attribute
	// keys numerically at or above it reference the dson-key table instead
	// of the closed enum.
	DsonDynamicKeysBase AttributeKey = 1 << 16
)

// Location is a byte offset/length pair into a program's source-text
// buffer (spec.md §3.1).
type Location struct {
	Offset int
	Length int
}

// FlatNode is one entry of the flat node array (spec.md §3.1). Indices into
// Program.FlatNodes play the role of the bump-arena pointers in the
// original source (spec.md §9): Parent, and ChildrenBeginOrValue when it
// names a child range, are both FlatNode indices.
type FlatNode struct {
	Type                 NodeType
	AttributeKey         AttributeKey
	Parent               int32
	ChildrenBeginOrValue int32
	ChildrenCount        int32
	Location             Location
}

// IsRoot reports whether this node is a statement root (self-loop parent,
// spec.md §3.1).
func (n FlatNode) IsRoot(selfIndex int32) bool {
	return n.Parent == selfIndex
}

// ASTNode is the typed mirror of a flat node, populated only for node
// shapes later passes need structured access to (spec.md §3.2). It is a
// closed sum type realized as a marker-interface type switch, per spec.md
// §9's "tag discriminator plus union/variant type, never inheritance
// hierarchies".
type ASTNode interface{ astNode() }

// ColumnRefNode mirrors an OBJECT_SQL_COLUMN_REF flat node.
type ColumnRefNode struct{ Name NamePath }

func (ColumnRefNode) astNode() {}

// TableRefNode mirrors an OBJECT_SQL_TABLEREF flat node.
type TableRefNode struct{ Ref TableRef }

func (TableRefNode) astNode() {}

// TableRef is the closed set of table-reference shapes. Only Relation
// carries a name the dependency pass resolves; other variants are ignored
// (spec.md §3.2: "other table-ref variants ignored by the dependency
// pass").
type TableRef interface{ tableRef() }

// TableRefRelation names a plain `schema.table [AS alias]` reference.
type TableRefRelation struct {
	Name    NamePath
	Alias   string
	Inherit bool
}

func (TableRefRelation) tableRef() {}

// TableRefOther stands in for the table-ref shapes the dependency pass
// does not resolve (subqueries, join trees, ...).
type TableRefOther struct{}

func (TableRefOther) tableRef() {}

// IndirectionAtom is one element of a NamePath (spec.md §3.2).
type IndirectionAtom interface{ indirection() }

// IndirectionName is a plain identifier atom.
type IndirectionName struct{ Name string }

func (IndirectionName) indirection() {}

// IndirectionIndex is an array/map index atom; never a Name, so it always
// terminates name-path walking (spec.md §4.1 step 1).
type IndirectionIndex struct{ Expr Expression }

func (IndirectionIndex) indirection() {}

// IndirectionBounds is a slice-bounds atom; same termination behavior as
// IndirectionIndex.
type IndirectionBounds struct{ Lower, Upper Expression }

func (IndirectionBounds) indirection() {}

// NamePath is an ordered sequence of indirection atoms (spec.md §3.2).
type NamePath []IndirectionAtom

// leadingNames returns the atoms of p that are IndirectionName, stopping
// at the first non-Name atom or after n atoms, whichever comes first.
func (p NamePath) leadingNames(n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < len(p) && i < n; i++ {
		atom, ok := p[i].(IndirectionName)
		if !ok {
			break
		}
		names = append(names, atom.Name)
	}
	return names
}

// Key renders p as a comparable map key by joining all of its atoms with
// '.'. Non-Name atoms are not expected in practice for table/column
// identifiers in this domain and are rendered as "?" placeholders; the
// key does not escape '.' or '?' inside a name, so such names can share a
// key with a structurally different path.
func (p NamePath) Key() string {
	s := ""
	for i, atom := range p {
		if i > 0 {
			s += "."
		}
		if n, ok := atom.(IndirectionName); ok {
			s += n.Name
		} else {
			s += "?"
		}
	}
	return s
}

// Equal reports whether p and o denote the same path under name-atom
// equality (spec.md §3.2: "exact byte-string equality of the atoms").
func (p NamePath) Equal(o NamePath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		pn, pok := p[i].(IndirectionName)
		on, ook := o[i].(IndirectionName)
		if pok != ook {
			return false
		}
		if pok && pn.Name != on.Name {
			return false
		}
	}
	return true
}
