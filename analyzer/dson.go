package analyzer

// DsonKey is either a known attribute-key enum value or a free string slice
// naming a user-defined dson key (spec.md §3.2). This repo implements a
// representative subset of the original's several-hundred-entry known-key
// table (see DESIGN.md): only the position/sizing keys the board-card
// allocator consumes.
type DsonKey struct {
	Known    AttributeKey
	HasKnown bool
	Unknown  string
}

// KnownDsonKey builds a DsonKey for a closed-enum attribute key.
func KnownDsonKey(key AttributeKey) DsonKey { return DsonKey{Known: key, HasKnown: true} }

// UnknownDsonKey builds a DsonKey for a user-defined key name.
func UnknownDsonKey(name string) DsonKey { return DsonKey{Unknown: name} }

func (k DsonKey) ordinal() uint64 {
	if k.HasKnown {
		return uint64(k.Known)
	}
	// Unknown keys sort after every known key, mirroring the parser's
	// dson-key-table convention that dynamic keys number at or above
	// DsonDynamicKeysBase (spec.md §6.1).
	return uint64(DsonDynamicKeysBase) + uint64(len(k.Unknown))
}

// DsonValue is the closed dson value union (spec.md §3.2).
type DsonValue interface{ dsonValue() }

// DsonField is one (key, value) entry of a DsonObject, stored in key-sorted
// order (spec.md §3.2) so lookups on known keys can binary-search.
type DsonField struct {
	Key   DsonKey
	Value DsonValue
}

// DsonObject is a dson object: fields sorted by key ascending.
type DsonObject struct{ Fields []DsonField }

func (*DsonObject) dsonValue() {}

// Get returns the value bound to a known attribute key, if present. Fields
// are kept sorted by key ordinal ascending (spec.md §3.2), so lookup is a
// binary search, O(log k) in the field count.
func (o *DsonObject) Get(key AttributeKey) (DsonValue, bool) {
	if o == nil {
		return nil, false
	}
	target := KnownDsonKey(key).ordinal()
	lo, hi := 0, len(o.Fields)
	for lo < hi {
		mid := (lo + hi) / 2
		if o.Fields[mid].Key.ordinal() < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(o.Fields) && o.Fields[lo].Key.HasKnown && o.Fields[lo].Key.Known == key {
		return o.Fields[lo].Value, true
	}
	return nil, false
}

// DsonArray is a dson array value.
type DsonArray struct{ Items []DsonValue }

func (*DsonArray) dsonValue() {}

// DsonExpression is a dson leaf carrying an evaluable expression.
type DsonExpression struct{ Expr Expression }

func (DsonExpression) dsonValue() {}

// AsExpression extracts the Expression from a dson value, or nil if v is
// not an expression leaf.
func AsExpression(v DsonValue) Expression {
	if e, ok := v.(DsonExpression); ok {
		return e.Expr
	}
	return nil
}
