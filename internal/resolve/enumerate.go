package resolve

import "github.com/specialistvlad/dynresolve/internal/dyn"

type valueRow uint8

const (
	rowScalar valueRow = iota
	rowString
	rowTable
)

func rowOf(cat dyn.Category) valueRow {
	switch cat {
	case dyn.StringLike:
		return rowString
	case dyn.TableLike:
		return rowTable
	}
	return rowScalar
}

type candidateKey struct {
	row      valueRow
	hashable bool
}

// candidateTable lists, in priority order, the representations proposed for
// an unpinned position. Keyed always precedes ordered: a map keeps every key
// of a sequence, the reverse is not true.
var candidateTable = map[candidateKey][]Constraint{
	{rowString, false}: {ErasedAny, Text, ByteSequence, BinaryBlob, OpaqueHandle},
	{rowString, true}:  {ErasedHashable, Text, ByteSequence, BinaryBlob, OpaqueHandle},
	{rowTable, false}:  {ErasedAny, KeyedAny, OrderedAny, OpaqueHandle},
	{rowTable, true}:   {ErasedHashable, KeyedHashable, OrderedHashable, OpaqueHandle},
	{rowScalar, false}: {ErasedAny, DirectScalar, RawPointer, OpaqueHandle},
	{rowScalar, true}:  {ErasedHashable, DirectScalar, RawPointer, OpaqueHandle},
}

// enumerate returns the ordered candidate constraints for a value of the
// given category. A pinned constraint is the only candidate. The returned
// slice is shared and must not be modified.
func enumerate(pinned Constraint, cat dyn.Category, hashable bool) []Constraint {
	if pinned.Pinned() {
		return []Constraint{pinned}
	}
	return candidateTable[candidateKey{row: rowOf(cat), hashable: hashable}]
}

// Candidate pairs a constraint with its lazily materialised value.
type Candidate struct {
	Constraint Constraint

	load  func() (any, bool, error)
	done  bool
	value any
	ok    bool
	err   error
}

// Value materialises the candidate once and returns the memoised result.
func (c *Candidate) Value() (any, bool, error) {
	if !c.done {
		c.value, c.ok, c.err = c.load()
		c.done = true
		c.load = nil
	}
	return c.value, c.ok, c.err
}

// candidates builds the lazy candidate list for v placed in slot.
//
// A table bound for an ordered slot is read as keyed only when its keys are
// exactly 1..n. Such a table has no elements outside its sequence part, so
// once the keyed reading has been tried the ordered reading is skipped.
func (s *session) candidates(pinned Constraint, v dyn.Value, cat dyn.Category, slot Target, hashable bool) []*Candidate {
	cs := enumerate(pinned, cat, hashable)
	out := make([]*Candidate, len(cs))
	bridged := false
	for i, c := range cs {
		out[i] = &Candidate{
			Constraint: c,
			load: func() (any, bool, error) {
				if c == KeyedAny && bridges(cat, slot) {
					ok, err := s.bridgeable(v)
					if err != nil || !ok {
						return nil, false, err
					}
					bridged = true
				}
				if c == OrderedAny && bridged {
					return nil, false, nil
				}
				return s.admit(c, v, cat, slot)
			},
		}
	}
	return out
}

// admit materialises v under c, provided the slot takes c's sentinel and
// can hold the container c builds.
func (s *session) admit(c Constraint, v dyn.Value, cat dyn.Category, slot Target) (any, bool, error) {
	if m, gated := c.marker(); gated {
		if slot == nil {
			return nil, false, nil
		}
		if _, ok := slot.Accept(m); !ok {
			return nil, false, nil
		}
	}
	if !holds(slot, c) {
		return nil, false, nil
	}
	return s.materialize(c, v, cat, slot)
}

// holds reports whether slot can take the container built under c.
// Non-container constraints always pass.
func holds(slot Target, c Constraint) bool {
	if slot == nil || !(c.ordered() || c.keyed()) {
		return true
	}
	switch slot.Shape() {
	case ShapeScalar:
		// Only frozen collection types take containers here.
		return slot.Hashable()
	case ShapeKeyed:
		return c.keyed()
	case ShapeOrdered:
		return c != KeyedHashable
	}
	return true
}

func bridges(cat dyn.Category, slot Target) bool {
	return cat == dyn.TableLike && slot != nil && slot.Shape() == ShapeOrdered
}
