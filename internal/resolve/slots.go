package resolve

// slot caches the constraint of one structural position. It moves from
// Unpinned to pinned once and never changes afterwards.
type slot struct {
	c Constraint
}

func (s *slot) get() Constraint { return s.c }

// pin commits c unless the slot is already pinned. It reports whether this
// call made the commitment.
func (s *slot) pin(c Constraint) bool {
	if s.c.Pinned() || !c.Pinned() {
		return false
	}
	s.c = c
	return true
}

// sequenceSlots holds the constraints of one sequence. String-like and
// table elements are pinned independently; a sentinel pins both.
type sequenceSlots struct {
	str, table slot
}

func (s *sequenceSlots) forCategory(row valueRow) *slot {
	if row == rowTable {
		return &s.table
	}
	return &s.str
}

// mapSlots holds the key and value constraints of one map.
type mapSlots struct {
	key, value slot
}
