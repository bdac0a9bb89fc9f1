package resolve

import (
	"fmt"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

// resolveSequence fills the ordered target from v's elements 1, 2, 3...
// pinned, when set, governs every element. Any rejected element discards
// the whole result.
func (s *session) resolveSequence(v dyn.Value, target Target, pinned Constraint) (any, bool, error) {
	release, err := s.enter(v)
	if err != nil {
		return nil, false, err
	}
	defer release()

	logger := s.logger.With("depth", s.depth, "into", target.String())
	p := probe{target: target}
	elemSlot := target.Elem()

	var slots sequenceSlots
	mode := pinned
	if !mode.Pinned() {
		mode = p.sentinel()
		if mode.Pinned() {
			logger.Debug("Element slot accepted sentinel.", "constraint", mode)
		}
	}
	slots.str.pin(mode)
	slots.table.pin(mode)

	b := target.NewBuilder(0)
	it := s.rt.Sequence(v)
	for i := 1; it.Next(); i++ {
		_, elem := it.Element()
		out, ok, err := s.sequenceElement(elem, elemSlot, p, &slots)
		if err != nil {
			return nil, false, fmt.Errorf("in sequence element %d: %w", i, err)
		}
		if !ok || !b.Append(out) {
			logger.Debug("Sequence element rejected, discarding sequence.", "index", i)
			return nil, false, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating sequence: %w", err)
	}

	out, ok := b.Build()
	if !ok {
		logger.Debug("Target rejected the completed sequence.")
	}
	return out, ok, nil
}

func (s *session) sequenceElement(elem dyn.Value, slot Target, p probe, slots *sequenceSlots) (any, bool, error) {
	cat := s.rt.Classify(elem)
	if mode := slots.str.get(); mode.verbatim() {
		return s.materialize(mode, elem, cat, slot)
	}

	switch cat {
	case dyn.StringLike, dyn.TableLike:
		sl := slots.forCategory(rowOf(cat))
		hashable := slot != nil && slot.Hashable()
		for _, c := range s.candidates(sl.get(), elem, cat, slot, hashable) {
			val, ok, err := c.Value()
			if err != nil {
				return nil, false, err
			}
			if ok && p.element(val) {
				if sl.pin(c.Constraint) {
					s.logger.Debug("Pinned sequence element constraint.", "category", cat, "constraint", c.Constraint)
				}
				return val, true, nil
			}
		}
		return nil, false, nil
	}

	val, ok, err := s.materialize(DirectScalar, elem, cat, slot)
	if err != nil || !ok {
		return nil, false, err
	}
	return val, p.element(val), nil
}
