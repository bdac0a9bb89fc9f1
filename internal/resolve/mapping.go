package resolve

import (
	"fmt"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

// resolveMap fills the keyed target from v's pairs. The first pair that
// resolves pins the key and value constraints for all later pairs.
func (s *session) resolveMap(v dyn.Value, target Target) (any, bool, error) {
	release, err := s.enter(v)
	if err != nil {
		return nil, false, err
	}
	defer release()

	logger := s.logger.With("depth", s.depth, "into", target.String())
	p := probe{target: target}
	keySlot, valSlot := target.Key(), target.Elem()

	var slots mapSlots
	b := target.NewBuilder(0)
	it := s.rt.Pairs(v)
	for n := 1; it.Next(); n++ {
		k, val := it.Element()
		key, value, ok, err := s.mapPair(k, val, keySlot, valSlot, p, &slots)
		if err != nil {
			return nil, false, fmt.Errorf("in map entry %d: %w", n, err)
		}
		if !ok || !b.Put(key, value) {
			logger.Debug("Map entry rejected, discarding map.", "entry", n,
				"key_constraint", slots.key.get(), "value_constraint", slots.value.get())
			return nil, false, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating pairs: %w", err)
	}

	out, ok := b.Build()
	if !ok {
		logger.Debug("Target rejected the completed map.")
	}
	return out, ok, nil
}

// mapPair tries key candidates against value candidates in nested-loop
// priority order.
func (s *session) mapPair(k, v dyn.Value, keySlot, valSlot Target, p probe, slots *mapSlots) (any, any, bool, error) {
	kcat, vcat := s.rt.Classify(k), s.rt.Classify(v)
	keys := s.candidates(slots.key.get(), k, kcat, keySlot, true)
	vals := s.candidates(slots.value.get(), v, vcat, valSlot, valSlot != nil && valSlot.Hashable())

	for _, kc := range keys {
		key, ok, err := kc.Value()
		if err != nil {
			return nil, nil, false, fmt.Errorf("key: %w", err)
		}
		if !ok {
			continue
		}
		key = canonicalKey(key)
		for _, vc := range vals {
			value, ok, err := vc.Value()
			if err != nil {
				return nil, nil, false, fmt.Errorf("value: %w", err)
			}
			if !ok || !p.pair(key, value) {
				continue
			}
			if slots.key.pin(kc.Constraint) {
				s.logger.Debug("Pinned map key constraint.", "category", kcat, "constraint", kc.Constraint)
			}
			if slots.value.pin(vc.Constraint) {
				s.logger.Debug("Pinned map value constraint.", "category", vcat, "constraint", vc.Constraint)
			}
			return key, value, true, nil
		}
	}
	return nil, nil, false, nil
}
