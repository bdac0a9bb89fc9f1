package resolve

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

// Bridge converts a map whose keys are exactly the integers 1..n into the
// sequence of its values. Keys may be int64 or integral float64. Any other
// key set, including one starting at 0 or with a gap, is rejected.
func Bridge(m map[any]any) ([]any, bool) {
	out := make([]any, len(m))
	seen := make([]bool, len(m))
	for k, v := range m {
		i, ok := sequenceIndex(k, len(m))
		if !ok || seen[i-1] {
			return nil, false
		}
		seen[i-1] = true
		out[i-1] = v
	}
	return out, true
}

// bridgeable reports whether the keys of table v are exactly 1..n. Only
// keys are read; values are not decomposed.
func (s *session) bridgeable(v dyn.Value) (bool, error) {
	var keys []any
	it := s.rt.Pairs(v)
	for it.Next() {
		k, _ := it.Element()
		if s.rt.Classify(k) != dyn.Number {
			return false, nil
		}
		p, err := s.scalar(k)
		if err != nil {
			return false, err
		}
		keys = append(keys, p)
	}
	if err := it.Err(); err != nil {
		return false, fmt.Errorf("iterating pairs: %w", err)
	}

	seen := make([]bool, len(keys))
	for _, k := range keys {
		i, ok := sequenceIndex(k, len(keys))
		if !ok || seen[i-1] {
			return false, nil
		}
		seen[i-1] = true
	}
	return true, nil
}

// sequenceIndex returns k as a 1-based index no larger than n.
func sequenceIndex(k any, n int) (int, bool) {
	i, ok := canonicalKey(k).(int64)
	if !ok || i < 1 || i > int64(n) {
		return 0, false
	}
	return int(i), true
}

// canonicalKey folds integral floats into int64 so that 2 and 2.0 address
// the same entry.
func canonicalKey(k any) any {
	if f, ok := k.(float64); ok {
		if i, exact := exactInt(f); exact {
			return i
		}
	}
	return k
}

// bridgeTarget lets the map resolver fill an ordered target: pairs are
// collected by integer key and become a sequence only if the keys are
// exactly 1..n.
type bridgeTarget struct {
	seq Target
}

func (b bridgeTarget) Shape() Shape   { return ShapeKeyed }
func (b bridgeTarget) Hashable() bool { return false }
func (b bridgeTarget) Elem() Target   { return b.seq.Elem() }
func (b bridgeTarget) Key() Target    { return TargetOf(int64Type) }
func (b bridgeTarget) String() string { return "bridge(" + b.seq.String() + ")" }

func (b bridgeTarget) Accept(sample any) (any, bool) { return b.seq.Accept(sample) }

func (b bridgeTarget) NewBuilder(sizeHint int) Builder {
	return &bridgeBuilder{seq: b.seq, elem: b.seq.Elem(), byIndex: make(map[int64]any, sizeHint)}
}

type bridgeBuilder struct {
	seq     Target
	elem    Target
	byIndex map[int64]any
}

func (b *bridgeBuilder) Append(any) bool { return false }

func (b *bridgeBuilder) Put(key, value any) bool {
	i, ok := canonicalKey(key).(int64)
	if !ok || i < 1 || b.elem == nil {
		return false
	}
	if _, ok := b.elem.Accept(value); !ok {
		return false
	}
	b.byIndex[i] = value
	return true
}

func (b *bridgeBuilder) Build() (any, bool) {
	n := len(b.byIndex)
	keys := make([]int64, 0, n)
	for k := range b.byIndex {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	sb := b.seq.NewBuilder(n)
	for i, k := range keys {
		if k != int64(i+1) {
			return nil, false
		}
		if !sb.Append(b.byIndex[k]) {
			return nil, false
		}
	}
	return sb.Build()
}
