package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

// FromGo builds runtime values from generic decoded data such as the output
// of a YAML or JSON decoder. Slices become sequence tables, maps become
// keyed tables, everything else goes through Value.
func FromGo(v any) (dyn.Value, error) {
	switch x := v.(type) {
	case []any:
		t := New()
		for i, e := range x {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			if err := t.Set(int64(i+1), ev); err != nil {
				return nil, err
			}
		}
		return t, nil
	case map[string]any:
		t := New()
		for _, k := range sortedKeys(x) {
			ev, err := FromGo(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			if err := t.Set(k, ev); err != nil {
				return nil, err
			}
		}
		return t, nil
	case map[any]any:
		t := New()
		keys := make([]any, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b any) int {
			return strings.Compare(fmt.Sprintf("%T:%v", a, a), fmt.Sprintf("%T:%v", b, b))
		})
		for _, k := range keys {
			e := x[k]
			kv, err := FromGo(k)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", k, err)
			}
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", k, err)
			}
			if err := t.Set(kv, ev); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
	return Value(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
