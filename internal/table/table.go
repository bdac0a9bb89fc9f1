package table

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

var nextID atomic.Uint64

// AccessHandler is invoked by iterators before every key they visit.
type AccessHandler func(key dyn.Value) error

// Table is the runtime's associative container.
type Table struct {
	id uint64

	mu      sync.RWMutex
	order   []dyn.Value
	entries map[dyn.Value]dyn.Value
	handler AccessHandler
}

// New creates an empty table.
func New() *Table {
	return &Table{
		id:      nextID.Add(1),
		entries: make(map[dyn.Value]dyn.Value),
	}
}

// List builds a sequence table from Go values, see Value.
func List(elems ...any) (*Table, error) {
	t := New()
	for i, e := range elems {
		if err := t.Set(int64(i+1), e); err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
	}
	return t, nil
}

// Map builds a table from alternating keys and values.
func Map(kv ...any) (*Table, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("odd number of key/value arguments: %d", len(kv))
	}
	t := New()
	for i := 0; i < len(kv); i += 2 {
		if err := t.Set(kv[i], kv[i+1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ID is the table's identity, unique within the process.
func (t *Table) ID() uint64 { return t.id }

// Set assigns t[k] = v. A nil v removes the entry.
func (t *Table) Set(k, v any) error {
	key, err := Value(k)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	key, err = normalizeKey(key)
	if err != nil {
		return err
	}
	val, err := Value(v)
	if err != nil {
		return fmt.Errorf("value for key %v: %w", key, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.entries[key]
	switch {
	case val == nil && exists:
		delete(t.entries, key)
		t.order = slices.DeleteFunc(t.order, func(o dyn.Value) bool { return o == key })
	case val == nil:
	default:
		if !exists {
			t.order = append(t.order, key)
		}
		t.entries[key] = val
	}
	return nil
}

// Get returns t[k], nil when absent.
func (t *Table) Get(k any) dyn.Value {
	key, err := Value(k)
	if err != nil {
		return nil
	}
	if key, err = normalizeKey(key); err != nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[key]
}

// Append sets t[Len()+1] = v.
func (t *Table) Append(v any) error {
	return t.Set(int64(t.Len()+1), v)
}

// Len is the border of the sequence part: the largest n such that t[1]..t[n]
// are all present.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for {
		if _, ok := t.entries[int64(n+1)]; !ok {
			return n
		}
		n++
	}
}

// Count is the number of entries.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// SetAccessHandler installs h, or removes the handler when h is nil.
func (t *Table) SetAccessHandler(h AccessHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

func (t *Table) snapshot() ([]dyn.Value, AccessHandler) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.order), t.handler
}

func (t *Table) lookup(key dyn.Value) (dyn.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

func (t *Table) String() string {
	return fmt.Sprintf("table: %d", t.id)
}
