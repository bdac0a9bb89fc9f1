package table

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

var (
	// ErrNotTable is returned when a table operation gets another value.
	ErrNotTable = errors.New("value is not a table")

	// ErrNotString is returned by RawBytes for values that are not strings.
	ErrNotString = errors.New("value is not a string")
)

// Runtime exposes the package's value space through dyn.Runtime.
type Runtime struct{}

var _ dyn.Runtime = Runtime{}

func (Runtime) Classify(v dyn.Value) dyn.Category {
	switch v.(type) {
	case nil:
		return dyn.Nil
	case bool:
		return dyn.Boolean
	case int64, float64:
		return dyn.Number
	case String:
		return dyn.StringLike
	case *Table:
		return dyn.TableLike
	}
	return dyn.OpaqueReference
}

func (Runtime) Sequence(v dyn.Value) dyn.Iterator {
	t, ok := v.(*Table)
	if !ok {
		return &errIterator{err: fmt.Errorf("%w: %T", ErrNotTable, v)}
	}
	_, h := t.snapshot()
	return &sequenceIterator{t: t, handler: h}
}

func (Runtime) Pairs(v dyn.Value) dyn.Iterator {
	t, ok := v.(*Table)
	if !ok {
		return &errIterator{err: fmt.Errorf("%w: %T", ErrNotTable, v)}
	}
	keys, h := t.snapshot()
	return &pairIterator{t: t, keys: keys, handler: h, pos: -1}
}

func (Runtime) RawBytes(v dyn.Value) ([]byte, error) {
	s, ok := v.(String)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotString, v)
	}
	return []byte(s), nil
}

func (Runtime) Retain(v dyn.Value) dyn.Handle {
	if t, ok := v.(*Table); ok {
		return dyn.NewHandle(t.id, t)
	}
	return dyn.NewHandle(0, v)
}

func (Runtime) Scalar(v dyn.Value) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, *Function:
		return x, nil
	case *Userdata:
		return x.Payload, nil
	case LightUserdata:
		return x.Ptr, nil
	}
	return nil, fmt.Errorf("no scalar payload for %T", v)
}

// sequenceIterator visits t[1], t[2], ... up to the first missing index.
type sequenceIterator struct {
	t       *Table
	handler AccessHandler
	i       int64
	value   dyn.Value
	err     error
	done    bool
}

func (it *sequenceIterator) Next() bool {
	if it.done {
		return false
	}
	it.i++
	if it.handler != nil {
		if err := it.handler(it.i); err != nil {
			it.err = fmt.Errorf("access handler at index %d: %w", it.i, err)
			it.done = true
			return false
		}
	}
	v, ok := it.t.lookup(it.i)
	if !ok {
		it.done = true
		return false
	}
	it.value = v
	return true
}

func (it *sequenceIterator) Element() (dyn.Value, dyn.Value) { return it.i, it.value }
func (it *sequenceIterator) Err() error                      { return it.err }

// pairIterator visits the keys present when iteration started, skipping
// those removed since.
type pairIterator struct {
	t       *Table
	keys    []dyn.Value
	handler AccessHandler
	pos     int
	value   dyn.Value
	err     error
}

func (it *pairIterator) Next() bool {
	for it.err == nil {
		it.pos++
		if it.pos >= len(it.keys) {
			return false
		}
		k := it.keys[it.pos]
		if it.handler != nil {
			if err := it.handler(k); err != nil {
				it.err = fmt.Errorf("access handler at key %v: %w", k, err)
				return false
			}
		}
		if v, ok := it.t.lookup(k); ok {
			it.value = v
			return true
		}
	}
	return false
}

func (it *pairIterator) Element() (dyn.Value, dyn.Value) { return it.keys[it.pos], it.value }
func (it *pairIterator) Err() error                      { return it.err }

type errIterator struct {
	err error
}

func (it *errIterator) Next() bool                      { return false }
func (it *errIterator) Element() (dyn.Value, dyn.Value) { return nil, nil }
func (it *errIterator) Err() error                      { return it.err }
