// Package ctyrt exposes go-cty values through dyn.Runtime.
//
// Lists, tuples and sets are sequences; maps and objects are keyed tables
// whose keys are strings. Lists, tuples and sets can also be iterated as
// pairs, in which case their keys are the 1-based positions. Capsules are
// opaque references to their encapsulated Go value. Unknown values are
// opaque too, and reading their payload fails with dyn.ErrUnknownValue.
//
// Marks are removed before a value is inspected.
package ctyrt

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/dynresolve/internal/dyn"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrNotCty is returned when a value handed to Runtime is not a cty.Value.
var ErrNotCty = errors.New("value is not a cty.Value")

// Runtime implements dyn.Runtime for cty.Value.
type Runtime struct{}

var _ dyn.Runtime = Runtime{}

func unwrap(v dyn.Value) (cty.Value, bool) {
	cv, ok := v.(cty.Value)
	if !ok {
		return cty.NilVal, false
	}
	if cv.Type() == cty.NilType {
		return cty.NullVal(cty.DynamicPseudoType), true
	}
	cv, _ = cv.UnmarkDeep()
	return cv, true
}

func (Runtime) Classify(v dyn.Value) dyn.Category {
	cv, ok := unwrap(v)
	if !ok {
		return dyn.OpaqueReference
	}
	if cv.IsNull() {
		return dyn.Nil
	}
	if !cv.IsKnown() {
		return dyn.OpaqueReference
	}
	ty := cv.Type()
	switch {
	case ty == cty.Bool:
		return dyn.Boolean
	case ty == cty.Number:
		return dyn.Number
	case ty == cty.String:
		return dyn.StringLike
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType(), ty.IsMapType(), ty.IsObjectType():
		return dyn.TableLike
	}
	return dyn.OpaqueReference
}

func sequential(ty cty.Type) bool {
	return ty.IsListType() || ty.IsTupleType() || ty.IsSetType()
}

func iterable(cv cty.Value) bool {
	return !cv.IsNull() && cv.IsKnown() && cv.CanIterateElements()
}

func (Runtime) Sequence(v dyn.Value) dyn.Iterator {
	cv, ok := unwrap(v)
	if !ok {
		return &iterator{err: fmt.Errorf("%w: %T", ErrNotCty, v)}
	}
	if !iterable(cv) || !sequential(cv.Type()) {
		// Maps and objects have no integer keys, so their sequence part is
		// empty.
		if iterable(cv) {
			return &iterator{}
		}
		return &iterator{err: fmt.Errorf("cannot iterate %s value", typeName(cv))}
	}
	return &iterator{it: cv.ElementIterator(), positional: true}
}

func (Runtime) Pairs(v dyn.Value) dyn.Iterator {
	cv, ok := unwrap(v)
	if !ok {
		return &iterator{err: fmt.Errorf("%w: %T", ErrNotCty, v)}
	}
	if !iterable(cv) {
		return &iterator{err: fmt.Errorf("cannot iterate %s value", typeName(cv))}
	}
	return &iterator{it: cv.ElementIterator(), positional: sequential(cv.Type())}
}

func (Runtime) RawBytes(v dyn.Value) ([]byte, error) {
	cv, ok := unwrap(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotCty, v)
	}
	if !cv.IsKnown() {
		return nil, dyn.ErrUnknownValue
	}
	if cv.IsNull() || cv.Type() != cty.String {
		return nil, fmt.Errorf("expected string, got %s", typeName(cv))
	}
	return []byte(cv.AsString()), nil
}

// Retain wraps v in a handle. cty values are immutable trees without
// identity, so the handle ID is always zero.
func (Runtime) Retain(v dyn.Value) dyn.Handle {
	return dyn.NewHandle(0, v)
}

func (Runtime) Scalar(v dyn.Value) (any, error) {
	cv, ok := unwrap(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotCty, v)
	}
	if cv.IsNull() {
		return nil, nil
	}
	if !cv.IsKnown() {
		return nil, dyn.ErrUnknownValue
	}

	ty := cv.Type()
	switch {
	case ty == cty.Bool:
		return cv.True(), nil
	case ty == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(cv, &i); err == nil {
			return i, nil
		}
		f, _ := cv.AsBigFloat().Float64()
		if math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %s is out of float64 range", cv.AsBigFloat().Text('g', 10))
		}
		return f, nil
	case ty.IsCapsuleType():
		return cv.EncapsulatedValue(), nil
	}
	return nil, fmt.Errorf("no scalar payload for %s value", typeName(cv))
}

func typeName(cv cty.Value) string {
	if !cv.IsKnown() {
		return "unknown " + cv.Type().FriendlyName()
	}
	return cv.Type().FriendlyName()
}

// iterator adapts cty.ElementIterator. Positional iterators replace the
// native key with the 1-based position.
type iterator struct {
	it         cty.ElementIterator
	positional bool
	pos        int64
	key, value cty.Value
	err        error
}

func (i *iterator) Next() bool {
	if i.it == nil || !i.it.Next() {
		return false
	}
	i.pos++
	i.key, i.value = i.it.Element()
	if i.positional {
		i.key = cty.NumberIntVal(i.pos)
	}
	return true
}

func (i *iterator) Element() (dyn.Value, dyn.Value) { return i.key, i.value }
func (i *iterator) Err() error                      { return i.err }
