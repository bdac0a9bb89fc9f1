package resolve

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

var (
	anyType        = reflect.TypeFor[any]()
	hashableType   = reflect.TypeFor[Hashable]()
	handleType     = reflect.TypeFor[dyn.Handle]()
	pointerType    = reflect.TypeFor[unsafe.Pointer]()
	frozenListType = reflect.TypeFor[FrozenList]()
	frozenMapType  = reflect.TypeFor[FrozenMap]()
	int64Type      = reflect.TypeFor[int64]()
)

// TargetFor returns the Target for the Go type T.
func TargetFor[T any]() Target {
	return TargetOf(reflect.TypeFor[T]())
}

// TargetOf returns the Target for t.
func TargetOf(t reflect.Type) Target {
	return typeTarget{t: t}
}

// typeTarget adapts a reflect.Type. Conversions are exact: text never turns
// into bytes and numbers only convert when no information is lost.
type typeTarget struct {
	t reflect.Type
}

func (tt typeTarget) String() string { return tt.t.String() }

func (tt typeTarget) Shape() Shape {
	switch tt.t.Kind() {
	case reflect.Slice, reflect.Array:
		return ShapeOrdered
	case reflect.Map:
		return ShapeKeyed
	case reflect.Interface:
		if tt.t.NumMethod() == 0 {
			return ShapeErased
		}
	}
	return ShapeScalar
}

func (tt typeTarget) Hashable() bool {
	switch {
	case tt.t == hashableType, tt.t == frozenListType, tt.t == frozenMapType:
		return true
	case tt.t.Kind() == reflect.Array:
		return tt.t.Comparable()
	}
	return false
}

func (tt typeTarget) Elem() Target {
	switch tt.t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return TargetOf(tt.t.Elem())
	}
	return nil
}

func (tt typeTarget) Key() Target {
	if tt.t.Kind() == reflect.Map {
		return TargetOf(tt.t.Key())
	}
	return nil
}

func (tt typeTarget) Accept(sample any) (any, bool) {
	if m, ok := sample.(marker); ok {
		return nil, tt.acceptsMarker(m)
	}
	v, ok := convert(sample, tt.t)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// acceptsMarker maps each sentinel to the slot type that asks for it. An
// unnamed any slot takes both erased modes so that map[any]V keys are
// erased into hashable values.
func (tt typeTarget) acceptsMarker(m marker) bool {
	switch m {
	case markerErased:
		return tt.t == anyType
	case markerErasedHashable:
		return tt.t == hashableType || tt.t == anyType
	case markerPassThrough:
		return tt.t == handleType
	case markerPointer:
		return tt.t == pointerType
	}
	return false
}

func (tt typeTarget) NewBuilder(sizeHint int) Builder {
	switch tt.t.Kind() {
	case reflect.Slice:
		return &sliceBuilder{elem: tt.t.Elem(), v: reflect.MakeSlice(tt.t, 0, sizeHint)}
	case reflect.Array:
		return &arrayBuilder{t: tt.t, elems: make([]reflect.Value, 0, tt.t.Len())}
	case reflect.Map:
		return &mapBuilder{t: tt.t, m: reflect.MakeMapWithSize(tt.t, sizeHint)}
	}
	return rejectBuilder{}
}

type sliceBuilder struct {
	elem reflect.Type
	v    reflect.Value
}

func (b *sliceBuilder) Append(sample any) bool {
	ev, ok := convert(sample, b.elem)
	if !ok {
		return false
	}
	b.v = reflect.Append(b.v, ev)
	return true
}

func (b *sliceBuilder) Put(any, any) bool { return false }

func (b *sliceBuilder) Build() (any, bool) { return b.v.Interface(), true }

// arrayBuilder only builds when the element count matches the array length.
type arrayBuilder struct {
	t     reflect.Type
	elems []reflect.Value
}

func (b *arrayBuilder) Append(sample any) bool {
	if len(b.elems) == b.t.Len() {
		return false
	}
	ev, ok := convert(sample, b.t.Elem())
	if !ok {
		return false
	}
	b.elems = append(b.elems, ev)
	return true
}

func (b *arrayBuilder) Put(any, any) bool { return false }

func (b *arrayBuilder) Build() (any, bool) {
	if len(b.elems) != b.t.Len() {
		return nil, false
	}
	arr := reflect.New(b.t).Elem()
	for i, ev := range b.elems {
		arr.Index(i).Set(ev)
	}
	return arr.Interface(), true
}

type mapBuilder struct {
	t reflect.Type
	m reflect.Value
}

func (b *mapBuilder) Append(any) bool { return false }

func (b *mapBuilder) Put(key, value any) bool {
	kv, ok := convert(key, b.t.Key())
	if !ok || !kv.Comparable() {
		return false
	}
	vv, ok := convert(value, b.t.Elem())
	if !ok {
		return false
	}
	b.m.SetMapIndex(kv, vv)
	return true
}

func (b *mapBuilder) Build() (any, bool) { return b.m.Interface(), true }

// convert places sample into a value of type t.
func convert(sample any, t reflect.Type) (reflect.Value, bool) {
	if _, ok := sample.(marker); ok {
		return reflect.Value{}, false
	}
	if sample == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}

	sv := reflect.ValueOf(sample)
	if t == hashableType && !sv.Comparable() {
		return reflect.Value{}, false
	}
	if sv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(sv)
		return out, true
	}

	switch x := sample.(type) {
	case int64:
		return convertInt(x, t)
	case float64:
		return convertFloat(x, t)
	case bool:
		if t.Kind() == reflect.Bool {
			return sv.Convert(t), true
		}
	case string:
		if t.Kind() == reflect.String {
			return sv.Convert(t), true
		}
	case []byte:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return sv.Convert(t), true
		}
	}
	return reflect.Value{}, false
}

func convertInt(i int64, t reflect.Type) (reflect.Value, bool) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(i) {
			return reflect.Value{}, false
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, false
		}
		out.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(float64(i))
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func convertFloat(f float64, t reflect.Type) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		out := reflect.New(t).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
		return out, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := exactInt(f)
		if !ok {
			return reflect.Value{}, false
		}
		return convertInt(i, t)
	}
	return reflect.Value{}, false
}

// exactInt reports whether f holds an integer representable as int64.
func exactInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
