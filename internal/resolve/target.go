package resolve

// Shape classifies a requested type once, before resolution starts.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeOrdered
	ShapeKeyed
	ShapeErased
)

func (s Shape) String() string {
	switch s {
	case ShapeOrdered:
		return "ordered"
	case ShapeKeyed:
		return "keyed"
	case ShapeErased:
		return "erased"
	}
	return "scalar"
}

// Target is a requested host type as seen by the resolver.
type Target interface {
	// Shape reports whether the type is an ordered collection, a keyed
	// collection, an erased interface or a leaf.
	Shape() Shape

	// Hashable reports whether values in this position must be usable as
	// map keys.
	Hashable() bool

	// Elem is the element target of an ordered type or the value target of
	// a keyed type. Leaves return nil.
	Elem() Target

	// Key is the key target of a keyed type, nil otherwise.
	Key() Target

	// Accept converts a single sample into this type. Sentinel markers are
	// answered without conversion.
	Accept(sample any) (any, bool)

	// NewBuilder returns an empty container of this type.
	NewBuilder(sizeHint int) Builder

	String() string
}

// Builder accumulates a container. Append is used by ordered targets and
// Put by keyed ones; either rejects samples the container cannot hold.
type Builder interface {
	Append(elem any) bool
	Put(key, value any) bool
	Build() (any, bool)
}

// marker is a sentinel sample used to ask an element slot which erasure or
// pass-through mode it wants.
type marker uint8

const (
	markerErased marker = iota + 1
	markerErasedHashable
	markerPassThrough
	markerPointer
)

// sentinels is probed in order by the sequence resolver.
var sentinels = [...]struct {
	marker     marker
	constraint Constraint
}{
	{markerErased, ErasedAny},
	{markerErasedHashable, ErasedHashable},
	{markerPassThrough, OpaqueHandle},
	{markerPointer, RawPointer},
}

// probe asks a collection target whether a trial container holding exactly
// one sample would be accepted. Every question gets a fresh trial container,
// so a rejected sample never leaks into the next attempt or into the result.
type probe struct {
	target Target
}

func (p probe) element(sample any) bool {
	return p.target.NewBuilder(1).Append(sample)
}

func (p probe) pair(key, value any) bool {
	return p.target.NewBuilder(1).Put(key, value)
}

// sentinel returns the constraint of the first marker accepted by the
// element slot, or Unpinned.
func (p probe) sentinel() Constraint {
	slot := p.target.Elem()
	if slot == nil {
		return Unpinned
	}
	for _, s := range sentinels {
		if _, ok := slot.Accept(s.marker); ok {
			return s.constraint
		}
	}
	return Unpinned
}

type rejectBuilder struct{}

func (rejectBuilder) Append(any) bool    { return false }
func (rejectBuilder) Put(any, any) bool  { return false }
func (rejectBuilder) Build() (any, bool) { return nil, false }
