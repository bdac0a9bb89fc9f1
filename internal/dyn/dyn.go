package dyn

import "errors"

// ErrUnknownValue is returned by runtimes whose value space contains
// placeholders that have not been computed yet.
var ErrUnknownValue = errors.New("value is not known yet")

// Value is an opaque reference into a runtime's value space.
type Value any

// Category is the classification of a Value.
type Category uint8

const (
	Nil Category = iota
	Boolean
	Number
	StringLike
	TableLike
	OpaqueReference

	// CategoryTotal is the number of categories defined above.
	CategoryTotal = int(iota)
)

var categoryNames = [...]string{
	Nil:             "nil",
	Boolean:         "boolean",
	Number:          "number",
	StringLike:      "string",
	TableLike:       "table",
	OpaqueReference: "opaque",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "invalid"
}

// IsScalar reports whether values of this category are never decomposed.
func (c Category) IsScalar() bool {
	return c != StringLike && c != TableLike
}

// Iterator walks the elements of a table-like value. It mirrors the
// Next/Element protocol of cty's ElementIterator: Next advances, Element
// returns the current pair, and Err reports why iteration stopped early.
//
// For sequence iteration the key is the 1-based index.
type Iterator interface {
	Next() bool
	Element() (key, value Value)
	Err() error
}

// Runtime is the collaborator a resolution engine consumes.
type Runtime interface {
	// Classify categorises v. It never fails.
	Classify(v Value) Category

	// Sequence iterates v[1], v[2], ... and stops at the first missing index.
	Sequence(v Value) Iterator

	// Pairs iterates every key/value pair of v in runtime-defined order.
	Pairs(v Value) Iterator

	// RawBytes returns the content of a StringLike value.
	RawBytes(v Value) ([]byte, error)

	// Retain returns a handle usable after the current call frame.
	Retain(v Value) Handle

	// Scalar returns the host payload of a Nil, Boolean, Number or
	// OpaqueReference value: nil, bool, int64 or float64, or whatever the
	// runtime stores behind an opaque reference.
	Scalar(v Value) (any, error)
}

// Handle is a stable reference to a runtime value.
//
// Handles are deliberately not comparable: a retained reference carries no
// equality or hashing capability of its own and must not be used as a map key.
// ID exposes the identity of the underlying object for bookkeeping such as
// cycle detection; it is zero when the runtime has no notion of identity.
type Handle struct {
	_     [0]func()
	id    uint64
	value Value
}

// NewHandle is used by runtimes to build handles.
func NewHandle(id uint64, v Value) Handle {
	return Handle{id: id, value: v}
}

// ID returns the identity of the referenced object, or zero.
func (h Handle) ID() uint64 { return h.id }

// Value returns the referenced runtime value.
func (h Handle) Value() Value { return h.value }

// IsZero reports whether h was never retained.
func (h Handle) IsZero() bool { return h.id == 0 && h.value == nil }
