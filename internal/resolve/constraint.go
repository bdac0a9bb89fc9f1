package resolve

// Constraint is the committed interpretation of one structural position.
type Constraint uint8

const (
	Unpinned Constraint = iota

	// Encodings of a string-like value.
	Text
	ByteSequence
	BinaryBlob

	// Encodings of a table as a sequence or a map; the Hashable variants
	// produce values usable as map keys.
	OrderedAny
	OrderedHashable
	KeyedAny
	KeyedHashable

	DirectScalar
	ErasedAny
	ErasedHashable
	RawPointer
	OpaqueHandle

	// ConstraintTotal is the number of constraints defined above.
	ConstraintTotal = int(iota)
)

var constraintNames = [...]string{
	Unpinned:        "unpinned",
	Text:            "text",
	ByteSequence:    "bytes",
	BinaryBlob:      "blob",
	OrderedAny:      "ordered",
	OrderedHashable: "ordered-hashable",
	KeyedAny:        "keyed",
	KeyedHashable:   "keyed-hashable",
	DirectScalar:    "scalar",
	ErasedAny:       "erased",
	ErasedHashable:  "erased-hashable",
	RawPointer:      "pointer",
	OpaqueHandle:    "handle",
}

func (c Constraint) String() string {
	if int(c) < len(constraintNames) {
		return constraintNames[c]
	}
	return "invalid"
}

// Pinned reports whether c commits to a representation.
func (c Constraint) Pinned() bool { return c != Unpinned }

// verbatim reports the erasure and pass-through modes. A sequence pinned to
// one of them accepts every element without further probing.
func (c Constraint) verbatim() bool {
	switch c {
	case ErasedAny, ErasedHashable, RawPointer, OpaqueHandle:
		return true
	}
	return false
}

func (c Constraint) ordered() bool { return c == OrderedAny || c == OrderedHashable }

func (c Constraint) keyed() bool { return c == KeyedAny || c == KeyedHashable }

// marker returns the sentinel a slot must accept before c is even tried.
func (c Constraint) marker() (marker, bool) {
	switch c {
	case ErasedAny:
		return markerErased, true
	case ErasedHashable:
		return markerErasedHashable, true
	case OpaqueHandle:
		return markerPassThrough, true
	case RawPointer:
		return markerPointer, true
	}
	return 0, false
}
