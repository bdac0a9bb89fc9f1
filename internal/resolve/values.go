package resolve

import "encoding/hex"

// Hashable is the erased element type for positions that must be usable as
// map keys. A slot of this type receives only comparable values: strings,
// scalars, Blob, FrozenList and FrozenMap.
type Hashable any

// Blob is the hashable binary representation of a string-like value.
type Blob struct {
	data string
}

// NewBlob copies b into a Blob.
func NewBlob(b []byte) Blob {
	return Blob{data: string(b)}
}

// Bytes returns a copy of the blob content.
func (b Blob) Bytes() []byte { return []byte(b.data) }

func (b Blob) Len() int { return len(b.data) }

// String renders the content as lower-case hex.
func (b Blob) String() string { return hex.EncodeToString([]byte(b.data)) }
