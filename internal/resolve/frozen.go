package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ErrNotFreezable is returned when a value has no canonical hashable form.
var ErrNotFreezable = errors.New("value cannot be frozen")

// FrozenList is an immutable, comparable sequence. Two lists are == when
// their elements are equal element-wise. The zero value is the empty list.
type FrozenList struct {
	enc string
}

// FrozenMap is an immutable, comparable map. Entries are kept in canonical
// key order, so two maps with the same entries are ==.
type FrozenMap struct {
	enc string
}

// Entry is one key/value pair of a FrozenMap.
type Entry struct {
	Key   any
	Value any
}

// FreezeList builds a FrozenList. Elements must be nil, bool, int64, int,
// float64, string, Blob, FrozenList or FrozenMap.
func FreezeList(elems []any) (FrozenList, error) {
	if len(elems) == 0 {
		return FrozenList{}, nil
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeArrayLen(len(elems)); err != nil {
		return FrozenList{}, err
	}
	for i, e := range elems {
		if err := encodeFrozen(enc, &buf, e); err != nil {
			return FrozenList{}, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return FrozenList{enc: buf.String()}, nil
}

// FreezeMap builds a FrozenMap. When two entries encode the same key the
// later one wins.
func FreezeMap(entries []Entry) (FrozenMap, error) {
	type encoded struct {
		key, value string
	}
	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		k, err := encodeOne(e.Key)
		if err != nil {
			return FrozenMap{}, fmt.Errorf("key %v: %w", e.Key, err)
		}
		v, err := encodeOne(e.Value)
		if err != nil {
			return FrozenMap{}, fmt.Errorf("value for key %v: %w", e.Key, err)
		}
		byKey[k] = v
	}

	sorted := make([]encoded, 0, len(byKey))
	for k, v := range byKey {
		sorted = append(sorted, encoded{key: k, value: v})
	}
	slices.SortFunc(sorted, func(a, b encoded) int { return strings.Compare(a.key, b.key) })

	if len(sorted) == 0 {
		return FrozenMap{}, nil
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(sorted)); err != nil {
		return FrozenMap{}, err
	}
	for _, e := range sorted {
		buf.WriteString(e.key)
		buf.WriteString(e.value)
	}
	return FrozenMap{enc: buf.String()}, nil
}

func (l FrozenList) Len() int {
	if l.enc == "" {
		return 0
	}
	n, _ := msgpack.NewDecoder(strings.NewReader(l.enc)).DecodeArrayLen()
	return n
}

// Values decodes the elements.
func (l FrozenList) Values() ([]any, error) {
	if l.enc == "" {
		return nil, nil
	}
	dec := msgpack.NewDecoder(strings.NewReader(l.enc))
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	for range n {
		v, err := decodeFrozen(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (l FrozenList) String() string {
	vs, err := l.Values()
	if err != nil {
		return "FrozenList(<invalid>)"
	}
	return fmt.Sprintf("FrozenList%v", vs)
}

func (m FrozenMap) Len() int {
	if m.enc == "" {
		return 0
	}
	n, _ := msgpack.NewDecoder(strings.NewReader(m.enc)).DecodeMapLen()
	return n
}

// Entries decodes the pairs in canonical key order.
func (m FrozenMap) Entries() ([]Entry, error) {
	if m.enc == "" {
		return nil, nil
	}
	dec := msgpack.NewDecoder(strings.NewReader(m.enc))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, n)
	for range n {
		k, err := decodeFrozen(dec)
		if err != nil {
			return nil, err
		}
		v, err := decodeFrozen(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	return out, nil
}

func (m FrozenMap) String() string {
	es, err := m.Entries()
	if err != nil {
		return "FrozenMap(<invalid>)"
	}
	var sb strings.Builder
	sb.WriteString("FrozenMap{")
	for i, e := range es {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %v", e.Key, e.Value)
	}
	sb.WriteString("}")
	return sb.String()
}

func encodeOne(v any) (string, error) {
	var buf bytes.Buffer
	if err := encodeFrozen(msgpack.NewEncoder(&buf), &buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// freezable reports whether v has a canonical frozen form.
func freezable(v any) bool {
	return encodeFrozen(msgpack.NewEncoder(io.Discard), io.Discard, v) == nil
}

// encodeFrozen writes v through enc. Nested frozen values and blob payloads
// are written to w directly, which must be the writer enc was built on.
func encodeFrozen(enc *msgpack.Encoder, w io.Writer, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(x)
	case int64:
		return enc.EncodeInt(x)
	case int:
		return enc.EncodeInt(int64(x))
	case float64:
		return enc.EncodeFloat64(x)
	case string:
		return enc.EncodeString(x)
	case Blob:
		if err := enc.EncodeBytesLen(len(x.data)); err != nil {
			return err
		}
		_, err := io.WriteString(w, x.data)
		return err
	case FrozenList:
		if x.enc == "" {
			return enc.EncodeArrayLen(0)
		}
		_, err := io.WriteString(w, x.enc)
		return err
	case FrozenMap:
		if x.enc == "" {
			return enc.EncodeMapLen(0)
		}
		_, err := io.WriteString(w, x.enc)
		return err
	}
	return fmt.Errorf("%w: %T", ErrNotFreezable, v)
}

func decodeFrozen(dec *msgpack.Decoder) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == msgpcode.Nil:
		return nil, dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		return dec.DecodeBool()
	case c == msgpcode.Float || c == msgpcode.Double:
		return dec.DecodeFloat64()
	case msgpcode.IsString(c):
		return dec.DecodeString()
	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return NewBlob(b), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		raw, err := dec.DecodeRaw()
		if err != nil {
			return nil, err
		}
		if len(raw) == 1 {
			return FrozenList{}, nil
		}
		return FrozenList{enc: string(raw)}, nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		raw, err := dec.DecodeRaw()
		if err != nil {
			return nil, err
		}
		if len(raw) == 1 {
			return FrozenMap{}, nil
		}
		return FrozenMap{enc: string(raw)}, nil
	}
	return dec.DecodeInt64()
}
