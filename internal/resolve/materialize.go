package resolve

import (
	"bytes"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

// materialize builds the representation of v selected by c. It reports
// false when c does not apply to v's category or the content does not fit.
func (s *session) materialize(c Constraint, v dyn.Value, cat dyn.Category, slot Target) (any, bool, error) {
	switch c {
	case ErasedAny:
		return s.erase(v, cat, false)
	case ErasedHashable:
		return s.erase(v, cat, true)

	case Text, ByteSequence, BinaryBlob:
		if cat != dyn.StringLike {
			return nil, false, nil
		}
		raw, err := s.rawBytes(v)
		if err != nil {
			return nil, false, err
		}
		switch c {
		case Text:
			text, ok := s.cfg.decodeText(raw)
			return text, ok, nil
		case ByteSequence:
			return bytes.Clone(raw), true, nil
		}
		return NewBlob(raw), true, nil

	case OrderedAny, OrderedHashable:
		if cat != dyn.TableLike {
			return nil, false, nil
		}
		return s.resolveSequence(v, nestedTarget(c, slot), Unpinned)
	case KeyedAny, KeyedHashable:
		if cat != dyn.TableLike {
			return nil, false, nil
		}
		return s.resolveMap(v, nestedTarget(c, slot))

	case DirectScalar:
		if !cat.IsScalar() {
			return nil, false, nil
		}
		p, err := s.scalar(v)
		return p, err == nil, err

	case RawPointer:
		switch cat {
		case dyn.Nil:
			return unsafe.Pointer(nil), true, nil
		case dyn.OpaqueReference:
			p, err := s.scalar(v)
			if err != nil {
				return nil, false, err
			}
			ptr, ok := p.(unsafe.Pointer)
			return ptr, ok, nil
		}
		return nil, false, nil

	case OpaqueHandle:
		return s.rt.Retain(v), true, nil
	}
	return nil, false, nil
}

// erase is the natural conversion used for any and Hashable slots: text
// when the bytes decode, otherwise bytes or a Blob; tables become maps;
// scalars pass through.
func (s *session) erase(v dyn.Value, cat dyn.Category, hashable bool) (any, bool, error) {
	switch cat {
	case dyn.StringLike:
		raw, err := s.rawBytes(v)
		if err != nil {
			return nil, false, err
		}
		if text, ok := s.cfg.decodeText(raw); ok {
			return text, true, nil
		}
		if hashable {
			return NewBlob(raw), true, nil
		}
		return bytes.Clone(raw), true, nil
	case dyn.TableLike:
		if hashable {
			return s.resolveMap(v, frozenMapTarget)
		}
		return s.resolveMap(v, erasedMapTarget)
	}
	p, err := s.scalar(v)
	if err != nil {
		return nil, false, err
	}
	if hashable && p != nil && !reflect.ValueOf(p).Comparable() {
		return nil, false, nil
	}
	return p, true, nil
}

func (s *session) rawBytes(v dyn.Value) ([]byte, error) {
	raw, err := s.rt.RawBytes(v)
	if err != nil {
		return nil, fmt.Errorf("reading string bytes: %w", err)
	}
	return raw, nil
}

func (s *session) scalar(v dyn.Value) (any, error) {
	p, err := s.rt.Scalar(v)
	if err != nil {
		return nil, fmt.Errorf("reading %s value: %w", s.rt.Classify(v), err)
	}
	return p, nil
}
