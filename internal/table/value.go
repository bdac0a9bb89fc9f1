package table

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/specialistvlad/dynresolve/internal/dyn"
)

var (
	// ErrInvalidKey is returned for nil and NaN keys.
	ErrInvalidKey = errors.New("invalid table key")

	// ErrUnsupported is returned when a Go value has no runtime counterpart.
	ErrUnsupported = errors.New("unsupported value")
)

// String is a byte string. Its content is not required to be valid UTF-8.
type String string

// Function is a callable runtime value. The resolver never calls it.
type Function struct {
	Name string
}

// Userdata is a full userdata block carrying an arbitrary host payload.
type Userdata struct {
	Payload any
}

// LightUserdata is a bare pointer owned by the host.
type LightUserdata struct {
	Ptr unsafe.Pointer
}

// Value normalises a Go value into the runtime's value space: Go integers
// become int64, float32 becomes float64, string and []byte become String.
// Values that already belong to the runtime pass through.
func Value(v any) (dyn.Value, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, String, *Table, *Function, *Userdata, LightUserdata:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return float64(x), nil
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return float64(x), nil
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(x), nil
	case unsafe.Pointer:
		return LightUserdata{Ptr: x}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

// normalizeKey returns the storage key for k.
func normalizeKey(k dyn.Value) (dyn.Value, error) {
	switch x := k.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidKey)
	case float64:
		if math.IsNaN(x) {
			return nil, fmt.Errorf("%w: NaN", ErrInvalidKey)
		}
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x), nil
		}
	}
	return k, nil
}
