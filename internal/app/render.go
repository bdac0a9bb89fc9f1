package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/davecgh/go-spew/spew"
	"github.com/specialistvlad/dynresolve/internal/dyn"
	"github.com/specialistvlad/dynresolve/internal/resolve"
	"gopkg.in/yaml.v3"
)

// outputEntry is the serialised form of a Result.
type outputEntry struct {
	File    string `yaml:"file" json:"file"`
	Name    string `yaml:"name" json:"name"`
	Matched bool   `yaml:"matched" json:"matched"`
	Value   any    `yaml:"value" json:"value"`
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func render(w io.Writer, format string, results []Result) error {
	if format == OutputDump {
		for _, r := range results {
			fmt.Fprintf(w, "# %s: %s (matched: %t)\n", r.File, r.Name, r.OK)
			dumpConfig.Fdump(w, r.Value)
		}
		return nil
	}

	out := make([]outputEntry, 0, len(results))
	for _, r := range results {
		out = append(out, outputEntry{File: r.File, Name: r.Name, Matched: r.OK, Value: toDocument(r.Value)})
	}

	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// toDocument turns a resolved value into plain data that YAML and JSON can
// encode: lists, string-keyed maps and scalars. Byte sequences become hex.
func toDocument(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return hex.EncodeToString(x)
	case resolve.Blob:
		return x.String()
	case resolve.FrozenList:
		vals, err := x.Values()
		if err != nil {
			return x.String()
		}
		return toDocument(vals)
	case resolve.FrozenMap:
		entries, err := x.Entries()
		if err != nil {
			return x.String()
		}
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[keyString(e.Key)] = toDocument(e.Value)
		}
		return out
	case dyn.Handle:
		if x.IsZero() {
			return nil
		}
		return fmt.Sprintf("handle(%d)", x.ID())
	case unsafe.Pointer:
		return fmt.Sprintf("pointer(%p)", x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = toDocument(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[keyString(iter.Key().Interface())] = toDocument(iter.Value().Interface())
		}
		return out
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

func keyString(k any) string {
	switch x := toDocument(k).(type) {
	case string:
		return x
	case nil:
		return "null"
	}
	if s, ok := k.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(k)
}
