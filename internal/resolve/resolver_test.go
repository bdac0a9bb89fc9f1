package resolve

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/dyn"
	"github.com/specialistvlad/dynresolve/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// openKey is an erased interface the resolver does not recognise as any,
// so no sentinel short-circuits its positions.
type openKey interface{}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return New(table.Runtime{}, nil)
}

func list(t *testing.T, elems ...any) *table.Table {
	t.Helper()
	tbl, err := table.List(elems...)
	require.NoError(t, err)
	return tbl
}

func dict(t *testing.T, kv ...any) *table.Table {
	t.Helper()
	tbl, err := table.Map(kv...)
	require.NoError(t, err)
	return tbl
}

func mustResolve[T any](t *testing.T, r *Resolver, v dyn.Value) T {
	t.Helper()
	got, ok, err := Resolve[T](context.Background(), r, v)
	require.NoError(t, err)
	require.True(t, ok, "expected %T to resolve", got)
	return got
}

func noMatch[T any](t *testing.T, r *Resolver, v dyn.Value) {
	t.Helper()
	got, ok, err := Resolve[T](context.Background(), r, v)
	require.NoError(t, err)
	require.False(t, ok, "expected no match, got %#v", got)
	var zero T
	assert.Equal(t, zero, got)
}

func TestResolve_HomogeneousRoundTrip(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, []int64{1, 2, 3}, mustResolve[[]int64](t, r, list(t, 1, 2, 3)))
	assert.Equal(t, []int{-4, 0, 9}, mustResolve[[]int](t, r, list(t, -4, 0, 9)))
	assert.Equal(t, []float64{0.5, 1.25}, mustResolve[[]float64](t, r, list(t, 0.5, 1.25)))
	assert.Equal(t, []bool{true, false}, mustResolve[[]bool](t, r, list(t, true, false)))
	assert.Equal(t, []string{"a", "b"}, mustResolve[[]string](t, r, list(t, "a", "b")))
	assert.Equal(t, [][]byte{[]byte("a"), {0xff}}, mustResolve[[][]byte](t, r, list(t, "a", []byte{0xff})))
	assert.Equal(t, []int{}, mustResolve[[]int](t, r, table.New()))
}

func TestResolve_StringAmbiguity(t *testing.T) {
	r := newResolver(t)
	abc := table.String([]byte{0x61, 0x62, 0x63})

	assert.Equal(t, "abc", mustResolve[string](t, r, abc))
	assert.Equal(t, []byte{0x61, 0x62, 0x63}, mustResolve[[]byte](t, r, abc))
	assert.Equal(t, NewBlob([]byte("abc")), mustResolve[Blob](t, r, abc))
	assert.Equal(t, "abc", mustResolve[any](t, r, abc))

	invalid := table.String([]byte{0xff, 0xfe})
	noMatch[string](t, r, invalid)
	assert.Equal(t, []byte{0xff, 0xfe}, mustResolve[any](t, r, invalid))
	assert.Equal(t, NewBlob([]byte{0xff, 0xfe}), mustResolve[Hashable](t, r, invalid))
}

func TestResolve_TextEncoding(t *testing.T) {
	cfg, err := NewConfig(Config{TextEncoding: charmap.ISO8859_1})
	require.NoError(t, err)
	r := New(table.Runtime{}, cfg)

	assert.Equal(t, "café", mustResolve[string](t, r, table.String("caf\xe9")))
	assert.Equal(t, []byte("caf\xe9"), mustResolve[[]byte](t, r, table.String("caf\xe9")))
}

func TestResolve_AllOrNothing(t *testing.T) {
	r := newResolver(t)

	noMatch[[]int](t, r, list(t, 1, 2, "x"))
	noMatch[[]string](t, r, list(t, "a", 1))
	noMatch[[]int](t, r, list(t, 1.0, 2.5))
	noMatch[[]uint8](t, r, list(t, 1, 300))
	noMatch[map[string]int](t, r, dict(t, "a", 1, "b", "two"))
	noMatch[[][]int](t, r, list(t, list(t, 1), list(t, "x")))
}

func TestResolve_ConstraintConsistency(t *testing.T) {
	r := newResolver(t)
	tableKey := list(t, "k")

	t.Run("table key alone resolves", func(t *testing.T) {
		got := mustResolve[map[openKey]int](t, r, dict(t, tableKey, 2))
		require.Len(t, got, 1)
	})

	t.Run("text key pins the key constraint", func(t *testing.T) {
		noMatch[map[openKey]int](t, r, dict(t, "a", 1, tableKey, 2))
	})

	t.Run("value constraint is pinned too", func(t *testing.T) {
		noMatch[map[string]openKey](t, r, dict(t, "a", "x", "b", list(t, 1)))
	})

	t.Run("sequence string constraint", func(t *testing.T) {
		got := mustResolve[[]openKey](t, r, list(t, "a", "b"))
		assert.Equal(t, []openKey{"a", "b"}, got)
		noMatch[[]openKey](t, r, list(t, "a", []byte{0xff}))
	})
}

func TestResolve_ErasureDefaultsToKeyed(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, map[any]any{}, mustResolve[any](t, r, table.New()))

	got := mustResolve[any](t, r, list(t, "a", list(t, 1, 2)))
	want := map[any]any{
		int64(1): "a",
		int64(2): map[any]any{int64(1): int64(1), int64(2): int64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("erased table mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []any{"a", map[any]any{"k": true}},
		mustResolve[[]any](t, r, list(t, "a", dict(t, "k", true))))
}

func TestResolve_NonHashableKeyRejected(t *testing.T) {
	r := newResolver(t)
	opaque := &table.Userdata{Payload: []int{1, 2}}

	noMatch[map[any]int](t, r, dict(t, opaque, 1))
	noMatch[map[Hashable]int](t, r, dict(t, opaque, 1))
	noMatch[map[any]int](t, r, dict(t, "ok", 1, opaque, 2))

	withID := &table.Userdata{Payload: "id-7"}
	assert.Equal(t, map[any]int{"id-7": 1}, mustResolve[map[any]int](t, r, dict(t, withID, 1)))
}

func TestResolve_TableKeys(t *testing.T) {
	r := newResolver(t)
	src := dict(t, list(t, "a", "b"), 1)

	t.Run("array key", func(t *testing.T) {
		assert.Equal(t, map[[2]string]int{{"a", "b"}: 1}, mustResolve[map[[2]string]int](t, r, src))
	})

	t.Run("erased key becomes frozen map", func(t *testing.T) {
		key, err := FreezeMap([]Entry{{int64(1), "a"}, {int64(2), "b"}})
		require.NoError(t, err)
		assert.Equal(t, map[any]int{key: 1}, mustResolve[map[any]int](t, r, src))
	})

	t.Run("frozen list key", func(t *testing.T) {
		key, err := FreezeList([]any{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, map[FrozenList]int{key: 1}, mustResolve[map[FrozenList]int](t, r, src))
	})

	t.Run("nested table key", func(t *testing.T) {
		nested := dict(t, list(t, list(t, 1), "x"), true)
		inner, err := FreezeMap([]Entry{{int64(1), int64(1)}})
		require.NoError(t, err)
		key, err := FreezeMap([]Entry{{int64(1), inner}, {int64(2), "x"}})
		require.NoError(t, err)
		assert.Equal(t, map[Hashable]bool{key: true}, mustResolve[map[Hashable]bool](t, r, nested))
	})

	t.Run("wrong array length", func(t *testing.T) {
		noMatch[map[[3]string]int](t, r, src)
	})
}

func TestResolve_NestedTyped(t *testing.T) {
	r := newResolver(t)
	src := dict(t,
		"web", dict(t, "ports", list(t, 80, 443), "tags", list(t, "edge")),
		"db", dict(t, "ports", list(t, 5432), "tags", table.New()),
	)

	got := mustResolve[map[string]map[string][]any](t, r, src)
	want := map[string]map[string][]any{
		"web": {"ports": {int64(80), int64(443)}, "tags": {"edge"}},
		"db":  {"ports": {int64(5432)}, "tags": {}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_SequenceOfSequencesBridges(t *testing.T) {
	r := newResolver(t)

	got := mustResolve[[][]string](t, r, list(t, list(t, "a", "b"), list(t, "c"), table.New()))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {}}, got)

	got2 := mustResolve[[][]string](t, r, list(t, dict(t, 2, "b", 1, "a")))
	assert.Equal(t, [][]string{{"a", "b"}}, got2, "keys 1..n in any order bridge to a sequence")
}

func TestResolve_SequenceStopsAtHole(t *testing.T) {
	r := newResolver(t)
	assert.Equal(t, []string{"a", "b"}, mustResolve[[]string](t, r, dict(t, 1, "a", 2, "b", 4, "d")))
}

func TestResolve_Arrays(t *testing.T) {
	r := newResolver(t)
	assert.Equal(t, [2]int{1, 2}, mustResolve[[2]int](t, r, list(t, 1, 2)))
	noMatch[[2]int](t, r, list(t, 1, 2, 3))
	noMatch[[2]int](t, r, list(t, 1))
}

func TestResolve_Scalars(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, 42, mustResolve[int](t, r, int64(42)))
	assert.Equal(t, 1.5, mustResolve[float64](t, r, 1.5))
	assert.Equal(t, true, mustResolve[bool](t, r, true))
	assert.Nil(t, mustResolve[any](t, r, nil))
	assert.Nil(t, mustResolve[*int](t, r, nil))
	noMatch[int](t, r, table.String("42"))
	noMatch[string](t, r, list(t, "a"))
	noMatch[map[string]int](t, r, int64(1))
}

func TestResolve_PassThrough(t *testing.T) {
	r := newResolver(t)
	fn := &table.Function{Name: "print"}
	inner := list(t, 1)

	handles := mustResolve[[]dyn.Handle](t, r, list(t, fn, inner, "s"))
	require.Len(t, handles, 3)
	assert.Same(t, fn, handles[0].Value())
	assert.Same(t, inner, handles[1].Value())
	assert.Equal(t, inner.ID(), handles[1].ID())
	assert.Equal(t, table.String("s"), handles[2].Value())

	h := mustResolve[dyn.Handle](t, r, inner)
	assert.Same(t, inner, h.Value())

	byName := mustResolve[map[string]dyn.Handle](t, r, dict(t, "cb", fn))
	assert.Same(t, fn, byName["cb"].Value())

	assert.Same(t, fn, mustResolve[any](t, r, fn))
}

func TestResolve_RawPointer(t *testing.T) {
	r := newResolver(t)
	var x, y int
	px, py := unsafe.Pointer(&x), unsafe.Pointer(&y)

	got := mustResolve[[]unsafe.Pointer](t, r, list(t, px, py))
	assert.Equal(t, []unsafe.Pointer{px, py}, got)

	assert.Equal(t, px, mustResolve[unsafe.Pointer](t, r, table.LightUserdata{Ptr: px}))
	noMatch[[]unsafe.Pointer](t, r, list(t, px, &table.Function{}))
}

func TestResolve_SharedReferencesAreNotCycles(t *testing.T) {
	r := newResolver(t)
	shared := list(t, 1, 2)
	got := mustResolve[map[string][]int](t, r, dict(t, "a", shared, "b", shared))
	assert.Equal(t, map[string][]int{"a": {1, 2}, "b": {1, 2}}, got)
}

func TestResolve_Cycle(t *testing.T) {
	r := newResolver(t)
	self := table.New()
	require.NoError(t, self.Set("name", "loop"))
	require.NoError(t, self.Set("self", self))

	_, ok, err := Resolve[any](context.Background(), r, self)
	require.ErrorIs(t, err, ErrCycle)
	assert.False(t, ok)

	_, _, err = Resolve[[]any](context.Background(), r, list(t, list(t, self)))
	require.ErrorIs(t, err, ErrCycle)
}

func TestResolve_DepthLimit(t *testing.T) {
	cfg, err := NewConfig(Config{MaxDepth: 2})
	require.NoError(t, err)
	r := New(table.Runtime{}, cfg)

	mustResolve[[][]int](t, r, list(t, list(t, 1)))

	_, ok, err := Resolve[[][][]int](context.Background(), r, list(t, list(t, list(t, 1))))
	require.ErrorIs(t, err, ErrDepthExceeded)
	assert.False(t, ok)
}

func TestResolve_RuntimeFailureIsHard(t *testing.T) {
	r := newResolver(t)
	boom := errors.New("handler exploded")

	bad := list(t, 1, 2, 3)
	bad.SetAccessHandler(func(key dyn.Value) error {
		if key == int64(3) {
			return boom
		}
		return nil
	})

	t.Run("sequence", func(t *testing.T) {
		_, ok, err := Resolve[[]int](context.Background(), r, bad)
		require.ErrorIs(t, err, boom)
		assert.False(t, ok)
	})

	t.Run("map", func(t *testing.T) {
		_, ok, err := Resolve[map[int]int](context.Background(), r, bad)
		require.ErrorIs(t, err, boom)
		assert.False(t, ok)
	})

	t.Run("nested", func(t *testing.T) {
		_, _, err := Resolve[map[string][]int](context.Background(), r, dict(t, "inner", bad))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "in map entry 1")
	})
}

// countAccess makes every table in tbls count its key accesses into n.
func countAccess(n *int, tbls ...*table.Table) {
	for _, tbl := range tbls {
		tbl.SetAccessHandler(func(dyn.Value) error {
			*n++
			return nil
		})
	}
}

func TestResolve_DeepMismatchVisitsEachTableOnce(t *testing.T) {
	const depth = 40
	r := newResolver(t)

	tables := []*table.Table{list(t, "x")}
	for range depth - 1 {
		tables = append(tables, list(t, tables[len(tables)-1]))
	}
	var accesses int
	countAccess(&accesses, tables...)

	typ := reflect.TypeFor[int]()
	for range depth {
		typ = reflect.SliceOf(typ)
	}

	_, ok, err := r.ResolveTarget(context.Background(), tables[len(tables)-1], TargetOf(typ))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.LessOrEqual(t, accesses, 3*depth, "nested tables are read a bounded number of times")
}

func TestResolve_ScalarSlotsDoNotDecomposeTables(t *testing.T) {
	r := newResolver(t)

	t.Run("cyclic table in handle slot", func(t *testing.T) {
		self := table.New()
		require.NoError(t, self.Set("self", self))

		got := mustResolve[map[string]dyn.Handle](t, r, self)
		assert.Same(t, self, got["self"].Value())
	})

	t.Run("failing table in handle slot", func(t *testing.T) {
		bad := list(t, 1)
		bad.SetAccessHandler(func(dyn.Value) error { return errors.New("must not be read") })

		got := mustResolve[map[string]dyn.Handle](t, r, dict(t, "bad", bad))
		assert.Same(t, bad, got["bad"].Value())
	})

	t.Run("table in int slot is never iterated", func(t *testing.T) {
		inner := dict(t, "a", 1)
		var accesses int
		countAccess(&accesses, inner)

		noMatch[map[string]int](t, r, dict(t, "inner", inner))
		assert.Zero(t, accesses)
	})
}

func TestResolve_LogsPinnedConstraints(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	got, ok, err := Resolve[map[string][]byte](ctx, newResolver(t), dict(t, "k", "v"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string][]byte{"k": []byte("v")}, got)

	out := buf.String()
	assert.Contains(t, out, "Pinned map key constraint.")
	assert.Contains(t, out, "constraint=text")
	assert.Contains(t, out, "constraint=bytes")
}

func TestResolve_ConcurrentCalls(t *testing.T) {
	r := newResolver(t)
	src := dict(t, "a", list(t, "x", "y"), "b", list(t, "z"))

	done := make(chan map[string][]string)
	for range 8 {
		go func() {
			got, _, _ := Resolve[map[string][]string](context.Background(), r, src)
			done <- got
		}()
	}
	for range 8 {
		assert.Equal(t, map[string][]string{"a": {"x", "y"}, "b": {"z"}}, <-done)
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)

	_, err = NewConfig(Config{MaxDepth: -1})
	require.Error(t, err)
}

func TestEncodingByName(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8"} {
		enc, err := EncodingByName(name)
		require.NoError(t, err)
		assert.Nil(t, enc)
	}

	enc, err := EncodingByName("Latin1")
	require.NoError(t, err)
	assert.Equal(t, charmap.ISO8859_1, enc)

	_, err = EncodingByName("ebcdic")
	require.Error(t, err)
}
