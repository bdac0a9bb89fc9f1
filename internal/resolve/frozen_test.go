package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreezeList(t *testing.T) {
	inner, err := FreezeList([]any{"x", int64(-7)})
	require.NoError(t, err)

	l, err := FreezeList([]any{nil, true, int64(1), 2.5, "s", NewBlob([]byte{0xff}), inner, FrozenMap{}})
	require.NoError(t, err)
	assert.Equal(t, 8, l.Len())

	got, err := l.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{nil, true, int64(1), 2.5, "s", NewBlob([]byte{0xff}), inner, FrozenMap{}}, got)

	again, err := FreezeList([]any{nil, true, int64(1), 2.5, "s", NewBlob([]byte{0xff}), inner, FrozenMap{}})
	require.NoError(t, err)
	assert.True(t, l == again, "equal content must compare equal")
}

func TestFreezeList_Empty(t *testing.T) {
	l, err := FreezeList(nil)
	require.NoError(t, err)
	assert.Equal(t, FrozenList{}, l)
	assert.Zero(t, l.Len())

	nested, err := FreezeList([]any{FrozenList{}})
	require.NoError(t, err)
	got, err := nested.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{FrozenList{}}, got)
}

func TestFreezeMap_OrderIndependent(t *testing.T) {
	a, err := FreezeMap([]Entry{{"b", int64(2)}, {"a", int64(1)}, {int64(3), "c"}})
	require.NoError(t, err)
	b, err := FreezeMap([]Entry{{int64(3), "c"}, {"a", int64(1)}, {"b", int64(2)}})
	require.NoError(t, err)
	assert.True(t, a == b)
	assert.Equal(t, 3, a.Len())

	set := map[FrozenMap]string{a: "first"}
	assert.Equal(t, "first", set[b], "frozen maps work as map keys")

	entries, err := a.Entries()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entry{{"a", int64(1)}, {"b", int64(2)}, {int64(3), "c"}}, entries)
}

func TestFreezeMap_LaterEntryWins(t *testing.T) {
	m, err := FreezeMap([]Entry{{"k", int64(1)}, {"k", int64(2)}})
	require.NoError(t, err)
	entries, err := m.Entries()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"k", int64(2)}}, entries)
}

func TestFreeze_Rejects(t *testing.T) {
	_, err := FreezeList([]any{[]int{1}})
	assert.ErrorIs(t, err, ErrNotFreezable)

	_, err = FreezeMap([]Entry{{"k", map[string]int{}}})
	assert.ErrorIs(t, err, ErrNotFreezable)

	assert.False(t, freezable(&struct{}{}))
	assert.True(t, freezable(NewBlob(nil)))
}

func TestBlob(t *testing.T) {
	b := NewBlob([]byte{0xde, 0xad})
	assert.Equal(t, "dead", b.String())
	assert.Equal(t, 2, b.Len())

	raw := b.Bytes()
	raw[0] = 0
	assert.Equal(t, []byte{0xde, 0xad}, b.Bytes(), "Bytes returns a copy")
	assert.True(t, b == NewBlob([]byte{0xde, 0xad}))
}
