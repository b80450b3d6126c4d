package objectmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationSet_DuplicatesCollapse(t *testing.T) {
	s := NewObservationSet(5, 1, 5, 3, 1)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []uint32{1, 3, 5}, s.Values())
}

func TestObservationSet_AddContains(t *testing.T) {
	s := NewObservationSet()
	assert.True(t, s.IsEmpty())

	s.Add(42)
	s.Add(42)
	assert.False(t, s.IsEmpty())
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(42))
	assert.False(t, s.Contains(7))
}

func TestObservationSet_Union(t *testing.T) {
	a := NewObservationSet(1, 2, 3)
	b := NewObservationSet(3, 4)

	a.Union(b)
	assert.Equal(t, []uint32{1, 2, 3, 4}, a.Values())
	// Other side is untouched.
	assert.Equal(t, []uint32{3, 4}, b.Values())

	// Union with nil is a no-op.
	a.Union(nil)
	assert.Equal(t, 4, a.Len())
}

func TestObservationSet_Equal(t *testing.T) {
	a := NewObservationSet(1, 2)
	b := NewObservationSet(2, 1, 1)

	assert.True(t, a.Equal(b))
	b.Add(3)
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestObservationSet_Clone(t *testing.T) {
	a := NewObservationSet(1, 2)
	b := a.Clone()
	b.Add(3)

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, b.Len())
}

func TestObservationSet_All(t *testing.T) {
	s := NewObservationSet(9, 4, 7)

	var got []uint32
	for id := range s.All() {
		got = append(got, id)
	}
	require.Equal(t, []uint32{4, 7, 9}, got)
}
