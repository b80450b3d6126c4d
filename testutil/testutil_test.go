package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingrune/objectmap/geometry"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	points := rng.UniformPoints(64, 2.0)

	assert.Equal(t, 64, len(points))
	for _, p := range points {
		for j := range 3 {
			assert.Less(t, p[j], 2.0)
			assert.GreaterOrEqual(t, p[j], -2.0)
		}
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	points := rng.ClusteredPoints(200, 0.1)
	require.Equal(t, 200, len(points))

	// With spread 0.1 the cloud stays tight around its center.
	centroid := geometry.NewPointCloud(points).Centroid()
	for _, p := range points {
		assert.Less(t, p.Sub(centroid).Norm(), 1.0)
	}
}

func TestUnitDescriptor(t *testing.T) {
	rng := NewRNG(4711)

	for range 8 {
		d := rng.UnitDescriptor(32)
		require.Equal(t, 32, d.Len())

		var sum float64
		for i := 0; i < d.Len(); i++ {
			sum += d.AtVec(i) * d.AtVec(i)
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestClassVotes(t *testing.T) {
	rng := NewRNG(42)

	votes := rng.ClassVotes(10000, 20, 1.5)
	require.Equal(t, 10000, len(votes))

	counts := make(map[int]int)
	for _, v := range votes {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 20)
		counts[v]++
	}

	// Zipf with s=1.5 concentrates mass on the first classes.
	assert.Greater(t, counts[0], counts[10])
	assert.Greater(t, float64(counts[0])/float64(len(votes)), 0.3)
}

func TestObservationIDs(t *testing.T) {
	rng := NewRNG(42)

	set := rng.ObservationIDs(10, 1000)
	assert.Equal(t, 10, set.Len())
	for _, id := range set.Values() {
		assert.Less(t, id, uint32(1000))
	}
}

func TestObjectRecord(t *testing.T) {
	rng := NewRNG(7)

	rec := rng.ObjectRecord(128, 16, 10)
	require.NotNil(t, rec.Cloud)
	assert.Equal(t, 128, rec.Cloud.Len())
	assert.True(t, rec.Cloud.HasColors())
	require.NotNil(t, rec.Bound)
	assert.Positive(t, rec.Bound.Volume())
	require.NotNil(t, rec.Descriptor)
	assert.Equal(t, 16, rec.Descriptor.Len())
	assert.Len(t, rec.ClassVotes, 5)
	require.NotNil(t, rec.IDs)
	assert.Equal(t, 3, rec.IDs.Len())
}

func TestObjectList(t *testing.T) {
	rng := NewRNG(7)

	list := rng.ObjectList(5, 64, 8, 4)
	require.Equal(t, 5, list.Len())

	// Generated lists are serializable without warnings.
	objs, warnings, err := list.ToSerializable()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, objs, 5)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(10, 1.0)

	rng.Reset()
	p2 := rng.UniformPoints(10, 1.0)

	assert.Equal(t, p1, p2)
}

func TestCuboidCorners(t *testing.T) {
	center := geometry.Point{1, 2, 3}
	corners := CuboidCorners(center, [3]float64{1, 0.5, 2}, math.Pi/6)
	require.Len(t, corners, 8)

	// Rotation preserves the centroid and corner distances.
	centroid := geometry.NewPointCloud(corners).Centroid()
	for j := range 3 {
		assert.InDelta(t, center[j], centroid[j], 1e-12)
	}
	want := math.Sqrt(1 + 0.25 + 4)
	for _, c := range corners {
		assert.InDelta(t, want, c.Sub(center).Norm(), 1e-12)
	}
}
