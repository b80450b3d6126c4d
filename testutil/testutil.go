package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap"
	"github.com/wingrune/objectmap/geometry"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates points uniformly distributed in the cube
// [-scale, scale) on each axis.
func (r *RNG) UniformPoints(num int, scale float64) []geometry.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]geometry.Point, num)
	for i := range num {
		for j := range 3 {
			points[i][j] = (r.rand.Float64()*2 - 1) * scale
		}
	}
	return points
}

// ClusteredPoints generates points scattered around a random center with
// Gaussian noise of the given spread. This approximates the point cloud
// of a single segmented object.
func (r *RNG) ClusteredPoints(num int, spread float64) []geometry.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	var center geometry.Point
	for j := range 3 {
		center[j] = (r.rand.Float64()*2 - 1) * 5
	}

	points := make([]geometry.Point, num)
	for i := range num {
		for j := range 3 {
			points[i][j] = center[j] + r.rand.NormFloat64()*spread
		}
	}
	return points
}

// Colors generates num random display colors with channels in [0, 1).
func (r *RNG) Colors(num int) []geometry.Color {
	r.mu.Lock()
	defer r.mu.Unlock()

	colors := make([]geometry.Color, num)
	for i := range num {
		for j := range 3 {
			colors[i][j] = r.rand.Float64()
		}
	}
	return colors
}

// UnitDescriptor generates an L2-normalized descriptor of the given
// dimensionality. Gaussian sampling gives a uniform direction on the
// hypersphere.
func (r *RNG) UnitDescriptor(dim int) *mat.VecDense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, dim)
	var norm float64
	for j := range data {
		v := r.rand.NormFloat64()
		data[j] = v
		norm += v * v
	}
	if norm == 0 {
		norm = 1 // Avoid division by zero, though unlikely with floats
	}

	invNorm := 1.0 / math.Sqrt(norm)
	for j := range data {
		data[j] *= invNorm
	}
	return mat.NewVecDense(dim, data)
}

// ClassVotes generates count votes drawn from a Zipfian distribution over
// [0, classes). Real detectors vote this way: a few classes dominate and
// the rest form a long tail.
func (r *RNG) ClassVotes(count, classes int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	votes := make([]int, count)
	for i := range count {
		votes[i] = r.zipfLocked(classes, s)
	}
	return votes
}

// zipfLocked returns a Zipfian-distributed value in [0, n) using inverse
// transform sampling. P(k) is proportional to 1/k^s. Caller must hold the
// lock.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// ObservationIDs generates a set of count distinct observation ids drawn
// from [0, maxID).
func (r *RNG) ObservationIDs(count int, maxID uint32) *objectmap.ObservationSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := objectmap.NewObservationSet()
	for set.Len() < count {
		set.Add(uint32(r.rand.Intn(int(maxID))))
	}
	return set
}

// ObjectRecord generates a fully populated record: a clustered, colored
// point cloud, a bound fit to it, a unit descriptor, Zipfian class votes
// and a set of observation ids.
func (r *RNG) ObjectRecord(points, dim, classes int) *objectmap.ObjectRecord {
	if points < 1 {
		points = 1
	}

	cloud := geometry.NewPointCloud(r.ClusteredPoints(points, 0.2))
	if err := cloud.SetColors(r.Colors(points)); err != nil {
		panic(err)
	}
	bound, err := geometry.MinimalOrientedBoxFromPoints(cloud.Points())
	if err != nil {
		panic(err)
	}

	return &objectmap.ObjectRecord{
		Cloud:      cloud,
		Bound:      bound,
		Descriptor: r.UnitDescriptor(dim),
		ClassVotes: r.ClassVotes(5, classes, 1.5),
		IDs:        r.ObservationIDs(3, 100),
	}
}

// ObjectList generates a collection of num generated records.
func (r *RNG) ObjectList(num, pointsPer, dim, classes int) *objectmap.MapObjectList {
	list := objectmap.NewMapObjectList()
	for range num {
		list.Append(r.ObjectRecord(pointsPer, dim, classes))
	}
	return list
}

// CuboidCorners returns the eight corners of a cuboid with the given half
// extents, rotated by yaw around the z axis and translated to center.
// Deterministic input for bound fitting tests.
func CuboidCorners(center geometry.Point, halfExtents [3]float64, yaw float64) []geometry.Point {
	cos, sin := math.Cos(yaw), math.Sin(yaw)

	corners := make([]geometry.Point, 0, 8)
	for i := range 8 {
		var local geometry.Point
		for k := range 3 {
			s := -1.0
			if i&(1<<k) != 0 {
				s = 1.0
			}
			local[k] = s * halfExtents[k]
		}
		rotated := geometry.Point{
			local[0]*cos - local[1]*sin,
			local[0]*sin + local[1]*cos,
			local[2],
		}
		corners = append(corners, rotated.Add(center))
	}
	return corners
}
