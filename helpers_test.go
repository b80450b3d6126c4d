package objectmap

import (
	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap/geometry"
)

// boxPoints returns the eight corners of an axis-aligned box with the given
// half extents around center. Distinct extents keep box fits unambiguous.
func boxPoints(ex, ey, ez float64, center geometry.Point) []geometry.Point {
	b := geometry.AxisAlignedBox{
		Min: geometry.Point{center[0] - ex, center[1] - ey, center[2] - ez},
		Max: geometry.Point{center[0] + ex, center[1] + ey, center[2] + ez},
	}
	corners := b.CornerPoints()
	return corners[:]
}

// newTestRecord builds a fully populated record whose fields vary with i.
func newTestRecord(i int) *ObjectRecord {
	pts := boxPoints(4, 2, 1, geometry.Point{float64(3 * i), 0, 0})
	cloud := geometry.NewPointCloud(pts)
	cloud.PaintUniformColor(geometry.Color{0.1 * float64(i%10), 0.5, 0.5})

	bound, err := geometry.MinimalOrientedBoxFromPoints(pts)
	if err != nil {
		panic(err)
	}

	return &ObjectRecord{
		Cloud:      cloud,
		Bound:      bound,
		Descriptor: mat.NewVecDense(3, []float64{float64(i), 1, 0}),
		ClassVotes: []int{i % 3, i % 3, (i + 1) % 3},
		IDs:        NewObservationSet(uint32(i), uint32(i+100)),
	}
}

// newTestList builds a DetectionList of n fully populated records.
func newTestList(n int) *DetectionList {
	l := NewDetectionList()
	for i := 0; i < n; i++ {
		l.Append(newTestRecord(i))
	}
	return l
}

// newTestMapList builds a MapObjectList of n fully populated records.
func newTestMapList(n int) *MapObjectList {
	m := NewMapObjectList()
	for i := 0; i < n; i++ {
		m.Append(newTestRecord(i))
	}
	return m
}
