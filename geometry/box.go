package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// boxEpsilon is the slack used for containment tests, absorbing the
// floating point error of projections.
const boxEpsilon = 1e-9

// Box is the interface shared by bounding volumes: anything that can
// enumerate its eight corner points in a stable order.
type Box interface {
	CornerPoints() [8]Point
}

// OrientedBox is a box with an arbitrary right-handed orientation. Axes are
// unit vectors, HalfExtents the distances from Center to the faces along
// each axis. Color is a display color and carries no geometric meaning.
type OrientedBox struct {
	Center      Point
	Axes        [3]Point
	HalfExtents [3]float64
	Color       Color
}

// MinimalOrientedBoxFromPoints fits an oriented box around points using a
// principal component analysis of the point covariance. The returned box is
// in canonical form (see the package documentation). At least one point is
// required; degenerate inputs such as a single point or a collinear set
// yield boxes with zero extents along the flat directions.
func MinimalOrientedBoxFromPoints(points []Point) (*OrientedBox, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	centroid := NewPointCloud(points).Centroid()
	n := float64(len(points))

	var cov mat.SymDense
	cov.ReuseAsSym(3)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			var s float64
			for _, p := range points {
				s += (p[i] - centroid[i]) * (p[j] - centroid[j])
			}
			cov.SetSym(i, j, s/n)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		// Symmetric 3x3 factorization does not fail in practice; fall back
		// to the world axes so the caller still gets a box.
		return axisAlignedFallback(points, centroid), nil
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back in ascending order; take the columns largest
	// variance first.
	var axes [3]Point
	for i := 0; i < 3; i++ {
		col := 2 - i
		axes[i] = Point{vecs.At(0, col), vecs.At(1, col), vecs.At(2, col)}
	}
	fixSign(&axes[0])
	fixSign(&axes[1])
	axes[2] = axes[0].Cross(axes[1])

	center, extents := projectExtents(points, centroid, axes)
	return canonicalBox(center, axes, extents), nil
}

// CornerPoints returns the eight corners. Corner i lies at
// Center + s0*h0*a0 + s1*h1*a1 + s2*h2*a2 where sk is -1 when bit k of i is
// clear and +1 when it is set.
func (b *OrientedBox) CornerPoints() [8]Point {
	var corners [8]Point
	for i := 0; i < 8; i++ {
		c := b.Center
		for k := 0; k < 3; k++ {
			s := -1.0
			if i&(1<<k) != 0 {
				s = 1.0
			}
			c = c.Add(b.Axes[k].Scale(s * b.HalfExtents[k]))
		}
		corners[i] = c
	}
	return corners
}

// CornerMatrix returns the corners as an 8x3 dense matrix, one corner per
// row, in CornerPoints order.
func (b *OrientedBox) CornerMatrix() *mat.Dense {
	corners := b.CornerPoints()
	m := mat.NewDense(8, 3, nil)
	for i, c := range corners {
		m.SetRow(i, c[:])
	}
	return m
}

// Volume returns the enclosed volume.
func (b *OrientedBox) Volume() float64 {
	return 8 * b.HalfExtents[0] * b.HalfExtents[1] * b.HalfExtents[2]
}

// Contains reports whether p lies inside the box, faces included.
func (b *OrientedBox) Contains(p Point) bool {
	d := p.Sub(b.Center)
	for k := 0; k < 3; k++ {
		if math.Abs(d.Dot(b.Axes[k])) > b.HalfExtents[k]+boxEpsilon {
			return false
		}
	}
	return true
}

// Clone returns a copy of the box.
func (b *OrientedBox) Clone() *OrientedBox {
	cp := *b
	return &cp
}

// AxisAlignedBox is a box aligned with the world axes. Color is a display
// color and carries no geometric meaning.
type AxisAlignedBox struct {
	Min, Max Point
	Color    Color
}

// AxisAlignedBoxFromPoints returns the tightest axis-aligned box around
// points. At least one point is required.
func AxisAlignedBoxFromPoints(points []Point) (*AxisAlignedBox, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	b := &AxisAlignedBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			b.Min[k] = math.Min(b.Min[k], p[k])
			b.Max[k] = math.Max(b.Max[k], p[k])
		}
	}
	return b, nil
}

// CornerPoints returns the eight corners using the same bit convention as
// OrientedBox: bit k of the corner index selects Min (clear) or Max (set)
// along axis k.
func (b *AxisAlignedBox) CornerPoints() [8]Point {
	var corners [8]Point
	for i := 0; i < 8; i++ {
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				corners[i][k] = b.Max[k]
			} else {
				corners[i][k] = b.Min[k]
			}
		}
	}
	return corners
}

// Center returns the box center.
func (b *AxisAlignedBox) Center() Point {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Volume returns the enclosed volume.
func (b *AxisAlignedBox) Volume() float64 {
	d := b.Max.Sub(b.Min)
	return d[0] * d[1] * d[2]
}

// Contains reports whether p lies inside the box, faces included.
func (b *AxisAlignedBox) Contains(p Point) bool {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k]-boxEpsilon || p[k] > b.Max[k]+boxEpsilon {
			return false
		}
	}
	return true
}

// Clone returns a copy of the box.
func (b *AxisAlignedBox) Clone() *AxisAlignedBox {
	cp := *b
	return &cp
}

// fixSign flips a so that its largest-magnitude component is positive,
// removing the sign ambiguity of eigenvectors.
func fixSign(a *Point) {
	best := 0
	for k := 1; k < 3; k++ {
		if math.Abs(a[k]) > math.Abs(a[best]) {
			best = k
		}
	}
	if a[best] < 0 {
		*a = a.Scale(-1)
	}
}

// projectExtents projects points onto axes around centroid and returns the
// box center and half extents.
func projectExtents(points []Point, centroid Point, axes [3]Point) (Point, [3]float64) {
	var lo, hi [3]float64
	for k := range lo {
		lo[k] = math.Inf(1)
		hi[k] = math.Inf(-1)
	}
	for _, p := range points {
		d := p.Sub(centroid)
		for k := 0; k < 3; k++ {
			t := d.Dot(axes[k])
			lo[k] = math.Min(lo[k], t)
			hi[k] = math.Max(hi[k], t)
		}
	}
	center := centroid
	var extents [3]float64
	for k := 0; k < 3; k++ {
		center = center.Add(axes[k].Scale((lo[k] + hi[k]) / 2))
		extents[k] = (hi[k] - lo[k]) / 2
	}
	return center, extents
}

// canonicalBox orders axes by descending half-extent, re-fixes signs and
// restores right-handedness. Reordering and flipping leave the enclosed
// point set unchanged.
func canonicalBox(center Point, axes [3]Point, extents [3]float64) *OrientedBox {
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool {
		return extents[order[i]] > extents[order[j]]
	})

	b := &OrientedBox{Center: center}
	for k := 0; k < 3; k++ {
		b.Axes[k] = axes[order[k]]
		b.HalfExtents[k] = extents[order[k]]
	}
	fixSign(&b.Axes[0])
	fixSign(&b.Axes[1])
	b.Axes[2] = b.Axes[0].Cross(b.Axes[1])
	return b
}

// axisAlignedFallback wraps points in a world-aligned oriented box.
func axisAlignedFallback(points []Point, centroid Point) *OrientedBox {
	axes := [3]Point{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	center, extents := projectExtents(points, centroid, axes)
	return canonicalBox(center, axes, extents)
}
