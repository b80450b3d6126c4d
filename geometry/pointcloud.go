package geometry

import "slices"

// PointCloud is an ordered set of points with optional per-point colors.
// A cloud either has no colors at all or exactly one color per point.
type PointCloud struct {
	points []Point
	colors []Color
}

// NewPointCloud builds a cloud from a copy of points.
func NewPointCloud(points []Point) *PointCloud {
	return &PointCloud{points: slices.Clone(points)}
}

// Len returns the number of points.
func (c *PointCloud) Len() int {
	return len(c.points)
}

// Points returns the backing point slice. Mutations are visible to the
// cloud and to every holder of the same handle.
func (c *PointCloud) Points() []Point {
	return c.points
}

// Colors returns the backing color slice, nil when the cloud is uncolored.
func (c *PointCloud) Colors() []Color {
	return c.colors
}

// HasColors reports whether per-point colors are present.
func (c *PointCloud) HasColors() bool {
	return len(c.colors) > 0
}

// SetColors replaces the per-point colors with a copy of colors. The slice
// must contain exactly one color per point.
func (c *PointCloud) SetColors(colors []Color) error {
	if len(colors) != len(c.points) {
		return ErrColorCount
	}
	c.colors = slices.Clone(colors)
	return nil
}

// PaintUniformColor assigns col to every point, allocating the color slice
// when the cloud was uncolored.
func (c *PointCloud) PaintUniformColor(col Color) {
	if len(c.colors) != len(c.points) {
		c.colors = make([]Color, len(c.points))
	}
	for i := range c.colors {
		c.colors[i] = col
	}
}

// Centroid returns the mean position of the cloud's points. The zero Point
// is returned for an empty cloud.
func (c *PointCloud) Centroid() Point {
	if len(c.points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range c.points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(c.points)))
}

// Clone returns a deep copy of the cloud.
func (c *PointCloud) Clone() *PointCloud {
	return &PointCloud{
		points: slices.Clone(c.points),
		colors: slices.Clone(c.colors),
	}
}
