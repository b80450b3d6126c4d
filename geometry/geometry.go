package geometry

import (
	"errors"
	"math"
)

var (
	// ErrNoPoints is returned when a fit or construction needs at least one
	// point and got none.
	ErrNoPoints = errors.New("geometry: no points")

	// ErrColorCount is returned when a color slice does not line up with the
	// points it should color.
	ErrColorCount = errors.New("geometry: color count does not match point count")
)

// Point is a position in 3D space.
type Point [3]float64

// Color is an RGB triple. Components are conventionally in [0, 1].
type Color [3]float64

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p[0] * s, p[1] * s, p[2] * s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p[0]*q[0] + p[1]*q[1] + p[2]*q[2]
}

// Cross returns the cross product p x q.
func (p Point) Cross(q Point) Point {
	return Point{
		p[1]*q[2] - p[2]*q[1],
		p[2]*q[0] - p[0]*q[2],
		p[0]*q[1] - p[1]*q[0],
	}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}
