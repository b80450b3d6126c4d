// Package geometry provides the spatial primitives an object map is built
// from: colored point clouds and oriented or axis-aligned bounding boxes.
//
// The package is deliberately small. It covers construction of a minimal
// oriented box around a set of points (a PCA fit), corner-point enumeration
// in a stable order, uniform and per-point cloud coloring, and deep copies.
// Rendering, meshing and registration live elsewhere.
//
// # Canonical box form
//
// MinimalOrientedBoxFromPoints returns boxes in a canonical form: axes are
// unit length, right-handed, ordered by descending half-extent, and sign
// fixed so the largest-magnitude component of the first two axes is
// positive. Because the form is canonical, fitting a box to the eight
// corner points of another canonical box reproduces that box, corner for
// corner, up to floating point error. Boxes with equal extents have no
// unique orientation; the fit is still deterministic for identical input.
package geometry
