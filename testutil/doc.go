// Package testutil provides testing utilities for objectmap.
//
// This package is intended for use in tests, benchmarks and examples
// only. It provides seeded generators for point clouds, descriptors,
// class votes, and whole object records.
//
// # Generating Records
//
//	rng := testutil.NewRNG(seed)
//	rec := rng.ObjectRecord(128, 16, 10) // 128 points, 16-dim descriptor, 10 classes
//	list := rng.ObjectList(20, 128, 16, 10)
//
// # Deterministic Geometry
//
//	corners := testutil.CuboidCorners(center, [3]float64{1, 0.5, 2}, math.Pi/6)
//
// Generators with the same seed produce the same data, so failures
// reproduce.
package testutil
