// Package objectmap provides the object collections of a 3D scene
// understanding pipeline.
//
// A scene is a list of object records. Each record bundles a point cloud,
// an oriented bound, a descriptor vector, accumulated class votes, the set
// of observations that produced it, and free-form metadata. Two collection
// types build on that record:
//
//   - DetectionList holds the per-frame detections and offers columnar
//     extraction, numeric stacking, sub-selection, concatenation and
//     class/instance coloring.
//   - MapObjectList is the persistent scene map; it adds descriptor
//     similarity scoring and a lossy-aware serialization protocol.
//
// # Quick Start
//
//	m := objectmap.NewMapObjectList()
//	m.Append(&objectmap.ObjectRecord{
//	    Cloud:      cloud,
//	    Bound:      bound,
//	    Descriptor: mat.NewVecDense(3, []float64{0.2, 0.1, 0.9}),
//	    ClassVotes: []int{4, 4, 7},
//	    IDs:        objectmap.NewObservationSet(1, 2),
//	})
//
//	sims, _ := m.ComputeSimilarities([]float64{0.2, 0.1, 0.8})
//	best, _ := m.SliceByIndices([]int{argmax(sims)})
//
// # Copy Semantics
//
// Sub-selection shares record handles with its source; mutating a shared
// record is visible everywhere. The two concatenation flavors differ on
// purpose:
//
//	merged := a.ConcatenatedCopy(b) // deep copy of a, b's records shared
//	a.ExtendInPlace(b)              // a grows, b's records shared
//
// # Serialization
//
// ToSerializable and LoadSerializable move a MapObjectList through a
// geometry-free plain form. Descriptor and observation-set conversion
// failures degrade the affected record and are reported as FieldWarnings;
// structural problems fail the operation. On load, a bound's display color
// is derived from the record's first point color, matching the historical
// save format.
//
//	objs, warnings, _ := m.ToSerializable()
//	fresh := objectmap.NewMapObjectList()
//	warnings, _ = fresh.LoadSerializable(objs)
//
// The snapshot package persists the serialized form to a blob store with
// compression and a manifest pointer.
package objectmap
