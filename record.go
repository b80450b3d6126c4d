package objectmap

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap/geometry"
)

// Canonical field names of an ObjectRecord. They double as the keys used by
// columnar extraction and, for the plain-data fields, as wire keys of the
// serialized form.
const (
	FieldCloud      = "pcd"
	FieldBound      = "bbox"
	FieldDescriptor = "descriptor"
	FieldClassID    = "class_id"
	FieldID         = "id"
	FieldInstColor  = "inst_color"
)

// Wire keys of the geometry projections in the serialized form. They never
// appear on a live record.
const (
	WireKeyPoints      = "pcd_np"
	WireKeyCorners     = "bbox_np"
	WireKeyPointColors = "pcd_color_np"
)

// ObjectRecord is one object hypothesis in a scene: its point cloud, its
// oriented bound, a descriptor vector, accumulated class votes, the set of
// observations that contributed to it, and an optional fixed instance
// color. Extra carries caller-defined metadata that rides along through
// copies and serialization.
//
// A nil core field means the field is absent; columnar operations that
// touch an absent field fail with ErrFieldNotFound.
type ObjectRecord struct {
	Cloud      *geometry.PointCloud
	Bound      *geometry.OrientedBox
	Descriptor *mat.VecDense
	ClassVotes []int
	IDs        *ObservationSet
	InstColor  *geometry.Color
	Extra      map[string]any
}

// Field resolves a canonical field name to its value, falling back to the
// Extra mapping for unknown keys. Geometry fields return the live handle,
// the same one every copy-free view of the record shares.
func (r *ObjectRecord) Field(key string) (any, error) {
	switch key {
	case FieldCloud:
		if r.Cloud == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return r.Cloud, nil
	case FieldBound:
		if r.Bound == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return r.Bound, nil
	case FieldDescriptor:
		if r.Descriptor == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return r.Descriptor, nil
	case FieldClassID:
		if r.ClassVotes == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return r.ClassVotes, nil
	case FieldID:
		if r.IDs == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return r.IDs, nil
	case FieldInstColor:
		if r.InstColor == nil {
			return nil, &ErrFieldNotFound{Key: key}
		}
		return *r.InstColor, nil
	default:
		if v, ok := r.Extra[key]; ok {
			return v, nil
		}
		return nil, &ErrFieldNotFound{Key: key}
	}
}

// SetExtra stores a caller-defined field, allocating the Extra mapping on
// first use.
func (r *ObjectRecord) SetExtra(key string, value any) {
	if r.Extra == nil {
		r.Extra = make(map[string]any)
	}
	r.Extra[key] = value
}

// Clone returns a deep copy of the record. Geometry handles, the
// descriptor, the observation set and the Extra mapping are all duplicated
// so the copy shares no mutable state with the original.
func (r *ObjectRecord) Clone() *ObjectRecord {
	out := &ObjectRecord{
		ClassVotes: slices.Clone(r.ClassVotes),
	}
	if r.Cloud != nil {
		out.Cloud = r.Cloud.Clone()
	}
	if r.Bound != nil {
		out.Bound = r.Bound.Clone()
	}
	if r.Descriptor != nil {
		out.Descriptor = mat.VecDenseCopyOf(r.Descriptor)
	}
	if r.IDs != nil {
		out.IDs = r.IDs.Clone()
	}
	if r.InstColor != nil {
		c := *r.InstColor
		out.InstColor = &c
	}
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = cloneExtraValue(v)
		}
	}
	return out
}

// cloneExtraValue deep-copies the plain-data shapes Extra is expected to
// hold. Unknown types are copied by value semantics.
func cloneExtraValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneExtraValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneExtraValue(e)
		}
		return out
	case []float64:
		return slices.Clone(x)
	case []int:
		return slices.Clone(x)
	case []string:
		return slices.Clone(x)
	case [][]float64:
		out := make([][]float64, len(x))
		for i, row := range x {
			out[i] = slices.Clone(row)
		}
		return out
	default:
		return v
	}
}
