package objectmap

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap/geometry"
)

// MapObjectList is the persistent scene map: a DetectionList that can also
// score descriptor similarity against a query and move through the
// serialized form. Sub-selection and concatenation return MapObjectLists.
type MapObjectList struct {
	DetectionList
}

// NewMapObjectList creates an empty map object list.
func NewMapObjectList(optFns ...Option) *MapObjectList {
	return &MapObjectList{DetectionList: *NewDetectionList(optFns...)}
}

// SliceByIndices builds a new map object list from the records at the
// given positions. See DetectionList.SliceByIndices.
func (m *MapObjectList) SliceByIndices(indices []int) (*MapObjectList, error) {
	l, err := m.DetectionList.SliceByIndices(indices)
	if err != nil {
		return nil, err
	}
	return &MapObjectList{DetectionList: *l}, nil
}

// SliceByMask builds a new map object list from the records selected by
// mask. See DetectionList.SliceByMask.
func (m *MapObjectList) SliceByMask(mask []bool) (*MapObjectList, error) {
	l, err := m.DetectionList.SliceByMask(mask)
	if err != nil {
		return nil, err
	}
	return &MapObjectList{DetectionList: *l}, nil
}

// ConcatenatedCopy returns a new map object list holding a deep copy of
// the receiver's records followed by other's records appended by
// reference. A nil other is treated as empty.
func (m *MapObjectList) ConcatenatedCopy(other *MapObjectList) *MapObjectList {
	var tail *DetectionList
	if other != nil {
		tail = &other.DetectionList
	}
	return &MapObjectList{DetectionList: *m.DetectionList.ConcatenatedCopy(tail)}
}

// ExtendInPlace appends other's records to the receiver by reference.
func (m *MapObjectList) ExtendInPlace(other *MapObjectList) {
	if other == nil {
		return
	}
	m.DetectionList.ExtendInPlace(&other.DetectionList)
}

// Clone returns a deep copy of the map object list.
func (m *MapObjectList) Clone() *MapObjectList {
	return &MapObjectList{DetectionList: *m.DetectionList.Clone()}
}

// FilterByClass returns a new map object list holding the records whose
// majority class equals class.
func (m *MapObjectList) FilterByClass(class int) (*MapObjectList, error) {
	l, err := m.DetectionList.FilterByClass(class)
	if err != nil {
		return nil, err
	}
	return &MapObjectList{DetectionList: *l}, nil
}

// ComputeSimilarities returns the cosine similarity of query against every
// record's descriptor, in record order. A zero-norm query or descriptor
// scores 0. An empty collection returns an empty slice. Every record must
// carry a descriptor, all descriptors must share one length, and the query
// must match it.
func (m *MapObjectList) ComputeSimilarities(query []float64) ([]float64, error) {
	start := time.Now()
	sims, err := m.similarities(query)
	m.metrics().RecordSimilarities(m.Len(), time.Since(start), err)
	m.logger().LogSimilarities(m.Len(), err)
	return sims, err
}

func (m *MapObjectList) similarities(query []float64) ([]float64, error) {
	if m.Len() == 0 {
		return []float64{}, nil
	}

	dim := 0
	for i, r := range m.records {
		if r.Descriptor == nil || r.Descriptor.Len() == 0 {
			return nil, recordError(i, &ErrFieldNotFound{Key: FieldDescriptor})
		}
		if dim == 0 {
			dim = r.Descriptor.Len()
		} else if r.Descriptor.Len() != dim {
			return nil, recordError(i, &ErrShapeMismatch{Key: FieldDescriptor, Expected: dim, Actual: r.Descriptor.Len()})
		}
	}
	if len(query) != dim {
		return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(query)}
	}

	qv := mat.NewVecDense(dim, slices.Clone(query))
	qn := mat.Norm(qv, 2)

	out := make([]float64, 0, m.Len())
	for _, r := range m.records {
		dn := mat.Norm(r.Descriptor, 2)
		if qn == 0 || dn == 0 {
			out = append(out, 0)
			continue
		}
		s := mat.Dot(qv, r.Descriptor) / (qn * dn)
		out = append(out, math.Max(-1, math.Min(1, s)))
	}
	return out, nil
}

// ToSerializable projects the collection into its serialized form, one
// StoredObject per record. Geometry handles are replaced by plain point,
// corner and color arrays; descriptors and observation sets convert to
// plain slices. A record whose descriptor or observation set cannot be
// converted degrades to a StoredObject without that field, reported as a
// FieldWarning. A record without a cloud or bound fails the whole call.
//
// The receiver is not modified.
func (m *MapObjectList) ToSerializable() ([]StoredObject, []FieldWarning, error) {
	start := time.Now()
	objs, warnings, err := m.toSerializable()
	m.metrics().RecordSerialize(m.Len(), len(warnings), time.Since(start), err)
	m.logger().LogSerialize(m.Len(), len(warnings), err)
	return objs, warnings, err
}

func (m *MapObjectList) toSerializable() ([]StoredObject, []FieldWarning, error) {
	objs := make([]StoredObject, 0, m.Len())
	var warnings []FieldWarning

	warn := func(i int, field string) {
		w := FieldWarning{Record: i, Field: field, Err: &ErrFieldNotFound{Key: field}}
		warnings = append(warnings, w)
		m.logger().LogFieldWarning("serialize", w)
	}

	for i, r := range m.records {
		if r.Cloud == nil {
			return nil, warnings, recordError(i, &ErrFieldNotFound{Key: FieldCloud})
		}
		if r.Bound == nil {
			return nil, warnings, recordError(i, &ErrFieldNotFound{Key: FieldBound})
		}

		obj := StoredObject{
			ClassVotes:  slices.Clone(r.ClassVotes),
			Points:      pointsToRows(r.Cloud.Points()),
			Corners:     cornersToRows(r.Bound.CornerPoints()),
			PointColors: colorsToRows(r.Cloud.Colors()),
		}
		if r.InstColor != nil {
			c := *r.InstColor
			obj.InstColor = &c
		}
		if r.Extra != nil {
			obj.Extra = make(map[string]any, len(r.Extra))
			for k, v := range r.Extra {
				obj.Extra[k] = cloneExtraValue(v)
			}
		}

		if r.Descriptor == nil || r.Descriptor.Len() == 0 {
			warn(i, FieldDescriptor)
		} else {
			obj.Descriptor = vecToSlice(r.Descriptor)
		}
		if r.IDs == nil {
			warn(i, FieldID)
		} else {
			obj.IDs = r.IDs.Values()
		}

		objs = append(objs, obj)
	}
	return objs, warnings, nil
}

// LoadSerializable rebuilds records from their serialized form and appends
// them to the collection, which must be empty. Point clouds are restored
// from the stored point and color arrays; the bound is refit to the stored
// corner points and its display color set to the first point color. A
// missing descriptor or observation set degrades with a FieldWarning;
// structural problems (malformed arrays, no point colors, a non-empty
// target) fail the call and leave the collection untouched.
func (m *MapObjectList) LoadSerializable(objs []StoredObject) ([]FieldWarning, error) {
	start := time.Now()
	warnings, err := m.loadSerializable(objs)
	m.metrics().RecordLoad(len(objs), len(warnings), time.Since(start), err)
	m.logger().LogLoad(len(objs), len(warnings), err)
	return warnings, err
}

func (m *MapObjectList) loadSerializable(objs []StoredObject) ([]FieldWarning, error) {
	if m.Len() != 0 {
		return nil, ErrNotEmpty
	}

	var warnings []FieldWarning
	warn := func(i int, field string) {
		w := FieldWarning{Record: i, Field: field, Err: &ErrFieldNotFound{Key: field}}
		warnings = append(warnings, w)
		m.logger().LogFieldWarning("load", w)
	}

	records := make([]*ObjectRecord, 0, len(objs))
	for i, obj := range objs {
		r := &ObjectRecord{ClassVotes: slices.Clone(obj.ClassVotes)}

		points, err := rowsToPoints(WireKeyPoints, obj.Points)
		if err != nil {
			return warnings, recordError(i, err)
		}
		r.Cloud = geometry.NewPointCloud(points)

		corners, err := rowsToPoints(WireKeyCorners, obj.Corners)
		if err != nil {
			return warnings, recordError(i, err)
		}
		bound, err := geometry.MinimalOrientedBoxFromPoints(corners)
		if err != nil {
			return warnings, recordError(i, fmt.Errorf("%s: %w", WireKeyCorners, err))
		}

		colors, err := rowsToColors(WireKeyPointColors, obj.PointColors)
		if err != nil {
			return warnings, recordError(i, err)
		}
		// The bound's display color derives from the first point color.
		// This mirrors the historical save format, which does not carry a
		// bound color of its own.
		if len(colors) == 0 {
			return warnings, recordError(i, fmt.Errorf("%s: %w", WireKeyPointColors, &ErrIndexOutOfRange{Index: 0, Length: 0}))
		}
		bound.Color = colors[0]
		r.Bound = bound
		if err := r.Cloud.SetColors(colors); err != nil {
			return warnings, recordError(i, fmt.Errorf("%s: %w", WireKeyPointColors, err))
		}

		if len(obj.Descriptor) == 0 {
			warn(i, FieldDescriptor)
		} else {
			r.Descriptor = mat.NewVecDense(len(obj.Descriptor), slices.Clone(obj.Descriptor))
		}
		if obj.IDs == nil {
			warn(i, FieldID)
		} else {
			r.IDs = NewObservationSet(obj.IDs...)
		}

		if obj.InstColor != nil {
			c := *obj.InstColor
			r.InstColor = &c
		}
		if obj.Extra != nil {
			r.Extra = make(map[string]any, len(obj.Extra))
			for k, v := range obj.Extra {
				r.Extra[k] = cloneExtraValue(v)
			}
		}

		records = append(records, r)
	}

	m.records = records
	return warnings, nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

func pointsToRows(points []geometry.Point) [][]float64 {
	rows := make([][]float64, 0, len(points))
	for _, p := range points {
		rows = append(rows, []float64{p[0], p[1], p[2]})
	}
	return rows
}

func cornersToRows(corners [8]geometry.Point) [][]float64 {
	rows := make([][]float64, 0, len(corners))
	for _, c := range corners {
		rows = append(rows, []float64{c[0], c[1], c[2]})
	}
	return rows
}

func colorsToRows(colors []geometry.Color) [][]float64 {
	rows := make([][]float64, 0, len(colors))
	for _, c := range colors {
		rows = append(rows, []float64{c[0], c[1], c[2]})
	}
	return rows
}

func rowsToPoints(key string, rows [][]float64) ([]geometry.Point, error) {
	points := make([]geometry.Point, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			return nil, &ErrShapeMismatch{Key: key, Expected: 3, Actual: len(row)}
		}
		points = append(points, geometry.Point{row[0], row[1], row[2]})
	}
	return points, nil
}

func rowsToColors(key string, rows [][]float64) ([]geometry.Color, error) {
	colors := make([]geometry.Color, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			return nil, &ErrShapeMismatch{Key: key, Expected: 3, Actual: len(row)}
		}
		colors = append(colors, geometry.Color{row[0], row[1], row[2]})
	}
	return colors, nil
}
