package objectmap

import (
	"iter"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap/geometry"
	"github.com/wingrune/objectmap/palette"
)

// DetectionList is an ordered collection of object records. It offers
// columnar field extraction, numeric stacking, sub-selection, the two
// concatenation flavors and majority-class coloring.
//
// Sub-selection and the right operand of concatenation share record
// handles with the source; mutating a shared record is visible through
// every collection that holds it.
type DetectionList struct {
	records []*ObjectRecord
	opts    options
}

// NewDetectionList creates an empty collection.
func NewDetectionList(optFns ...Option) *DetectionList {
	return &DetectionList{opts: applyOptions(optFns)}
}

// Len returns the number of records.
func (l *DetectionList) Len() int {
	return len(l.records)
}

// At returns the record at position i. Like a slice access, it panics when
// i is out of range.
func (l *DetectionList) At(i int) *ObjectRecord {
	return l.records[i]
}

// Records returns the backing record slice. The slice is live: appending
// through the collection may reallocate it, and mutating records is
// visible to every holder.
func (l *DetectionList) Records() []*ObjectRecord {
	return l.records
}

// Append adds records to the end of the collection by reference.
func (l *DetectionList) Append(records ...*ObjectRecord) {
	l.records = append(l.records, records...)
}

// All returns an ordered iterator over position/record pairs.
func (l *DetectionList) All() iter.Seq2[int, *ObjectRecord] {
	return func(yield func(int, *ObjectRecord) bool) {
		for i, r := range l.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Values extracts the named field from every record in order. Geometry
// fields come back as live handles. A record missing the field fails the
// whole call.
func (l *DetectionList) Values(key string) ([]any, error) {
	out := make([]any, 0, len(l.records))
	for i, r := range l.records {
		v, err := r.Field(key)
		if err != nil {
			return nil, recordError(i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ValuesAt extracts element idx of the named field from every record in
// order. The field value must support element selection and idx must be in
// range for every record.
func (l *DetectionList) ValuesAt(key string, idx int) ([]any, error) {
	out := make([]any, 0, len(l.records))
	for i, r := range l.records {
		v, err := r.Field(key)
		if err != nil {
			return nil, recordError(i, err)
		}
		e, err := elementAt(key, v, idx)
		if err != nil {
			return nil, recordError(i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// StackedValues normalizes the named field of every record into a numeric
// vector and stacks the vectors into one dense matrix, one row per record.
// Bounding volumes normalize to their eight corner points. All rows must
// have the same width.
func (l *DetectionList) StackedValues(key string) (*mat.Dense, error) {
	rows, err := l.StackedValuesRaw(key)
	if err != nil {
		return nil, err
	}
	return denseFromRows(rows), nil
}

// StackedValuesAt is StackedValues applied to element idx of the field.
func (l *DetectionList) StackedValuesAt(key string, idx int) (*mat.Dense, error) {
	rows, err := l.StackedValuesRawAt(key, idx)
	if err != nil {
		return nil, err
	}
	return denseFromRows(rows), nil
}

// StackedValuesRaw returns the stacked rows in plain-slice form. It agrees
// element for element with StackedValues.
func (l *DetectionList) StackedValuesRaw(key string) ([][]float64, error) {
	return l.stackRows(key, func(v any) (any, error) { return v, nil })
}

// StackedValuesRawAt is StackedValuesRaw applied to element idx of the
// field.
func (l *DetectionList) StackedValuesRawAt(key string, idx int) ([][]float64, error) {
	return l.stackRows(key, func(v any) (any, error) { return elementAt(key, v, idx) })
}

func (l *DetectionList) stackRows(key string, pick func(any) (any, error)) ([][]float64, error) {
	if len(l.records) == 0 {
		return nil, ErrEmptyCollection
	}
	rows := make([][]float64, 0, len(l.records))
	for i, r := range l.records {
		v, err := r.Field(key)
		if err != nil {
			return nil, recordError(i, err)
		}
		if v, err = pick(v); err != nil {
			return nil, recordError(i, err)
		}
		row, err := stackValue(key, v)
		if err != nil {
			return nil, recordError(i, err)
		}
		if len(row) == 0 {
			// A width-0 matrix is not representable; empty values cannot
			// be stacked.
			return nil, recordError(i, &ErrNotStackable{Key: key, Value: v})
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, recordError(i, &ErrShapeMismatch{Key: key, Expected: len(rows[0]), Actual: len(row)})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SliceByIndices builds a new collection from the records at the given
// positions, in the given order. Positions may repeat. Records are shared
// with the receiver. Any out-of-range index fails the call with nothing
// constructed.
func (l *DetectionList) SliceByIndices(indices []int) (*DetectionList, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= len(l.records) {
			return nil, &ErrIndexOutOfRange{Index: idx, Length: len(l.records)}
		}
	}
	out := l.emptyLike()
	for _, idx := range indices {
		out.records = append(out.records, l.records[idx])
	}
	return out, nil
}

// SliceByMask builds a new collection from the records whose mask entry is
// true, preserving order. The mask must be exactly as long as the
// collection. Records are shared with the receiver.
func (l *DetectionList) SliceByMask(mask []bool) (*DetectionList, error) {
	if len(mask) != len(l.records) {
		return nil, &ErrMaskLengthMismatch{Expected: len(l.records), Actual: len(mask)}
	}
	out := l.emptyLike()
	for i, keep := range mask {
		if keep {
			out.records = append(out.records, l.records[i])
		}
	}
	return out, nil
}

// ConcatenatedCopy returns a new collection holding a deep copy of the
// receiver's records followed by other's records appended by reference.
// The receiver is untouched; a nil other is treated as empty.
func (l *DetectionList) ConcatenatedCopy(other *DetectionList) *DetectionList {
	out := l.Clone()
	if other != nil {
		out.records = append(out.records, other.records...)
	}
	return out
}

// ExtendInPlace appends other's records to the receiver by reference. A
// nil other is treated as empty.
func (l *DetectionList) ExtendInPlace(other *DetectionList) {
	if other == nil {
		return
	}
	l.records = append(l.records, other.records...)
}

// Clone returns a deep copy of the collection: every record is duplicated.
func (l *DetectionList) Clone() *DetectionList {
	out := l.emptyLike()
	for _, r := range l.records {
		out.records = append(out.records, r.Clone())
	}
	return out
}

// MostCommonClasses returns, per record, the class value with the highest
// vote count. Ties resolve to the smallest class value. A record without
// votes fails the call.
func (l *DetectionList) MostCommonClasses() ([]int, error) {
	out := make([]int, 0, len(l.records))
	for i, r := range l.records {
		c, err := mostCommonClass(r.ClassVotes)
		if err != nil {
			return nil, recordError(i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ColorOptions configures the coloring operations.
type ColorOptions struct {
	// PaintBounds also sets the display color of each record's bound.
	PaintBounds bool
}

// ColorByMostCommonClass paints every record's point cloud uniformly with
// the palette color of its majority class, and by default also colors the
// bound. The palette must cover every majority class and every record must
// carry a cloud (and a bound when bounds are painted); nothing is painted
// when any record fails these checks.
func (l *DetectionList) ColorByMostCommonClass(pal palette.ByClass, optFns ...func(*ColorOptions)) error {
	opts := ColorOptions{PaintBounds: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	classes, err := l.MostCommonClasses()
	if err != nil {
		return err
	}
	colors := make([]geometry.Color, len(classes))
	for i, class := range classes {
		c, ok := pal.ForClass(class)
		if !ok {
			return recordError(i, &ErrClassColorMissing{Class: class})
		}
		colors[i] = c
	}
	return l.paint(colors, opts.PaintBounds)
}

// ColorByInstance paints every record with a per-instance color. When the
// first record carries an instance color, each record's own instance color
// is used and a later record without one fails the call. Otherwise a
// deterministic evenly spaced palette is assigned by position; the
// generated colors are not written back to the records. Bounds are always
// colored alongside the clouds. An empty collection is a no-op.
func (l *DetectionList) ColorByInstance() error {
	if len(l.records) == 0 {
		return nil
	}

	var colors []geometry.Color
	if l.records[0].InstColor != nil {
		colors = make([]geometry.Color, len(l.records))
		for i, r := range l.records {
			if r.InstColor == nil {
				return recordError(i, &ErrFieldNotFound{Key: FieldInstColor})
			}
			colors[i] = *r.InstColor
		}
	} else {
		colors = palette.EvenlySpaced(len(l.records))
	}
	return l.paint(colors, true)
}

// FilterByClass returns a new collection holding the records whose
// majority class equals class. Records are shared with the receiver.
func (l *DetectionList) FilterByClass(class int) (*DetectionList, error) {
	classes, err := l.MostCommonClasses()
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(classes))
	for i, c := range classes {
		mask[i] = c == class
	}
	return l.SliceByMask(mask)
}

// paint applies one color per record, validating geometry presence for the
// whole collection before touching anything.
func (l *DetectionList) paint(colors []geometry.Color, paintBounds bool) error {
	for i, r := range l.records {
		if r.Cloud == nil {
			return recordError(i, &ErrFieldNotFound{Key: FieldCloud})
		}
		if paintBounds && r.Bound == nil {
			return recordError(i, &ErrFieldNotFound{Key: FieldBound})
		}
	}
	for i, r := range l.records {
		r.Cloud.PaintUniformColor(colors[i])
		if paintBounds {
			r.Bound.Color = colors[i]
		}
	}
	return nil
}

func (l *DetectionList) emptyLike() *DetectionList {
	return &DetectionList{opts: l.opts}
}

func (l *DetectionList) logger() *Logger {
	if l.opts.logger == nil {
		return NoopLogger()
	}
	return l.opts.logger
}

func (l *DetectionList) metrics() MetricsCollector {
	if l.opts.metricsCollector == nil {
		return NoopMetricsCollector{}
	}
	return l.opts.metricsCollector
}

// mostCommonClass counts votes in ascending value order; only a strictly
// greater count displaces the current winner, so ties fall to the smallest
// value.
func mostCommonClass(votes []int) (int, error) {
	if len(votes) == 0 {
		return 0, ErrNoClassVotes
	}
	sorted := slices.Clone(votes)
	slices.Sort(sorted)

	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best, nil
}

// stackValue normalizes a field value into a flat float64 vector.
func stackValue(key string, v any) ([]float64, error) {
	switch x := v.(type) {
	case geometry.Box:
		corners := x.CornerPoints()
		row := make([]float64, 0, len(corners)*3)
		for _, c := range corners {
			row = append(row, c[0], c[1], c[2])
		}
		return row, nil
	case mat.Vector:
		row := make([]float64, x.Len())
		for i := range row {
			row[i] = x.AtVec(i)
		}
		return row, nil
	case []float64:
		return slices.Clone(x), nil
	case []float32:
		return convertRow(x), nil
	case []int:
		return convertRow(x), nil
	case []int64:
		return convertRow(x), nil
	case []uint32:
		return convertRow(x), nil
	case geometry.Point:
		return []float64{x[0], x[1], x[2]}, nil
	case geometry.Color:
		return []float64{x[0], x[1], x[2]}, nil
	case []geometry.Point:
		row := make([]float64, 0, len(x)*3)
		for _, p := range x {
			row = append(row, p[0], p[1], p[2])
		}
		return row, nil
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	case int:
		return []float64{float64(x)}, nil
	case int64:
		return []float64{float64(x)}, nil
	case uint32:
		return []float64{float64(x)}, nil
	default:
		return nil, &ErrNotStackable{Key: key, Value: v}
	}
}

func convertRow[T float32 | int | int64 | uint32](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// elementAt selects element idx from a field value. Vectors index by
// coordinate; slices and arrays index natively.
func elementAt(key string, v any, idx int) (any, error) {
	if vec, ok := v.(mat.Vector); ok {
		if idx < 0 || idx >= vec.Len() {
			return nil, &ErrIndexOutOfRange{Index: idx, Length: vec.Len()}
		}
		return vec.AtVec(idx), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 || idx >= rv.Len() {
			return nil, &ErrIndexOutOfRange{Index: idx, Length: rv.Len()}
		}
		return rv.Index(idx).Interface(), nil
	default:
		return nil, &ErrNotIndexable{Key: key, Value: v}
	}
}

// denseFromRows stacks equal-width rows into a dense matrix. stackRows
// guarantees at least one row and a positive width.
func denseFromRows(rows [][]float64) *mat.Dense {
	w := len(rows[0])
	flat := make([]float64, 0, len(rows)*w)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return mat.NewDense(len(rows), w, flat)
}
