package objectmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wingrune/objectmap/geometry"
	"github.com/wingrune/objectmap/palette"
)

func TestDetectionList_AppendAt(t *testing.T) {
	l := NewDetectionList()
	assert.Equal(t, 0, l.Len())

	r := newTestRecord(0)
	l.Append(r)
	require.Equal(t, 1, l.Len())
	assert.Same(t, r, l.At(0))
	assert.Panics(t, func() { l.At(1) })
}

func TestDetectionList_Values(t *testing.T) {
	l := newTestList(3)

	vals, err := l.Values(FieldCloud)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	for i, v := range vals {
		// Geometry comes back as a live handle, not a copy.
		assert.Same(t, l.At(i).Cloud, v)
	}

	votes, err := l.Values(FieldClassID)
	require.NoError(t, err)
	assert.Equal(t, []any{[]int{0, 0, 1}, []int{1, 1, 2}, []int{2, 2, 0}}, votes)
}

func TestDetectionList_ValuesMissingField(t *testing.T) {
	l := newTestList(3)
	l.At(1).Descriptor = nil

	_, err := l.Values(FieldDescriptor)
	var fnf *ErrFieldNotFound
	require.ErrorAs(t, err, &fnf)
	assert.Equal(t, FieldDescriptor, fnf.Key)
	assert.Contains(t, err.Error(), "record 1")
}

func TestDetectionList_ValuesAt(t *testing.T) {
	l := newTestList(3)

	elems, err := l.ValuesAt(FieldDescriptor, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 1.0, 2.0}, elems)

	elems, err = l.ValuesAt(FieldClassID, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 0}, elems)

	_, err = l.ValuesAt(FieldDescriptor, 7)
	var oor *ErrIndexOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 7, oor.Index)
	assert.Equal(t, 3, oor.Length)

	l.At(0).SetExtra("confidence", 0.75)
	_, err = l.ValuesAt("confidence", 0)
	var ni *ErrNotIndexable
	assert.ErrorAs(t, err, &ni)
}

func TestDetectionList_StackedValues(t *testing.T) {
	l := newTestList(3)

	m, err := l.StackedValues(FieldDescriptor)
	require.NoError(t, err)
	want := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 1, 0,
		2, 1, 0,
	})
	assert.True(t, mat.Equal(want, m))

	// Raw agrees with the dense form element for element.
	rows, err := l.StackedValuesRaw(FieldDescriptor)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Len(t, row, 3)
		for j, v := range row {
			assert.Equal(t, m.At(i, j), v)
		}
	}
}

func TestDetectionList_StackedValuesBound(t *testing.T) {
	l := newTestList(2)

	m, err := l.StackedValues(FieldBound)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 24, c)

	// Row i flattens the corner points of record i's bound.
	corners := l.At(0).Bound.CornerPoints()
	for j, p := range corners {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, p[k], m.At(0, 3*j+k), 1e-12)
		}
	}
}

func TestDetectionList_StackedValuesErrors(t *testing.T) {
	_, err := NewDetectionList().StackedValues(FieldDescriptor)
	assert.ErrorIs(t, err, ErrEmptyCollection)

	l := newTestList(3)
	l.At(2).Descriptor = mat.NewVecDense(2, []float64{1, 2})
	_, err = l.StackedValues(FieldDescriptor)
	var sm *ErrShapeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 3, sm.Expected)
	assert.Equal(t, 2, sm.Actual)

	l = newTestList(2)
	l.At(0).SetExtra("label", "chair")
	l.At(1).SetExtra("label", "table")
	_, err = l.StackedValues("label")
	var ns *ErrNotStackable
	assert.ErrorAs(t, err, &ns)
}

func TestDetectionList_StackedValuesAt(t *testing.T) {
	l := newTestList(3)

	m, err := l.StackedValuesAt(FieldDescriptor, 0)
	require.NoError(t, err)
	want := mat.NewDense(3, 1, []float64{0, 1, 2})
	assert.True(t, mat.Equal(want, m))
}

func TestDetectionList_SliceByIndices(t *testing.T) {
	l := newTestList(3)

	sub, err := l.SliceByIndices([]int{2, 0, 2})
	require.NoError(t, err)
	require.Equal(t, 3, sub.Len())
	assert.Same(t, l.At(2), sub.At(0))
	assert.Same(t, l.At(0), sub.At(1))
	assert.Same(t, l.At(2), sub.At(2))

	sub, err = l.SliceByIndices(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Len())

	for _, indices := range [][]int{{0, 3}, {-1}} {
		sub, err = l.SliceByIndices(indices)
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Nil(t, sub)
	}
}

func TestDetectionList_SliceByMask(t *testing.T) {
	l := newTestList(3)

	sub, err := l.SliceByMask([]bool{true, false, true})
	require.NoError(t, err)
	require.Equal(t, 2, sub.Len())
	assert.Same(t, l.At(0), sub.At(0))
	assert.Same(t, l.At(2), sub.At(1))

	_, err = l.SliceByMask([]bool{true})
	var mm *ErrMaskLengthMismatch
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, 3, mm.Expected)
	assert.Equal(t, 1, mm.Actual)
}

func TestDetectionList_ConcatenatedCopy(t *testing.T) {
	a := newTestList(2)
	b := newTestList(1)

	out := a.ConcatenatedCopy(b)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, 2, a.Len())

	// Left side is deep: mutating the result leaves a untouched.
	out.At(0).Cloud.Points()[0] = geometry.Point{99, 99, 99}
	assert.NotEqual(t, geometry.Point{99, 99, 99}, a.At(0).Cloud.Points()[0])

	// Right side is shared by reference.
	assert.Same(t, b.At(0), out.At(2))

	out = a.ConcatenatedCopy(nil)
	assert.Equal(t, 2, out.Len())
}

func TestDetectionList_ExtendInPlace(t *testing.T) {
	a := newTestList(2)
	b := newTestList(1)

	a.ExtendInPlace(b)
	require.Equal(t, 3, a.Len())
	assert.Same(t, b.At(0), a.At(2))

	a.ExtendInPlace(nil)
	assert.Equal(t, 3, a.Len())
}

func TestDetectionList_ExtendInPlaceSelf(t *testing.T) {
	l := newTestList(2)
	l.ExtendInPlace(l)

	require.Equal(t, 4, l.Len())
	assert.Same(t, l.At(0), l.At(2))
	assert.Same(t, l.At(1), l.At(3))
}

func TestDetectionList_Clone(t *testing.T) {
	l := newTestList(2)
	cp := l.Clone()

	require.Equal(t, 2, cp.Len())
	assert.NotSame(t, l.At(0), cp.At(0))

	l.At(0).Cloud.Points()[0] = geometry.Point{99, 99, 99}
	assert.NotEqual(t, geometry.Point{99, 99, 99}, cp.At(0).Cloud.Points()[0])
}

func TestDetectionList_MostCommonClasses(t *testing.T) {
	l := newTestList(3)
	classes, err := l.MostCommonClasses()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, classes)
}

func TestDetectionList_MostCommonClassesTies(t *testing.T) {
	tests := []struct {
		name  string
		votes []int
		want  int
	}{
		{"single", []int{5}, 5},
		{"majority", []int{3, 1, 3}, 3},
		{"tie picks smallest", []int{2, 1, 2, 1}, 1},
		{"all distinct picks smallest", []int{9, 4, 7}, 4},
		{"negative values", []int{-1, -1, 0}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewDetectionList()
			l.Append(&ObjectRecord{ClassVotes: tt.votes})

			classes, err := l.MostCommonClasses()
			require.NoError(t, err)
			assert.Equal(t, []int{tt.want}, classes)
		})
	}
}

func TestDetectionList_MostCommonClassesNoVotes(t *testing.T) {
	l := newTestList(2)
	l.At(1).ClassVotes = nil

	_, err := l.MostCommonClasses()
	assert.ErrorIs(t, err, ErrNoClassVotes)
	assert.Contains(t, err.Error(), "record 1")
}

func TestDetectionList_ColorByMostCommonClass(t *testing.T) {
	l := newTestList(3)
	pal := palette.ByClass{
		"0": {1, 0, 0},
		"1": {0, 1, 0},
		"2": {0, 0, 1},
	}

	require.NoError(t, l.ColorByMostCommonClass(pal))

	assert.Equal(t, geometry.Color{1, 0, 0}, l.At(0).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{0, 1, 0}, l.At(1).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{0, 0, 1}, l.At(2).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{0, 1, 0}, l.At(1).Bound.Color)
}

func TestDetectionList_ColorByMostCommonClassSkipBounds(t *testing.T) {
	l := newTestList(1)
	l.At(0).Bound.Color = geometry.Color{0.3, 0.3, 0.3}
	pal := palette.ByClass{"0": {1, 0, 0}}

	err := l.ColorByMostCommonClass(pal, func(o *ColorOptions) { o.PaintBounds = false })
	require.NoError(t, err)

	assert.Equal(t, geometry.Color{1, 0, 0}, l.At(0).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{0.3, 0.3, 0.3}, l.At(0).Bound.Color)
}

func TestDetectionList_ColorByMostCommonClassMissingColor(t *testing.T) {
	l := newTestList(3)
	before := l.At(0).Cloud.Colors()[0]
	pal := palette.ByClass{"0": {1, 0, 0}, "1": {0, 1, 0}}

	err := l.ColorByMostCommonClass(pal)
	var mc *ErrClassColorMissing
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, 2, mc.Class)

	// Nothing was painted.
	assert.Equal(t, before, l.At(0).Cloud.Colors()[0])
}

func TestDetectionList_ColorByMostCommonClassMissingCloud(t *testing.T) {
	l := newTestList(3)
	before := l.At(0).Cloud.Colors()[0]
	l.At(1).Cloud = nil
	pal := palette.ByClass{"0": {1, 0, 0}, "1": {0, 1, 0}, "2": {0, 0, 1}}

	err := l.ColorByMostCommonClass(pal)
	var fnf *ErrFieldNotFound
	require.ErrorAs(t, err, &fnf)
	assert.Equal(t, FieldCloud, fnf.Key)
	assert.Equal(t, before, l.At(0).Cloud.Colors()[0])
}

func TestDetectionList_ColorByInstanceStored(t *testing.T) {
	l := newTestList(2)
	l.At(0).InstColor = &geometry.Color{1, 0, 0}
	l.At(1).InstColor = &geometry.Color{0, 0, 1}

	require.NoError(t, l.ColorByInstance())

	assert.Equal(t, geometry.Color{1, 0, 0}, l.At(0).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{0, 0, 1}, l.At(1).Cloud.Colors()[0])
	assert.Equal(t, geometry.Color{1, 0, 0}, l.At(0).Bound.Color)
	assert.Equal(t, geometry.Color{0, 0, 1}, l.At(1).Bound.Color)
}

func TestDetectionList_ColorByInstanceStoredIncomplete(t *testing.T) {
	l := newTestList(2)
	l.At(0).InstColor = &geometry.Color{1, 0, 0}
	before := l.At(0).Cloud.Colors()[0]

	err := l.ColorByInstance()
	var fnf *ErrFieldNotFound
	require.ErrorAs(t, err, &fnf)
	assert.Equal(t, FieldInstColor, fnf.Key)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, before, l.At(0).Cloud.Colors()[0])
}

func TestDetectionList_ColorByInstanceGenerated(t *testing.T) {
	l := newTestList(3)
	require.NoError(t, l.ColorByInstance())

	seen := map[geometry.Color]bool{}
	for i, r := range l.Records() {
		c := r.Cloud.Colors()[0]
		assert.False(t, seen[c], "record %d repeats a color", i)
		seen[c] = true
		assert.Equal(t, c, r.Bound.Color)
		// Generated colors are not written back to the records.
		assert.Nil(t, r.InstColor)
	}
}

func TestDetectionList_ColorByInstanceEmpty(t *testing.T) {
	assert.NoError(t, NewDetectionList().ColorByInstance())
}

func TestDetectionList_FilterByClass(t *testing.T) {
	l := newTestList(5) // majority classes 0, 1, 2, 0, 1

	sub, err := l.FilterByClass(0)
	require.NoError(t, err)
	require.Equal(t, 2, sub.Len())
	assert.Same(t, l.At(0), sub.At(0))
	assert.Same(t, l.At(3), sub.At(1))

	sub, err = l.FilterByClass(7)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Len())
}

func TestDetectionList_All(t *testing.T) {
	l := newTestList(3)

	var seen []int
	for i, r := range l.All() {
		assert.Same(t, l.At(i), r)
		seen = append(seen, i)
	}
	assert.Equal(t, []int{0, 1, 2}, seen)

	seen = seen[:0]
	for i := range l.All() {
		seen = append(seen, i)
		break
	}
	assert.Equal(t, []int{0}, seen)
}
