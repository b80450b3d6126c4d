package codec

import (
	"testing"

	"github.com/wingrune/objectmap"
	"github.com/wingrune/objectmap/geometry"
)

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func benchStoredObject() objectmap.StoredObject {
	points := make([][]float64, 256)
	colors := make([][]float64, 256)
	for i := range points {
		f := float64(i)
		points[i] = []float64{f, f * 0.5, f * 0.25}
		colors[i] = []float64{0.2, 0.4, 0.6}
	}
	corners := make([][]float64, 8)
	for i := range corners {
		f := float64(i)
		corners[i] = []float64{f, -f, f}
	}
	desc := make([]float64, 512)
	for i := range desc {
		desc[i] = float64(i) / 512
	}
	return objectmap.StoredObject{
		Descriptor:  desc,
		IDs:         []uint32{1, 5, 9, 42},
		ClassVotes:  []int{3, 3, 7},
		InstColor:   &geometry.Color{0.1, 0.2, 0.3},
		Points:      points,
		Corners:     corners,
		PointColors: colors,
		Extra: map[string]any{
			"source": "scan-12",
			"score":  0.875,
		},
	}
}

func BenchmarkCodec_Marshal_StoredObject(b *testing.B) {
	obj := benchStoredObject()

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, obj) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, obj) })
}

func BenchmarkCodec_Unmarshal_StoredObject(b *testing.B) {
	data := MustMarshal(JSON{}, benchStoredObject())

	b.Run("stdlib", func(b *testing.B) {
		var sink objectmap.StoredObject
		benchmarkCodecUnmarshal(b, JSON{}, data, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink objectmap.StoredObject
		benchmarkCodecUnmarshal(b, GoJSON{}, data, &sink)
		_ = sink
	})
}

func BenchmarkCodec_Marshal_Manifest(b *testing.B) {
	m := map[string]any{
		"id":      "0194d1f2-0c5a-7b7e-9f3a-4a1b2c3d4e5f",
		"objects": 128,
		"size":    int64(1 << 20),
		"codec":   "go-json",
	}

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, m) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, m) })
}
