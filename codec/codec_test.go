package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingrune/objectmap/codec"
)

type payload struct {
	Name  string    `json:"name"`
	Score []float64 `json:"score"`
}

func TestCodec_RoundTrip(t *testing.T) {
	in := payload{Name: "chair", Score: []float64{0.25, 0.5, 0.125}}

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestByName(t *testing.T) {
	c, ok := codec.ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = codec.ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = codec.ByName("msgpack")
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	// The default must stay resolvable by name, or snapshot headers written
	// with it could not be read back.
	c, ok := codec.ByName(codec.Default.Name())
	require.True(t, ok)
	assert.Equal(t, codec.Default.Name(), c.Name())
}

func TestMustMarshal_NilCodec(t *testing.T) {
	data := codec.MustMarshal(nil, payload{Name: "table"})
	assert.NotEmpty(t, data)
}
