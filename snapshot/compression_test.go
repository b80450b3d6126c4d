package snapshot

import (
	"encoding/binary"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "zstd", CompressionZstd.String())

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}

func TestCompressPayload_RoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("the chair is near the table. ", 200))

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			compressed, err := compressPayload(data, c)
			require.NoError(t, err)
			if c != CompressionNone {
				assert.Less(t, len(compressed), len(data))
			}

			out, err := decompressPayload(compressed, c)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestCompressPayload_Empty(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		compressed, err := compressPayload(nil, c)
		require.NoError(t, err)
		assert.Empty(t, compressed)

		out, err := decompressPayload(compressed, c)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestCompressPayload_IncompressibleStored(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 4096)
	_, err := rng.Read(data)
	require.NoError(t, err)

	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			compressed, err := compressPayload(data, c)
			require.NoError(t, err)

			// Random bytes do not compress; the payload must be stored
			// with CompressedSize == 0.
			require.Equal(t, payloadHeaderSize+len(data), len(compressed))
			assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(compressed[4:]))

			out, err := decompressPayload(compressed, c)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestDecompressPayload_Errors(t *testing.T) {
	_, err := decompressPayload([]byte{1, 2, 3}, CompressionZstd)
	assert.Error(t, err)

	// Compressed payload shorter than its frame header claims.
	short := make([]byte, payloadHeaderSize+2)
	binary.LittleEndian.PutUint32(short[0:], 100)
	binary.LittleEndian.PutUint32(short[4:], 50)
	_, err = decompressPayload(short, CompressionLZ4)
	assert.Error(t, err)

	// Stored payload shorter than its frame header claims.
	stored := make([]byte, payloadHeaderSize+2)
	binary.LittleEndian.PutUint32(stored[0:], 100)
	binary.LittleEndian.PutUint32(stored[4:], 0)
	_, err = decompressPayload(stored, CompressionLZ4)
	assert.Error(t, err)

	// An algorithm this build does not know.
	framed, err := compressPayload([]byte(strings.Repeat("x", 100)), CompressionZstd)
	require.NoError(t, err)
	_, err = decompressPayload(framed, Compression(9))
	assert.Error(t, err)
}
