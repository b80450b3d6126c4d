package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the algorithm applied to the snapshot payload.
type Compression uint8

const (
	// CompressionNone stores the payload as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 applies LZ4 block compression (fast, moderate ratio).
	CompressionLZ4 Compression = 1
	// CompressionZstd applies zstd compression (slower, better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression is the inverse of String for the named algorithms.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// Encoder/decoder pools so repeated snapshots reuse zstd state.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Compressed payloads are framed as
// [UncompressedSize uint32][CompressedSize uint32][Data...], both sizes
// little-endian. CompressedSize == 0 marks a payload stored uncompressed.
// CompressionNone skips the frame entirely.
const payloadHeaderSize = 8

// compressPayload frames and compresses data with the given algorithm.
func compressPayload(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone || len(data) == 0 {
		return data, nil
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("payload of %d bytes exceeds the frame limit", len(data))
	}

	var compressed []byte
	var err error
	switch c {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
	if err != nil {
		return nil, err
	}

	// If compression doesn't help (ratio > 0.9), store uncompressed.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, payloadHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[payloadHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, payloadHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[payloadHeaderSize:], compressed)
	return result, nil
}

// compressLZ4 returns nil for incompressible data.
func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return compressed[:n], nil
}

func compressZstd(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressPayload undoes compressPayload.
func decompressPayload(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone || len(data) == 0 {
		return data, nil
	}
	if len(data) < payloadHeaderSize {
		return nil, errors.New("payload too small for frame header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint64(len(data)) < payloadHeaderSize+uint64(uncompressedSize) {
			return nil, errors.New("stored payload shorter than frame header claims")
		}
		return data[payloadHeaderSize : payloadHeaderSize+int(uncompressedSize)], nil
	}

	if uint64(len(data)) < payloadHeaderSize+uint64(compressedSize) {
		return nil, errors.New("compressed payload shorter than frame header claims")
	}
	body := data[payloadHeaderSize : payloadHeaderSize+int(compressedSize)]

	switch c {
	case CompressionLZ4:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(body, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(body, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}
