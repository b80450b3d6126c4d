package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wingrune/objectmap"
	"github.com/wingrune/objectmap/codec"
	"github.com/wingrune/objectmap/internal/hash"
)

// A snapshot file is framed as
//
//	[0:8]   magic "OMAPSNAP"
//	[8:12]  format version (uint32, little-endian)
//	[12:16] CRC32-Castagnoli over everything past this field
//	[16]    codec name length (uint8)
//	[...]   codec name
//	[+0]    compression (uint8)
//	[+1:+5] object count (uint32, little-endian)
//	[+5:+13] payload length (uint64, little-endian)
//	[...]   payload
//
// The CRC covers the codec name, compression, count, payload length and
// payload, so a torn write or bit flip past the version surfaces as
// ErrInvalidCRC rather than a codec error.

const snapshotMagic = "OMAPSNAP"

// FormatVersion is written into every snapshot header. Decode rejects
// other versions.
const FormatVersion uint32 = 1

const (
	magicSize       = 8
	versionSize     = 4
	checksumSize    = 4
	fixedHeaderSize = magicSize + versionSize + checksumSize
)

var (
	// ErrInvalidHeader reports a snapshot that is too short, carries the
	// wrong magic, or whose header fields are inconsistent.
	ErrInvalidHeader = errors.New("invalid snapshot header")
	// ErrIncompatibleVersion reports a snapshot written by an unsupported
	// format version.
	ErrIncompatibleVersion = errors.New("incompatible snapshot version")
	// ErrInvalidCRC reports a snapshot whose checksum does not match its
	// contents.
	ErrInvalidCRC = errors.New("invalid snapshot CRC")
	// ErrUnknownCodec reports a snapshot encoded with a codec this build
	// does not provide.
	ErrUnknownCodec = errors.New("unknown snapshot codec")
)

// Encode frames objs into a self-describing snapshot: the codec and
// compression are recorded in the header, so Decode needs no out-of-band
// configuration. A nil codec falls back to codec.Default.
func Encode(objs []objectmap.StoredObject, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	if len(name) == 0 || len(name) > 255 {
		return nil, fmt.Errorf("codec name %q does not fit the header", name)
	}
	if uint64(len(objs)) > math.MaxUint32 {
		return nil, fmt.Errorf("%d objects exceed the header count field", len(objs))
	}

	payload, err := c.Marshal(objs)
	if err != nil {
		return nil, fmt.Errorf("marshal objects: %w", err)
	}
	body, err := compressPayload(payload, comp)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	buf := make([]byte, fixedHeaderSize+1+len(name)+1+4+8+len(body))
	copy(buf[0:magicSize], snapshotMagic)
	binary.LittleEndian.PutUint32(buf[magicSize:], FormatVersion)

	off := fixedHeaderSize
	buf[off] = uint8(len(name))
	off++
	copy(buf[off:], name)
	off += len(name)
	buf[off] = uint8(comp)
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(objs)))
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(len(body)))
	off += 8
	copy(buf[off:], body)

	binary.LittleEndian.PutUint32(buf[magicSize+versionSize:], hash.CRC32C(buf[fixedHeaderSize:]))
	return buf, nil
}

// Decode parses a snapshot produced by Encode, verifying magic, version
// and checksum before touching the payload.
func Decode(data []byte) ([]objectmap.StoredObject, error) {
	if len(data) < fixedHeaderSize+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(data))
	}
	if string(data[0:magicSize]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidHeader)
	}
	if v := binary.LittleEndian.Uint32(data[magicSize:]); v != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, v, FormatVersion)
	}
	want := binary.LittleEndian.Uint32(data[magicSize+versionSize:])
	if got := hash.CRC32C(data[fixedHeaderSize:]); got != want {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrInvalidCRC, got, want)
	}

	off := fixedHeaderSize
	nameLen := int(data[off])
	off++
	if len(data) < off+nameLen+1+4+8 {
		return nil, fmt.Errorf("%w: truncated", ErrInvalidHeader)
	}
	name := string(data[off : off+nameLen])
	off += nameLen
	comp := Compression(data[off])
	off++
	count := binary.LittleEndian.Uint32(data[off:])
	off += 4
	payloadLen := binary.LittleEndian.Uint64(data[off:])
	off += 8
	if uint64(len(data)-off) != payloadLen {
		return nil, fmt.Errorf("%w: payload length %d, have %d bytes", ErrInvalidHeader, payloadLen, len(data)-off)
	}

	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	payload, err := decompressPayload(data[off:], comp)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	var objs []objectmap.StoredObject
	if err := c.Unmarshal(payload, &objs); err != nil {
		return nil, fmt.Errorf("unmarshal objects: %w", err)
	}
	if uint32(len(objs)) != count {
		return nil, fmt.Errorf("%w: object count %d does not match header %d", ErrInvalidHeader, len(objs), count)
	}
	return objs, nil
}

// Write encodes objs and writes the framed snapshot to w.
func Write(w io.Writer, objs []objectmap.StoredObject, c codec.Codec, comp Compression) (int64, error) {
	data, err := Encode(objs, c, comp)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Read consumes r to the end and decodes the snapshot it contains.
func Read(r io.Reader) ([]objectmap.StoredObject, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
