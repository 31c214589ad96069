// Package scale implements the minimal subset of the SCALE binary encoding
// needed to stay wire-compatible with the ledger: little-endian fixed-width
// integers and compact-prefixed byte vectors. It is intentionally small —
// no ecosystem Go library implements SCALE, so this is a justified
// stdlib-only component (see DESIGN.md).
package scale

import (
	"encoding/binary"
	"fmt"
)

// EncodeI32 little-endian encodes a signed 32-bit integer.
func EncodeI32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// EncodeI64 little-endian encodes a signed 64-bit integer.
func EncodeI64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// DecodeI32 reverses EncodeI32.
func DecodeI32(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("scale: want 4 bytes for i32, got %d", len(b))
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// DecodeI64 reverses EncodeI64.
func DecodeI64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("scale: want 8 bytes for i64, got %d", len(b))
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// EncodeCompactLen encodes a length as a SCALE compact integer in the
// single-byte (< 2^6), two-byte (< 2^14) or four-byte (< 2^30) mode;
// larger lengths return an error.
func EncodeCompactLen(n int) ([]byte, error) {
	switch {
	case n < 1<<6:
		return []byte{byte(n) << 2}, nil
	case n < 1<<14:
		v := uint16(n)<<2 | 0b01
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b, nil
	case n < 1<<30:
		v := uint32(n)<<2 | 0b10
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b, nil
	default:
		return nil, fmt.Errorf("scale: length %d exceeds supported compact modes", n)
	}
}

// EncodeBytes prepends a compact length prefix to raw bytes.
func EncodeBytes(b []byte) ([]byte, error) {
	prefix, err := EncodeCompactLen(len(b))
	if err != nil {
		return nil, err
	}
	return append(prefix, b...), nil
}

// DecodeCompactLen reads a SCALE compact-encoded length, returning the
// value and the number of bytes consumed.
func DecodeCompactLen(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("scale: empty input")
	}
	mode := b[0] & 0b11
	switch mode {
	case 0b00:
		return int(b[0] >> 2), 1, nil
	case 0b01:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("scale: truncated 2-byte compact")
		}
		v := binary.LittleEndian.Uint16(b[:2])
		return int(v >> 2), 2, nil
	case 0b10:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("scale: truncated 4-byte compact")
		}
		v := binary.LittleEndian.Uint32(b[:4])
		return int(v >> 2), 4, nil
	default:
		return 0, 0, fmt.Errorf("scale: unsupported compact mode %d", mode)
	}
}

// DecodeBytes reads a compact-length-prefixed byte vector.
func DecodeBytes(b []byte) ([]byte, int, error) {
	n, consumed, err := DecodeCompactLen(b)
	if err != nil {
		return nil, 0, err
	}
	end := consumed + n
	if end > len(b) {
		return nil, 0, fmt.Errorf("scale: declared length %d exceeds input", n)
	}
	return b[consumed:end], end, nil
}
