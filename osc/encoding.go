package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

const (
	bit32Size = 4
	bit64Size = 8
)

////
// De/Encoding functions
////

// parsePaddedString reads a padded string from the given slice and returns
// the string and the number of bytes consumed, including the terminator and
// the alignment padding.
func parsePaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", 0, fmt.Errorf("parsePaddedString: missing terminator: %w", ErrTruncatedPacket)
	}

	n := pos + 1 + padBytesNeeded(pos+1)
	if n > len(data) {
		return "", 0, fmt.Errorf("parsePaddedString: missing padding: %w", ErrTruncatedPacket)
	}

	str := data[:pos]

	return *(*string)(unsafe.Pointer(&str)), n, nil
}

// writePaddedString writes str with a null terminator and padding bytes into
// b. Returns the number of bytes written, always a multiple of four. The
// terminator and padding are written explicitly since b may hold stale bytes
// from a previous encode.
func writePaddedString(str string, b []byte) int {
	n := copy(b, str)
	pad := 1 + padBytesNeeded(n+1)
	for i := 0; i < pad; i++ {
		b[n+i] = 0
	}

	return n + pad
}

// parseBlob parses an OSC blob and returns the blob bytes and the number of
// bytes consumed, including the length prefix and the alignment padding. The
// returned slice aliases data.
func parseBlob(data []byte) ([]byte, int, error) {
	if len(data) < bit32Size {
		return nil, 0, fmt.Errorf("parseBlob: missing length prefix: %w", ErrTruncatedPacket)
	}

	blobLen := int(binary.BigEndian.Uint32(data))
	if blobLen < 0 || blobLen > len(data)-bit32Size {
		return nil, 0, fmt.Errorf("parseBlob: blob length %d exceeds remaining %d bytes: %w",
			blobLen, len(data)-bit32Size, ErrTruncatedPacket)
	}

	n := bit32Size + blobLen
	blob := data[bit32Size:n]

	n += padBytesNeeded(n)
	if n > len(data) {
		return nil, 0, fmt.Errorf("parseBlob: missing padding: %w", ErrTruncatedPacket)
	}

	return blob, n, nil
}

// writeBlob writes data as an OSC blob into b: a 4-byte length prefix, the
// raw bytes, and padding to 32-bit alignment. Returns the number of bytes
// written.
func writeBlob(data []byte, b []byte) int {
	binary.BigEndian.PutUint32(b, uint32(len(data)))
	n := bit32Size + copy(b[bit32Size:], data)

	pad := padBytesNeeded(n)
	for i := 0; i < pad; i++ {
		b[n+i] = 0
	}

	return n + pad
}

// writeArg encodes a single tagged argument into b and returns the number of
// bytes written. The dynamic type of the value must match the declared tag.
func writeArg(arg Arg, b []byte) (int, error) {
	switch arg.Tag {
	default:
		return 0, fmt.Errorf("writeArg: unsupported type tag %q: %w", arg.Tag, ErrTypeMismatch)

	case TypeInt32:
		v, ok := arg.Value.(int32)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if len(b) < bit32Size {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		binary.BigEndian.PutUint32(b, uint32(v))
		return bit32Size, nil

	case TypeInt64:
		v, ok := arg.Value.(int64)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if len(b) < bit64Size {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		binary.BigEndian.PutUint64(b, uint64(v))
		return bit64Size, nil

	case TypeFloat32:
		v, ok := arg.Value.(float32)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if len(b) < bit32Size {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		binary.BigEndian.PutUint32(b, math.Float32bits(v))
		return bit32Size, nil

	case TypeFloat64:
		v, ok := arg.Value.(float64)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if len(b) < bit64Size {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		binary.BigEndian.PutUint64(b, math.Float64bits(v))
		return bit64Size, nil

	case TypeString:
		v, ok := arg.Value.(string)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if paddedLength(len(v)) > len(b) {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		return writePaddedString(v, b), nil

	case TypeBlob:
		v, ok := arg.Value.([]byte)
		if !ok {
			return 0, tagMismatch(arg)
		}
		if n := bit32Size + len(v); n+padBytesNeeded(n) > len(b) {
			return 0, fmt.Errorf("writeArg: %w", ErrPacketTooLarge)
		}
		return writeBlob(v, b), nil
	}
}

func tagMismatch(arg Arg) error {
	return fmt.Errorf("writeArg: %T value tagged %q: %w", arg.Value, arg.Tag, ErrTypeMismatch)
}

// paddedLength returns the encoded size of a string of length l: the string,
// its terminator, and the alignment padding.
func paddedLength(l int) int {
	return l + 1 + padBytesNeeded(l+1)
}

// padBytesNeeded determines how many bytes are needed to fill up to the next
// 4 byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
