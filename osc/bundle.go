package osc

import (
	"encoding/binary"
	"fmt"
	"time"
)

const bundleTagString = "#bundle"

// bundleHeaderSize is the encoded size of the "#bundle" string plus the
// 8-byte time tag.
const bundleHeaderSize = 16

// Bundle represents an OSC bundle. It consists of the OSC-string "#bundle"
// followed by an OSC Time Tag, followed by zero or more OSC bundle/message
// elements. The OSC-timetag is a 64-bit fixed point time tag. See
// http://opensoundcontrol.org/spec-1_0.html for more information.
//
// The time tag is carried as opaque metadata; the transport neither delays
// nor reorders delivery based on it.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Verify that Bundle implements the Packet interface.
var _ Packet = (*Bundle)(nil)

// NewBundle returns a Bundle with the immediate time tag holding the given
// elements.
func NewBundle(elems ...Packet) *Bundle {
	return &Bundle{Timetag: TimetagImmediate, Elements: elems}
}

// NewBundleWithTime returns a Bundle tagged with the given time.
func NewBundleWithTime(t time.Time, elems ...Packet) *Bundle {
	return &Bundle{Timetag: NewTimetagFromTime(t), Elements: elems}
}

// Append appends OSC bundles or OSC messages to the bundle.
func (b *Bundle) Append(pcks ...Packet) {
	b.Elements = append(b.Elements, pcks...)
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. The wire
// form is the "#bundle" string, the 8-byte time tag, and one length-prefixed
// encoding per element.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	buf := bPool.Get().(*[]byte)
	defer bPool.Put(buf)

	n, err := b.marshalInto(*buf)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, (*buf)[:n])
	return out, nil
}

// marshalInto encodes the bundle into buf. Element sizes are not known until
// the element is serialized, so each length slot is reserved, the element is
// encoded behind it, and the slot is back-patched with the measured size.
func (b *Bundle) marshalInto(buf []byte) (int, error) {
	if bundleHeaderSize > len(buf) {
		return 0, fmt.Errorf("marshalInto: %w", ErrPacketTooLarge)
	}

	n := writePaddedString(bundleTagString, buf)

	binary.BigEndian.PutUint64(buf[n:], uint64(b.Timetag))
	n += bit64Size

	for _, elem := range b.Elements {
		if n+bit32Size > len(buf) {
			return 0, fmt.Errorf("marshalInto: %w", ErrPacketTooLarge)
		}

		slot := n
		n += bit32Size

		nn, err := elem.marshalInto(buf[n:])
		if err != nil {
			return 0, err
		}

		// The length excludes the 4-byte slot itself.
		binary.BigEndian.PutUint32(buf[slot:], uint32(nn))
		n += nn
	}

	return n, nil
}

// NewBundleFromData returns a new OSC bundle created from the parsed data.
func NewBundleFromData(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// newBundleFromData assumes ownership of data has been handed over.
func newBundleFromData(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.unmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// input is copied; the decoded bundle does not alias it.
func (b *Bundle) UnmarshalBinary(d []byte) error {
	data := make([]byte, len(d))
	copy(data, d)
	return b.unmarshalBinary(data)
}

// unmarshalBinary is the actual implementation, it doesn't copy, so a single
// copy serves the whole element tree. Each element is decoded from a window
// restricted to its declared length; a corrupt element cannot desynchronize
// the decoding of its siblings.
func (b *Bundle) unmarshalBinary(data []byte) error {
	if (len(data) % bit32Size) != 0 {
		return fmt.Errorf("UnmarshalBinary: data isn't padded properly: %w", ErrMalformedPacket)
	}
	if len(data) < bundleHeaderSize {
		return fmt.Errorf("UnmarshalBinary: bundle is too short: %w", ErrTruncatedPacket)
	}

	// Read the '#bundle' OSC string
	startTag, n, err := parsePaddedString(data)
	if err != nil {
		return err
	}
	data = data[n:]

	if startTag != bundleTagString {
		return fmt.Errorf("UnmarshalBinary: invalid bundle start tag %q: %w", startTag, ErrMalformedPacket)
	}

	// Read the timetag
	b.Timetag = Timetag(binary.BigEndian.Uint64(data))
	data = data[bit64Size:]

	// Read until the end of the buffer
	for len(data) > 0 {
		if len(data) < bit32Size {
			return fmt.Errorf("UnmarshalBinary: missing element length: %w", ErrTruncatedPacket)
		}

		length := int(binary.BigEndian.Uint32(data))
		data = data[bit32Size:]

		if length < 0 || length > len(data) {
			return fmt.Errorf("UnmarshalBinary: element length %d exceeds remaining %d bytes: %w",
				length, len(data), ErrTruncatedPacket)
		}

		p, err := parsePacket(data[:length])
		if err != nil {
			return err
		}
		data = data[length:]

		b.Elements = append(b.Elements, p)
	}

	return nil
}
