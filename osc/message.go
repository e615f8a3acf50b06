package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"reflect"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more arguments, each carrying an explicit type
// tag.
type Message struct {
	Address   string
	Arguments []Arg

	// Sender is the source address of the datagram the message arrived in.
	// It is set by the dispatcher and never encoded.
	Sender net.Addr
}

// Verify that Message implements the Packet interface.
var _ Packet = (*Message)(nil)

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(addr string, args ...Arg) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Append appends the given arguments to the arguments list.
func (m *Message) Append(args ...Arg) {
	m.Arguments = append(m.Arguments, args...)
}

// Clear clears the OSC address and all arguments.
func (m *Message) Clear() {
	m.Address = ""
	m.Arguments = m.Arguments[:0]
	m.Sender = nil
}

// Equals reports whether m and b carry the same address and arguments.
// Sender metadata is ignored.
func (m *Message) Equals(b *Message) bool {
	return m.Address == b.Address && reflect.DeepEqual(m.Arguments, b.Arguments)
}

// TypeTags returns the type tag string, including the leading comma.
func (m *Message) TypeTags() string {
	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	for _, a := range m.Arguments {
		tags = append(tags, byte(a.Tag))
	}
	return string(tags)
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	strBuf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(strBuf)
	strBuf.Reset()

	strBuf.WriteString(m.Address)
	if len(m.Arguments) == 0 {
		return strBuf.String()
	}

	strBuf.WriteByte(' ')
	strBuf.WriteString(m.TypeTags())

	for _, arg := range m.Arguments {
		if arg.Tag == TypeBlob {
			strBuf.WriteString(" blob")
			continue
		}
		fmt.Fprintf(strBuf, " %v", arg.Value)
	}

	return strBuf.String()
}

// CountArguments returns the number of arguments.
func (m *Message) CountArguments() int {
	return len(m.Arguments)
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. The wire
// form is the address string, the type tag string, and one encoded value per
// tag.
func (m *Message) MarshalBinary() ([]byte, error) {
	buf := bPool.Get().(*[]byte)
	defer bPool.Put(buf)

	n, err := m.marshalInto(*buf)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, (*buf)[:n])
	return out, nil
}

// marshalInto encodes the message into buf in a single pass; the type tag
// string is known upfront since every argument carries its tag.
func (m *Message) marshalInto(buf []byte) (int, error) {
	if paddedLength(len(m.Address))+paddedLength(len(m.Arguments)+1) > len(buf) {
		return 0, fmt.Errorf("marshalInto: %w", ErrPacketTooLarge)
	}

	n := writePaddedString(m.Address, buf)
	n += writePaddedString(m.TypeTags(), buf[n:])

	for _, arg := range m.Arguments {
		nn, err := writeArg(arg, buf[n:])
		if err != nil {
			return 0, err
		}
		n += nn
	}

	return n, nil
}

// NewMessageFromData returns a new Message created from the parsed data.
func NewMessageFromData(data []byte) (*Message, error) {
	m := &Message{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}

// newMessageFromData assumes ownership of data has been handed over.
func newMessageFromData(data []byte) (*Message, error) {
	m := &Message{}
	if err := m.unmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// input is copied; the decoded message does not alias it.
func (m *Message) UnmarshalBinary(d []byte) error {
	data := make([]byte, len(d))
	copy(data, d)
	return m.unmarshalBinary(data)
}

// unmarshalBinary is the actual implementation. It doesn't copy; decoded
// string and blob arguments alias data.
func (m *Message) unmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("UnmarshalBinary: empty packet: %w", ErrTruncatedPacket)
	}
	if data[0] != '/' {
		return fmt.Errorf("UnmarshalBinary: address must begin with '/': %w", ErrMalformedPacket)
	}
	if (len(data) % bit32Size) != 0 {
		return fmt.Errorf("UnmarshalBinary: packet isn't 32-bit aligned: %w", ErrMalformedPacket)
	}

	addr, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}
	m.Address = addr

	if err := m.parseArguments(data[n:]); err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}

	return nil
}

// parseArguments decodes the type tag string and one value per tag.
func (m *Message) parseArguments(data []byte) error {
	// Some senders omit the type tag string for argument-less messages.
	if len(data) == 0 {
		return nil
	}

	typetags, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("parseArguments: %w", err)
	}
	data = data[n:]

	if len(typetags) == 0 || typetags[0] != ',' {
		return fmt.Errorf("parseArguments: invalid type tag string %q: %w", typetags, ErrMalformedPacket)
	}
	tags := typetags[1:]

	m.Arguments = make([]Arg, 0, len(tags))

	for _, c := range tags {
		switch TypeTag(c) {
		default:
			return fmt.Errorf("parseArguments: unsupported type tag %q: %w", c, ErrMalformedPacket)

		case TypeInt32:
			if len(data) < bit32Size {
				return truncatedArg(c, len(data))
			}
			m.Arguments = append(m.Arguments, Int32(int32(binary.BigEndian.Uint32(data))))
			data = data[bit32Size:]

		case TypeInt64:
			if len(data) < bit64Size {
				return truncatedArg(c, len(data))
			}
			m.Arguments = append(m.Arguments, Int64(int64(binary.BigEndian.Uint64(data))))
			data = data[bit64Size:]

		case TypeFloat32:
			if len(data) < bit32Size {
				return truncatedArg(c, len(data))
			}
			m.Arguments = append(m.Arguments, Float32(math.Float32frombits(binary.BigEndian.Uint32(data))))
			data = data[bit32Size:]

		case TypeFloat64:
			if len(data) < bit64Size {
				return truncatedArg(c, len(data))
			}
			m.Arguments = append(m.Arguments, Float64(math.Float64frombits(binary.BigEndian.Uint64(data))))
			data = data[bit64Size:]

		case TypeString:
			s, nn, err := parsePaddedString(data)
			if err != nil {
				return fmt.Errorf("parseArguments: %w", err)
			}
			m.Arguments = append(m.Arguments, String(s))
			data = data[nn:]

		case TypeBlob:
			b, nn, err := parseBlob(data)
			if err != nil {
				return fmt.Errorf("parseArguments: %w", err)
			}
			m.Arguments = append(m.Arguments, Blob(b))
			data = data[nn:]
		}
	}

	return nil
}

func truncatedArg(tag rune, remaining int) error {
	return fmt.Errorf("parseArguments: %d bytes remain for tag %q: %w", remaining, tag, ErrTruncatedPacket)
}
