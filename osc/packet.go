package osc

import (
	"encoding"
	"fmt"
)

// MaxPacketSize is the largest datagram the transport sends or receives. It
// is the maximum UDP payload over IPv4.
const MaxPacketSize = 65507

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler

	// marshalInto encodes the packet into buf and returns the number of
	// bytes written.
	marshalInto(buf []byte) (int, error)
}

// ParsePacket parses a Message or a Bundle from data. The input is copied;
// the returned packet does not alias it.
func ParsePacket(d []byte) (Packet, error) {
	data := make([]byte, len(d))
	copy(data, d)
	return parsePacket(data)
}

// parsePacket is the actual implementation. It does not copy, so decoded
// strings and blobs alias data; callers hand over ownership of the slice.
func parsePacket(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("parsePacket: empty packet: %w", ErrTruncatedPacket)
	}

	// A bundle starts with '#'; anything else is parsed as a message.
	if data[0] == '#' {
		return newBundleFromData(data)
	}
	return newMessageFromData(data)
}
