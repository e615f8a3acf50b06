package osc

import "errors"

// Codec errors. Wrapped with context by the codec; match with errors.Is.
var (
	// ErrTypeMismatch is reported when an argument's value does not have the
	// dynamic type its tag promises.
	ErrTypeMismatch = errors.New("osc: argument value does not match its type tag")

	// ErrMalformedPacket is reported for structurally invalid input: a bad
	// address, a bad bundle start tag, an unknown type tag, misalignment.
	ErrMalformedPacket = errors.New("osc: malformed packet")

	// ErrTruncatedPacket is reported when the input ends before the structure
	// it declares.
	ErrTruncatedPacket = errors.New("osc: truncated packet")

	// ErrPacketTooLarge is reported when an encoded packet would exceed
	// MaxPacketSize.
	ErrPacketTooLarge = errors.New("osc: packet exceeds maximum datagram size")
)

// Transport errors.
var (
	// ErrTransportClosed is reported for operations on a transport that is
	// not running.
	ErrTransportClosed = errors.New("osc: transport closed")

	// ErrTransportFault wraps socket failures that terminate a transport
	// without a stop request.
	ErrTransportFault = errors.New("osc: transport fault")

	// ErrSenderClosed is reported by sends after the sender has terminated,
	// whether by Stop or by a transmit failure.
	ErrSenderClosed = errors.New("osc: sender closed")

	// ErrQueueFull is reported by TrySend when the send queue is at capacity.
	ErrQueueFull = errors.New("osc: send queue full")
)
