package network

import (
	"errors"
	"fmt"
)

// ErrDecompress is returned when a batch cannot be decompressed or decompresses beyond its ceiling.
var ErrDecompress = errors.New("decompress batch")

// ErrNotRegistered is returned when encoding a packet the viewer's pool does not contain.
var ErrNotRegistered = errors.New("packet not registered for version")

// ProtocolError is a framing violation that is fatal to the connection.
type ProtocolError struct {
	Reason string
}

// Error ...
func (e *ProtocolError) Error() string {
	return "protocol violation: " + e.Reason
}

func protocolErrorf(format string, a ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, a...)}
}

// DecodeError is returned when the body of a known packet is malformed.
type DecodeError struct {
	Packet string
	Err    error
}

// Error ...
func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %s: %v", e.Packet, e.Err)
}

// Unwrap ...
func (e *DecodeError) Unwrap() error {
	return e.Err
}
