package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	packetLengthSize = 4
	// MaxFrameSize is the largest frame accepted from a stream transport.
	MaxFrameSize = 8 * 1024 * 1024
)

// ErrChunkLength is returned when a chunk declares a length beyond the remaining batch.
var ErrChunkLength = errors.New("chunk length exceeds remaining batch")

// Reader reads length-prefixed frames from a stream. Every frame is prefixed with its length as a
// big endian uint32.
type Reader struct {
	r      io.Reader
	header [packetLengthSize]byte
}

// NewReader ...
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadPacket reads the next frame from the underlying stream.
func (r *Reader) ReadPacket() ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(r.header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds maximum of %d", length, MaxFrameSize)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(r.r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// BatchReader splits a decompressed batch into its chunks. Every chunk is prefixed with its length as a
// varuint32.
type BatchReader struct {
	buf *bytes.Reader
}

// NewBatchReader ...
func NewBatchReader(data []byte) *BatchReader {
	return &BatchReader{buf: bytes.NewReader(data)}
}

// Remaining reports whether unread bytes are left in the batch.
func (r *BatchReader) Remaining() bool {
	return r.buf.Len() > 0
}

// Next reads the next chunk. The returned slice is a copy and safe to retain.
func (r *BatchReader) Next() ([]byte, error) {
	var length uint32
	if err := protocol.Varuint32(r.buf, &length); err != nil {
		return nil, fmt.Errorf("read chunk length: %w", err)
	}
	if int64(length) > int64(r.buf.Len()) {
		return nil, fmt.Errorf("%w: declared %d, remaining %d", ErrChunkLength, length, r.buf.Len())
	}

	chunk := make([]byte, length)
	_, _ = r.buf.Read(chunk)
	return chunk, nil
}
