package protocol

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cooldogedev/prism/internal"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Writer writes length-prefixed frames to a stream.
type Writer struct {
	w io.Writer
}

// NewWriter ...
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes data as a single frame.
func (w *Writer) Write(data []byte) (err error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.PutBuffer(buf)

	if err = binary.Write(buf, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}

	buf.Write(data)
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return err
	}
	return
}

// BatchWriter appends varuint32 length-prefixed chunks to a batch.
type BatchWriter struct {
	buf *bytes.Buffer
}

// NewBatchWriter ...
func NewBatchWriter(buf *bytes.Buffer) *BatchWriter {
	return &BatchWriter{buf: buf}
}

// Write appends chunk to the batch.
func (w *BatchWriter) Write(chunk []byte) error {
	if err := protocol.WriteVaruint32(w.buf, uint32(len(chunk))); err != nil {
		return err
	}
	_, err := w.buf.Write(chunk)
	return err
}
