package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cooldogedev/prism/internal"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
)

const (
	// DecompressLimit is the default ceiling for a decompressed batch.
	DecompressLimit = 3 * 1024 * 1024
	// AppearanceDecompressLimit is the ceiling used while a connection has not supplied its skin yet,
	// since the skin payload is large.
	AppearanceDecompressLimit = 6 * 1024 * 1024
	// NoDecompressLimit disables the ceiling for connections that have not identified their version.
	NoDecompressLimit = -1
)

const (
	CompressionIDFlate  byte = 0x00
	CompressionIDSnappy byte = 0x01
	CompressionIDNone   byte = 0xff
)

// ErrDecompressLimit is returned when a payload decompresses to more than the limit passed.
var ErrDecompressLimit = errors.New("decompressed payload exceeds limit")

// Compression compresses and decompresses batch payloads.
type Compression interface {
	// ID returns the algorithm ID written in front of batches that carry a compression prefix.
	ID() byte
	// Compress compresses data.
	Compress(data []byte) ([]byte, error)
	// Decompress decompresses data, failing with ErrDecompressLimit if the result would be larger
	// than limit bytes. A limit <= 0 disables the check.
	Decompress(data []byte, limit int) ([]byte, error)
}

var (
	// FlateCompression is raw deflate, the default algorithm.
	FlateCompression Compression = flateCompression{}
	// SnappyCompression is the snappy block format.
	SnappyCompression Compression = snappyCompression{}
	// NoCompression passes payloads through, used before compression has been negotiated.
	NoCompression Compression = noCompression{}
)

// CompressionByID returns the Compression for an algorithm ID.
func CompressionByID(id byte) (Compression, bool) {
	switch id {
	case CompressionIDFlate:
		return FlateCompression, true
	case CompressionIDSnappy:
		return SnappyCompression, true
	case CompressionIDNone:
		return NoCompression, true
	}
	return nil, false
}

// CompressionByName returns the Compression configured by name: "flate", "snappy" or "none".
func CompressionByName(name string) (Compression, error) {
	switch name {
	case "", "flate":
		return FlateCompression, nil
	case "snappy":
		return SnappyCompression, nil
	case "none":
		return NoCompression, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}

type flateCompression struct{}

// ID ...
func (flateCompression) ID() byte {
	return CompressionIDFlate
}

// Compress ...
func (flateCompression) Compress(data []byte) ([]byte, error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.PutBuffer(buf)

	w, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Decompress ...
func (flateCompression) Decompress(data []byte, limit int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, int64(limit)+1)
	}
	decompressed, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if limit > 0 && len(decompressed) > limit {
		return nil, ErrDecompressLimit
	}
	return decompressed, nil
}

type snappyCompression struct{}

// ID ...
func (snappyCompression) ID() byte {
	return CompressionIDSnappy
}

// Compress ...
func (snappyCompression) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress ...
func (snappyCompression) Decompress(data []byte, limit int) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	if limit > 0 && n > limit {
		return nil, ErrDecompressLimit
	}
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	return decompressed, nil
}

type noCompression struct{}

// ID ...
func (noCompression) ID() byte {
	return CompressionIDNone
}

// Compress ...
func (noCompression) Compress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

// Decompress ...
func (noCompression) Decompress(data []byte, limit int) ([]byte, error) {
	if limit > 0 && len(data) > limit {
		return nil, ErrDecompressLimit
	}
	return data, nil
}
