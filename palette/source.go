package palette

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	proto "github.com/cooldogedev/prism/protocol"
	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Entry is a single block state in a source table.
type Entry struct {
	ID   int32  `nbt:"id"`
	Data int32  `nbt:"data"`
	Name string `nbt:"name"`
}

// Legacy ...
func (e Entry) Legacy() Legacy {
	return Legacy{Type: uint32(e.ID), Variant: uint32(e.Data)}
}

// Source provides the ordered block state table of an anchor version.
type Source interface {
	Table(v proto.Version) ([]Entry, error)
}

// MemorySource is a Source backed by tables held in memory.
type MemorySource map[proto.Version][]Entry

// Table ...
func (s MemorySource) Table(v proto.Version) ([]Entry, error) {
	entries, ok := s[v]
	if !ok {
		return nil, fmt.Errorf("no block palette table for %v", v)
	}
	return entries, nil
}

// DirSource reads tables from gzip compressed NBT files named block_palette_<protocol>.nbt.gz.
type DirSource string

// Path returns the file the table of v is read from.
func (s DirSource) Path(v proto.Version) string {
	return filepath.Join(string(s), fmt.Sprintf("block_palette_%d.nbt.gz", int32(v)))
}

// Table ...
func (s DirSource) Table(v proto.Version) ([]Entry, error) {
	f, err := os.Open(s.Path(v))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}

type table struct {
	Version int32   `nbt:"version"`
	Blocks  []Entry `nbt:"blocks"`
}

// ReadTable reads a gzip compressed network little endian NBT table.
func ReadTable(r io.Reader) (entries []Entry, err error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress table: %w", err)
	}

	var t table
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(data), nbt.NetworkLittleEndian).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return t.Blocks, nil
}

// WriteTable writes entries in the format read by ReadTable.
func WriteTable(w io.Writer, v proto.Version, entries []Entry) error {
	zw := gzip.NewWriter(w)
	t := table{Version: int32(v), Blocks: entries}
	if err := nbt.NewEncoderWithEncoding(zw, nbt.NetworkLittleEndian).Encode(t); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode table: %w", err)
	}
	return zw.Close()
}
