package network

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/prism/internal"
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Encoder turns outbound packets into a batch for a specific viewer.
type Encoder struct {
	registry *Registry
	palette  packet.Palette
}

// NewEncoder ...
func NewEncoder(registry *Registry, palette packet.Palette) *Encoder {
	return &Encoder{registry: registry, palette: palette}
}

// Encode writes pks into a single batch using the layout of the connection described by s. Blocks are
// translated to the runtime IDs of s.Version first.
func (e *Encoder) Encode(s Settings, pks ...packet.Packet) ([]byte, error) {
	pool := e.registry.Pool(s.Version)

	batch := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.PutBuffer(batch)
	chunk := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.PutBuffer(chunk)

	w := proto.NewBatchWriter(batch)
	for _, pk := range pks {
		if _, ok := pool.Get(pk.ID()); !ok {
			return nil, fmt.Errorf("%w: %s (%d) for %v", ErrNotRegistered, packet.Name(pk), pk.ID(), s.Version)
		}
		if be, ok := pk.(packet.BlockEncoder); ok && e.palette != nil {
			if err := be.EncodeBlocks(e.palette, s.Version.Resolve()); err != nil {
				return nil, fmt.Errorf("encode blocks of %s: %w", packet.Name(pk), err)
			}
		}

		chunk.Reset()
		if err := proto.WriteHeader(chunk, pk.ID(), s.SubProtocol); err != nil {
			return nil, err
		}
		if err := marshal(pk, chunk, s.Version); err != nil {
			return nil, fmt.Errorf("encode %s: %w", packet.Name(pk), err)
		}
		if err := w.Write(chunk.Bytes()); err != nil {
			return nil, err
		}
	}

	if s.Compression == nil {
		return bytes.Clone(batch.Bytes()), nil
	}
	compressed, err := s.Compression.Compress(batch.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress batch: %w", err)
	}
	if s.Version.Has(proto.FeatureCompressionPrefix) {
		return append([]byte{s.Compression.ID()}, compressed...), nil
	}
	return compressed, nil
}

func marshal(pk packet.Packet, buf *bytes.Buffer, v proto.Version) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	pk.Marshal(protocol.NewWriter(buf, 0), v)
	return nil
}
