package network

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// MaxBatchPackets is the number of sub-messages at which a batch is rejected.
const MaxBatchPackets = 1000

// Settings describes the connection a batch arrived on.
type Settings struct {
	// SubProtocol selects the header layout of every chunk.
	SubProtocol int
	// Version is the protocol version of the connection, or proto.Unknown.
	Version proto.Version
	// Compression is the negotiated algorithm. Nil means compression was not negotiated yet and the
	// payload is read as is.
	Compression proto.Compression
	// Limit is the decompression ceiling. Zero selects proto.DecompressLimit and a negative limit disables
	// the ceiling.
	Limit int
}

// Decoder turns batches into packets.
type Decoder struct {
	registry *Registry
	palette  packet.Palette
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDecoder ...
func NewDecoder(registry *Registry, palette packet.Palette, logger *slog.Logger, m *metrics.Metrics) *Decoder {
	return &Decoder{registry: registry, palette: palette, logger: logger, metrics: m}
}

// Decode decompresses payload and decodes every packet in it, in order. Any error fails the whole batch
// and no packets are returned.
func (d *Decoder) Decode(payload []byte, s Settings) ([]packet.Packet, error) {
	data, err := d.decompress(payload, s)
	if err != nil {
		return nil, err
	}

	pool := d.registry.Pool(s.Version)
	r := proto.NewBatchReader(data)
	pks := make([]packet.Packet, 0, 4)
	for count := 0; r.Remaining(); {
		if count++; count >= MaxBatchPackets {
			return nil, protocolErrorf("batch carries %d or more packets", MaxBatchPackets)
		}

		chunk, err := r.Next()
		if err != nil {
			return nil, protocolErrorf("%v", err)
		}

		id, offset, err := proto.ReadHeader(chunk, s.SubProtocol)
		if err != nil {
			return nil, protocolErrorf("%v", err)
		}

		desc, ok := pool.Get(id)
		if !ok {
			d.logger.Debug("dropped unknown packet", "id", id, "version", s.Version)
			d.metrics.UnknownPacket(id)
			continue
		}

		pk := desc.New()
		if err := d.decodePacket(pk, chunk[offset:], s.Version); err != nil {
			d.metrics.DecodeError(desc.Name)
			return nil, &DecodeError{Packet: desc.Name, Err: err}
		}
		d.metrics.Packet(desc.Name)
		pks = append(pks, pk)
	}
	return pks, nil
}

func (d *Decoder) decompress(payload []byte, s Settings) ([]byte, error) {
	c := s.Compression
	if c == nil {
		return payload, nil
	}
	if s.Version.Has(proto.FeatureCompressionPrefix) {
		if len(payload) == 0 {
			return nil, protocolErrorf("empty batch")
		}
		var ok bool
		if c, ok = proto.CompressionByID(payload[0]); !ok {
			return nil, protocolErrorf("unknown compression algorithm %d", payload[0])
		}
		payload = payload[1:]
	}

	limit := s.Limit
	if limit == 0 {
		limit = proto.DecompressLimit
	}
	data, err := c.Decompress(payload, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return data, nil
}

func (d *Decoder) decodePacket(pk packet.Packet, body []byte, v proto.Version) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()

	pk.Marshal(protocol.NewReader(bytes.NewReader(body), 0, false), v)
	if bd, ok := pk.(packet.BlockDecoder); ok && d.palette != nil {
		if err := bd.DecodeBlocks(d.palette, v.Resolve()); err != nil {
			return err
		}
	}
	return nil
}

// IsFatal reports whether err must close the connection it occurred on.
func IsFatal(err error) bool {
	var protocolErr *ProtocolError
	var decodeErr *DecodeError
	return errors.As(err, &protocolErr) || errors.As(err, &decodeErr) || errors.Is(err, ErrDecompress)
}
