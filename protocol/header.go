package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

const (
	// SubProtocolSingleByte frames packet IDs as a single raw byte.
	SubProtocolSingleByte = 7
	// SubProtocolPadded frames packet IDs as a raw byte followed by two ignored bytes.
	SubProtocolPadded = 8
	// SubProtocolCurrent frames packet IDs as a varuint32 carrying sub-client IDs in its upper bits.
	SubProtocolCurrent = 11
)

// LegacyPrefix is the number of bytes stripped from the front of a chunk before decoding the packet body
// on SubProtocolSingleByte and SubProtocolPadded.
const LegacyPrefix = 3

// legacyHeader reports whether the sub-protocol frames packet IDs in the fixed three byte layout. Every
// other tag uses the varuint32 header.
func legacyHeader(subProtocol int) bool {
	return subProtocol == SubProtocolSingleByte || subProtocol == SubProtocolPadded
}

// MaxPacketID is the largest packet ID representable in the varuint32 header.
const MaxPacketID = 0x3ff

var errShortHeader = errors.New("chunk too short for packet header")

// ReadHeader extracts the packet ID from a chunk using the header layout of the sub-protocol passed. It
// returns the ID and the offset at which the packet body starts.
func ReadHeader(chunk []byte, subProtocol int) (id uint32, offset int, err error) {
	switch {
	case legacyHeader(subProtocol):
		if len(chunk) < LegacyPrefix {
			return 0, 0, errShortHeader
		}
		return uint32(chunk[0]), LegacyPrefix, nil
	default:
		r := bytes.NewReader(chunk)
		header := packet.Header{}
		if err := header.Read(r); err != nil {
			return 0, 0, fmt.Errorf("read header: %w", err)
		}
		return header.PacketID, len(chunk) - r.Len(), nil
	}
}

// WriteHeader writes the header for the packet ID passed in the layout of the sub-protocol passed.
func WriteHeader(buf *bytes.Buffer, id uint32, subProtocol int) error {
	if legacyHeader(subProtocol) {
		buf.Write([]byte{byte(id), 0, 0})
		return nil
	}
	header := packet.Header{PacketID: id}
	return header.Write(buf)
}
