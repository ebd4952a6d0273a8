package packet

import (
	"github.com/cooldogedev/prism/palette"
	proto "github.com/cooldogedev/prism/protocol"
)

// Palette translates block states between their stable legacy identity and the runtime IDs a
// specific protocol version uses on the wire.
type Palette interface {
	RuntimeID(v proto.Version, l palette.Legacy) (uint32, error)
	Legacy(v proto.Version, rid uint32) (palette.Legacy, error)
}

// BlockDecoder is implemented by inbound packets carrying block runtime IDs. DecodeBlocks resolves them
// to legacy identities after the packet was read.
type BlockDecoder interface {
	DecodeBlocks(p Palette, v proto.Version) error
}

// BlockEncoder is implemented by outbound packets carrying blocks. EncodeBlocks resolves legacy
// identities to the runtime IDs of the viewer's version before the packet is written.
type BlockEncoder interface {
	EncodeBlocks(p Palette, v proto.Version) error
}
