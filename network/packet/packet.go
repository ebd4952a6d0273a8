package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

const (
	IDDisconnect           = 0x05
	IDRiderJump            = 0x14
	IDUpdateBlock          = 0x15
	IDInventoryTransaction = 0x1e
	IDAnimate              = 0x2c
	IDContainerOpen        = 0x2e
	IDContainerClose       = 0x2f
	IDInventoryContent     = 0x31
	IDInventorySlot        = 0x32
	IDPlayerInput          = 0x39
	IDLevelSoundEvent      = 0x7b
	IDPlayerLocation       = 0x146
)

// Packet is a packet whose layout may differ between protocol versions. Marshal both reads and writes
// the packet depending on the protocol.IO passed, branching on v where fields were added or reshaped.
type Packet interface {
	ID() uint32
	Marshal(io protocol.IO, v proto.Version)
}

// Fixed adapts a gophertunnel packet whose layout is identical across every supported version.
type Fixed struct {
	packet.Packet
}

// Marshal ...
func (pk Fixed) Marshal(io protocol.IO, _ proto.Version) {
	pk.Packet.Marshal(io)
}

// Name returns a human readable name of the packet's concrete type, used in diagnostics.
func Name(pk Packet) string {
	if f, ok := pk.(Fixed); ok {
		return typeName(f.Packet)
	}
	return typeName(pk)
}
