package packet

import (
	"github.com/cooldogedev/prism/palette"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	BlockUpdateNeighbours = 1 << iota
	BlockUpdateNetwork
	BlockUpdateNoGraphics
	BlockUpdatePriority
)

// UpdateBlock changes a single block for the client. Block is translated to NewBlockRuntimeID for the
// viewer's version before the packet is written.
type UpdateBlock struct {
	Position          protocol.BlockPos
	NewBlockRuntimeID uint32
	Block             palette.Legacy
	Flags             uint32
	Layer             uint32
}

// ID ...
func (*UpdateBlock) ID() uint32 {
	return IDUpdateBlock
}

// Marshal ...
func (pk *UpdateBlock) Marshal(io protocol.IO, _ proto.Version) {
	io.UBlockPos(&pk.Position)
	io.Varuint32(&pk.NewBlockRuntimeID)
	io.Varuint32(&pk.Flags)
	io.Varuint32(&pk.Layer)
}

// EncodeBlocks ...
func (pk *UpdateBlock) EncodeBlocks(p Palette, v proto.Version) error {
	rid, err := p.RuntimeID(v, pk.Block)
	if err != nil {
		return err
	}
	pk.NewBlockRuntimeID = rid
	return nil
}

// DecodeBlocks ...
func (pk *UpdateBlock) DecodeBlocks(p Palette, v proto.Version) error {
	l, err := p.Legacy(v, pk.NewBlockRuntimeID)
	if err != nil {
		return err
	}
	pk.Block = l
	return nil
}
