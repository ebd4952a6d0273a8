package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// ContainerOpen is sent by the server to open a container window for the client.
type ContainerOpen struct {
	WindowID                byte
	ContainerType           byte
	ContainerPosition       protocol.BlockPos
	ContainerEntityUniqueID int64
}

// ID ...
func (*ContainerOpen) ID() uint32 {
	return IDContainerOpen
}

// Marshal ...
func (pk *ContainerOpen) Marshal(io protocol.IO, _ proto.Version) {
	io.Uint8(&pk.WindowID)
	io.Uint8(&pk.ContainerType)
	io.UBlockPos(&pk.ContainerPosition)
	io.Varint64(&pk.ContainerEntityUniqueID)
}

// ContainerClose is sent by both sides to close a container window.
type ContainerClose struct {
	WindowID byte
	// ContainerType is only present from FeatureContainerCloseType onwards.
	ContainerType byte
	ServerSide    bool
}

// ID ...
func (*ContainerClose) ID() uint32 {
	return IDContainerClose
}

// Marshal ...
func (pk *ContainerClose) Marshal(io protocol.IO, v proto.Version) {
	io.Uint8(&pk.WindowID)
	if v.Has(proto.FeatureContainerCloseType) {
		io.Uint8(&pk.ContainerType)
	}
	io.Bool(&pk.ServerSide)
}

// InventoryContent sets the full contents of a window.
type InventoryContent struct {
	WindowID uint32
	Content  []ItemStack
}

// ID ...
func (*InventoryContent) ID() uint32 {
	return IDInventoryContent
}

// Marshal ...
func (pk *InventoryContent) Marshal(io protocol.IO, v proto.Version) {
	io.Varuint32(&pk.WindowID)
	slice(io, &pk.Content, 1024, "Content", func(x *ItemStack) {
		x.Marshal(io, v)
	})
}

// EncodeBlocks ...
func (pk *InventoryContent) EncodeBlocks(p Palette, v proto.Version) error {
	for i := range pk.Content {
		if err := pk.Content[i].EncodeBlocks(p, v); err != nil {
			return err
		}
	}
	return nil
}

// InventorySlot sets a single slot of a window.
type InventorySlot struct {
	WindowID uint32
	Slot     uint32
	NewItem  ItemStack
}

// ID ...
func (*InventorySlot) ID() uint32 {
	return IDInventorySlot
}

// Marshal ...
func (pk *InventorySlot) Marshal(io protocol.IO, v proto.Version) {
	io.Varuint32(&pk.WindowID)
	io.Varuint32(&pk.Slot)
	pk.NewItem.Marshal(io, v)
}

// EncodeBlocks ...
func (pk *InventorySlot) EncodeBlocks(p Palette, v proto.Version) error {
	return encodeItems(p, v, &pk.NewItem)
}
