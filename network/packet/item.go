package packet

import (
	"fmt"

	"github.com/cooldogedev/prism/palette"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// ItemStack is an item as it is sent over the network. A NetworkID of 0 is air, in which case no other
// fields are present on the wire.
type ItemStack struct {
	NetworkID int32
	Count     uint16
	Meta      uint32
	// HasStackNetworkID and StackNetworkID are only present from FeatureItemStackNetID onwards.
	HasStackNetworkID bool
	StackNetworkID    int32
	// BlockRuntimeID is the runtime ID of the block the item places, or 0 if it places none.
	BlockRuntimeID int32
	// Block is the legacy identity of BlockRuntimeID, filled by DecodeBlocks and consumed by
	// EncodeBlocks.
	Block    palette.Legacy
	UserData []byte
}

// Air reports whether the stack is empty.
func (x *ItemStack) Air() bool {
	return x.NetworkID == 0 || x.Count == 0
}

// Marshal ...
func (x *ItemStack) Marshal(io protocol.IO, v proto.Version) {
	io.Varint32(&x.NetworkID)
	if x.NetworkID == 0 {
		return
	}
	io.Uint16(&x.Count)
	io.Varuint32(&x.Meta)
	if v.Has(proto.FeatureItemStackNetID) {
		io.Bool(&x.HasStackNetworkID)
		if x.HasStackNetworkID {
			io.Varint32(&x.StackNetworkID)
		}
	}
	io.Varint32(&x.BlockRuntimeID)
	io.ByteSlice(&x.UserData)
}

// DecodeBlocks ...
func (x *ItemStack) DecodeBlocks(p Palette, v proto.Version) error {
	if x.NetworkID == 0 || x.BlockRuntimeID == 0 {
		return nil
	}
	l, err := p.Legacy(v, uint32(x.BlockRuntimeID))
	if err != nil {
		return fmt.Errorf("item %d: %w", x.NetworkID, err)
	}
	x.Block = l
	return nil
}

// EncodeBlocks ...
func (x *ItemStack) EncodeBlocks(p Palette, v proto.Version) error {
	if x.NetworkID == 0 || x.Block == (palette.Legacy{}) {
		x.BlockRuntimeID = 0
		return nil
	}
	rid, err := p.RuntimeID(v, x.Block)
	if err != nil {
		return fmt.Errorf("item %d: %w", x.NetworkID, err)
	}
	x.BlockRuntimeID = int32(rid)
	return nil
}

func decodeItems(p Palette, v proto.Version, items ...*ItemStack) error {
	for _, it := range items {
		if err := it.DecodeBlocks(p, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeItems(p Palette, v proto.Version, items ...*ItemStack) error {
	for _, it := range items {
		if err := it.EncodeBlocks(p, v); err != nil {
			return err
		}
	}
	return nil
}
