package packet

import (
	"fmt"

	proto "github.com/cooldogedev/prism/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	TransactionTypeNormal uint32 = iota
	TransactionTypeMismatch
	TransactionTypeUseItem
	TransactionTypeUseItemOnEntity
	TransactionTypeReleaseItem
)

const (
	UseItemActionClickBlock uint32 = iota
	UseItemActionClickAir
	UseItemActionBreakBlock
)

const (
	UseItemOnEntityActionInteract uint32 = iota
	UseItemOnEntityActionAttack
)

const (
	ReleaseItemActionRelease uint32 = iota
	ReleaseItemActionConsume
)

const (
	TriggerTypeUnknown uint32 = iota
	TriggerTypePlayerInput
	TriggerTypeSimulationTick
)

const (
	SourceContainer uint32 = 0
	SourceGlobal    uint32 = 1
	SourceWorld     uint32 = 2
	SourceCreative  uint32 = 3
	SourceCraftSlot uint32 = 100
	SourceTODO      uint32 = 99999
)

// Virtual window IDs used by SourceTODO actions.
const (
	WindowCraftingResult        int32 = -4
	WindowCraftingUseIngredient int32 = -5
	WindowAnvilInput            int32 = -10
	WindowAnvilMaterial         int32 = -11
	WindowAnvilResult           int32 = -12
	WindowAnvilOutput           int32 = -13
	WindowEnchantInput          int32 = -15
	WindowEnchantMaterial       int32 = -16
	WindowEnchantOutput         int32 = -17
	WindowTradingInput1         int32 = -20
	WindowTradingInput2         int32 = -21
	WindowTradingUseInputs      int32 = -22
	WindowTradingOutput         int32 = -23
	WindowBeacon                int32 = -24
	WindowContainerDropContents int32 = -100
)

const (
	// SourceFlagNoFlag is the flag of a world action that throws an item away.
	SourceFlagNoFlag uint32 = 0
	// SourceFlagWorldInteraction ...
	SourceFlagWorldInteraction uint32 = 1
)

// MaxActionsPerDecode bounds the action count read from the wire. The transaction engine enforces a much
// lower cap of its own.
const MaxActionsPerDecode = 4096

// NetworkInventoryAction is a single slot change as reported by the client.
type NetworkInventoryAction struct {
	SourceType  uint32
	WindowID    int32
	SourceFlags uint32
	Slot        uint32
	OldItem     ItemStack
	NewItem     ItemStack
}

// Marshal ...
func (x *NetworkInventoryAction) Marshal(io protocol.IO, v proto.Version) {
	io.Varuint32(&x.SourceType)
	switch x.SourceType {
	case SourceContainer, SourceTODO:
		io.Varint32(&x.WindowID)
	case SourceWorld:
		io.Varuint32(&x.SourceFlags)
	}
	io.Varuint32(&x.Slot)
	x.OldItem.Marshal(io, v)
	x.NewItem.Marshal(io, v)
}

// String ...
func (x *NetworkInventoryAction) String() string {
	return fmt.Sprintf("source=%d window=%d slot=%d old=%d:%d new=%d:%d", x.SourceType, x.WindowID, x.Slot, x.OldItem.NetworkID, x.OldItem.Count, x.NewItem.NetworkID, x.NewItem.Count)
}

// LegacySetItemSlot ...
type LegacySetItemSlot struct {
	ContainerID byte
	Slots       []byte
}

// UseItemData is the payload of a TransactionTypeUseItem transaction.
type UseItemData struct {
	ActionType       uint32
	TriggerType      uint32
	BlockPosition    protocol.BlockPos
	BlockFace        int32
	HotBarSlot       int32
	HeldItem         ItemStack
	Position         mgl32.Vec3
	ClickedPosition  mgl32.Vec3
	BlockRuntimeID   uint32
	ClientPrediction uint32
}

// UseItemOnEntityData is the payload of a TransactionTypeUseItemOnEntity transaction.
type UseItemOnEntityData struct {
	TargetEntityRuntimeID uint64
	ActionType            uint32
	HotBarSlot            int32
	HeldItem              ItemStack
	Position              mgl32.Vec3
	ClickedPosition       mgl32.Vec3
}

// ReleaseItemData is the payload of a TransactionTypeReleaseItem transaction.
type ReleaseItemData struct {
	ActionType   uint32
	HotBarSlot   int32
	HeldItem     ItemStack
	HeadPosition mgl32.Vec3
}

// InventoryTransaction is sent by the client for every inventory change and for item use on blocks,
// entities and the air.
type InventoryTransaction struct {
	LegacyRequestID    int32
	LegacySetItemSlots []LegacySetItemSlot
	TransactionType    uint32
	Actions            []NetworkInventoryAction

	// UseItem, UseItemOnEntity and ReleaseItem hold the payload matching TransactionType.
	UseItem         UseItemData
	UseItemOnEntity UseItemOnEntityData
	ReleaseItem     ReleaseItemData

	// The flags below are derived from the virtual windows the actions touch. They are never sent.
	CraftingPart   bool
	EnchantingPart bool
	RepairItemPart bool
	TradeItemPart  bool
}

// ID ...
func (*InventoryTransaction) ID() uint32 {
	return IDInventoryTransaction
}

// Marshal ...
func (pk *InventoryTransaction) Marshal(io protocol.IO, v proto.Version) {
	io.Varint32(&pk.LegacyRequestID)
	if pk.LegacyRequestID != 0 {
		slice(io, &pk.LegacySetItemSlots, 64, "LegacySetItemSlots", func(x *LegacySetItemSlot) {
			io.Uint8(&x.ContainerID)
			io.ByteSlice(&x.Slots)
		})
	}
	io.Varuint32(&pk.TransactionType)
	slice(io, &pk.Actions, MaxActionsPerDecode, "Actions", func(x *NetworkInventoryAction) {
		x.Marshal(io, v)
	})
	pk.deriveFlags()

	switch pk.TransactionType {
	case TransactionTypeUseItem:
		d := &pk.UseItem
		io.Varuint32(&d.ActionType)
		if v.Has(proto.FeatureUseItemTrigger) {
			io.Varuint32(&d.TriggerType)
		}
		io.BlockPos(&d.BlockPosition)
		io.Varint32(&d.BlockFace)
		io.Varint32(&d.HotBarSlot)
		d.HeldItem.Marshal(io, v)
		io.Vec3(&d.Position)
		io.Vec3(&d.ClickedPosition)
		io.Varuint32(&d.BlockRuntimeID)
		if v.Has(proto.FeatureUseItemTrigger) {
			io.Varuint32(&d.ClientPrediction)
		}
	case TransactionTypeUseItemOnEntity:
		d := &pk.UseItemOnEntity
		io.Varuint64(&d.TargetEntityRuntimeID)
		io.Varuint32(&d.ActionType)
		io.Varint32(&d.HotBarSlot)
		d.HeldItem.Marshal(io, v)
		io.Vec3(&d.Position)
		io.Vec3(&d.ClickedPosition)
	case TransactionTypeReleaseItem:
		d := &pk.ReleaseItem
		io.Varuint32(&d.ActionType)
		io.Varint32(&d.HotBarSlot)
		d.HeldItem.Marshal(io, v)
		io.Vec3(&d.HeadPosition)
	}
}

// DecodeBlocks ...
func (pk *InventoryTransaction) DecodeBlocks(p Palette, v proto.Version) error {
	for i := range pk.Actions {
		a := &pk.Actions[i]
		if err := decodeItems(p, v, &a.OldItem, &a.NewItem); err != nil {
			return err
		}
	}
	switch pk.TransactionType {
	case TransactionTypeUseItem:
		return pk.UseItem.HeldItem.DecodeBlocks(p, v)
	case TransactionTypeUseItemOnEntity:
		return pk.UseItemOnEntity.HeldItem.DecodeBlocks(p, v)
	case TransactionTypeReleaseItem:
		return pk.ReleaseItem.HeldItem.DecodeBlocks(p, v)
	}
	return nil
}

func (pk *InventoryTransaction) deriveFlags() {
	pk.CraftingPart, pk.EnchantingPart, pk.RepairItemPart, pk.TradeItemPart = false, false, false, false
	for _, a := range pk.Actions {
		if a.SourceType != SourceTODO {
			continue
		}
		switch a.WindowID {
		case WindowCraftingResult, WindowCraftingUseIngredient:
			pk.CraftingPart = true
		case WindowEnchantInput, WindowEnchantMaterial, WindowEnchantOutput:
			pk.EnchantingPart = true
		case WindowAnvilInput, WindowAnvilMaterial, WindowAnvilResult, WindowAnvilOutput:
			pk.RepairItemPart = true
		case WindowTradingInput1, WindowTradingInput2, WindowTradingUseInputs, WindowTradingOutput:
			pk.TradeItemPart = true
		}
	}
}
