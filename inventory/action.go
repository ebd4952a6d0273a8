package inventory

import (
	"errors"
	"fmt"

	"github.com/cooldogedev/prism/network/packet"
)

var (
	// ErrUnmatchedAction is returned when a network action does not refer to anything the player has open.
	ErrUnmatchedAction = errors.New("unmatched inventory action")
	// ErrSlotMismatch is returned when a slot does not hold the item an action expects.
	ErrSlotMismatch = errors.New("slot does not hold the expected item")
	// ErrNotCreative is returned for creative inventory actions of a player outside creative mode.
	ErrNotCreative = errors.New("creative action outside creative mode")
)

// Action is a single inventory change. Source is the item taken out of the action's slot and Target
// the item put into it, so a balanced transaction takes out exactly what it puts in.
type Action interface {
	Source() Item
	Target() Item
	// Validate checks the action against the live state of the holder.
	Validate(h Holder) error
}

// SlotChange changes a real inventory slot.
type SlotChange struct {
	Window int32
	Inv    Inventory
	Slot   int
	From   Item
	To     Item
}

// Source ...
func (a *SlotChange) Source() Item { return a.From }

// Target ...
func (a *SlotChange) Target() Item { return a.To }

// Validate ...
func (a *SlotChange) Validate(Holder) error {
	cur, err := a.Inv.Item(a.Slot)
	if err != nil {
		return err
	}
	if !cur.EqualExact(a.From) {
		return fmt.Errorf("%w: window %d slot %d holds %v, expected %v", ErrSlotMismatch, a.Window, a.Slot, cur, a.From)
	}
	return nil
}

// Apply writes the target item to the slot.
func (a *SlotChange) Apply() error {
	return a.Inv.SetItem(a.Slot, a.To)
}

// String ...
func (a *SlotChange) String() string {
	return fmt.Sprintf("slot(window=%d slot=%d %v -> %v)", a.Window, a.Slot, a.From, a.To)
}

// VirtualKind identifies the virtual slot of a block UI an action refers to.
type VirtualKind uint8

const (
	VirtualCraftingResult VirtualKind = iota
	VirtualCraftingIngredient
	VirtualLoomResult
	VirtualLoomIngredient
	VirtualEnchantInput
	VirtualEnchantMaterial
	VirtualEnchantOutput
	VirtualRepairInput
	VirtualRepairMaterial
	VirtualRepairResult
	VirtualSmithingEquipment
	VirtualSmithingIngredient
	VirtualSmithingTemplate
	VirtualSmithingResult
	VirtualGrindstoneInput
	VirtualGrindstoneAdditional
	VirtualGrindstoneResult
	VirtualTradeInput
	VirtualTradeOutput
	VirtualBeacon
	VirtualDropContents
)

var virtualNames = [...]string{
	"crafting_result", "crafting_ingredient", "loom_result", "loom_ingredient", "enchant_input",
	"enchant_material", "enchant_output", "repair_input", "repair_material", "repair_result",
	"smithing_equipment", "smithing_ingredient", "smithing_template", "smithing_result",
	"grindstone_input", "grindstone_additional", "grindstone_result", "trade_input", "trade_output",
	"beacon", "drop_contents",
}

// String ...
func (k VirtualKind) String() string {
	if int(k) < len(virtualNames) {
		return virtualNames[k]
	}
	return "unknown"
}

// Virtual moves an item in or out of a virtual UI slot that holds no state of its own. Consumed items
// flow in (From is air), produced items flow out (To is air).
type Virtual struct {
	Kind VirtualKind
	Slot int
	From Item
	To   Item
}

// Source ...
func (a *Virtual) Source() Item { return a.From }

// Target ...
func (a *Virtual) Target() Item { return a.To }

// Validate ...
func (a *Virtual) Validate(Holder) error { return nil }

// Produced returns the item taken out of the virtual slot.
func (a *Virtual) Produced() Item { return a.From }

// Consumed returns the item put into the virtual slot.
func (a *Virtual) Consumed() Item { return a.To }

// String ...
func (a *Virtual) String() string {
	return fmt.Sprintf("virtual(%v slot=%d %v -> %v)", a.Kind, a.Slot, a.From, a.To)
}

// Creative takes an item from, or deletes an item into, the creative inventory.
type Creative struct {
	From Item
	To   Item
}

// Source ...
func (a *Creative) Source() Item { return a.From }

// Target ...
func (a *Creative) Target() Item { return a.To }

// Validate ...
func (a *Creative) Validate(h Holder) error {
	if !h.Creative() {
		return ErrNotCreative
	}
	return nil
}

// String ...
func (a *Creative) String() string {
	return fmt.Sprintf("creative(%v -> %v)", a.From, a.To)
}

// Drop throws an item into the world.
type Drop struct {
	Item Item
}

// Source ...
func (a *Drop) Source() Item { return Air }

// Target ...
func (a *Drop) Target() Item { return a.Item }

// Validate ...
func (a *Drop) Validate(Holder) error {
	if a.Item.Empty() {
		return fmt.Errorf("%w: dropping air", ErrSlotMismatch)
	}
	return nil
}

// String ...
func (a *Drop) String() string {
	return fmt.Sprintf("drop(%v)", a.Item)
}

// Resolve maps a network action onto the inventories of h. Actions referring to virtual UI slots are
// routed by the block UI the holder has open.
func Resolve(h Holder, a packet.NetworkInventoryAction) (Action, error) {
	from, to := FromStack(a.OldItem), FromStack(a.NewItem)
	switch a.SourceType {
	case packet.SourceContainer:
		inv, ok := h.Window(a.WindowID)
		if !ok || int(a.Slot) >= inv.Size() {
			return nil, fmt.Errorf("%w: %v", ErrUnmatchedAction, &a)
		}
		return &SlotChange{Window: a.WindowID, Inv: inv, Slot: int(a.Slot), From: from, To: to}, nil
	case packet.SourceWorld:
		if a.SourceFlags != packet.SourceFlagNoFlag {
			return nil, fmt.Errorf("%w: world action with flags %d", ErrUnmatchedAction, a.SourceFlags)
		}
		return &Drop{Item: to}, nil
	case packet.SourceCreative:
		return &Creative{From: from, To: to}, nil
	case packet.SourceTODO:
		kind, ok := virtualKind(h.OpenType(), a.WindowID, int(a.Slot))
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnmatchedAction, &a)
		}
		return &Virtual{Kind: kind, Slot: int(a.Slot), From: from, To: to}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnmatchedAction, &a)
}

func virtualKind(open WindowType, window int32, slot int) (VirtualKind, bool) {
	switch window {
	case packet.WindowCraftingResult:
		if open == WindowTypeLoom {
			return VirtualLoomResult, true
		}
		return VirtualCraftingResult, true
	case packet.WindowCraftingUseIngredient:
		if open == WindowTypeLoom {
			return VirtualLoomIngredient, true
		}
		return VirtualCraftingIngredient, true
	case packet.WindowEnchantInput:
		return VirtualEnchantInput, true
	case packet.WindowEnchantMaterial:
		return VirtualEnchantMaterial, true
	case packet.WindowEnchantOutput:
		return VirtualEnchantOutput, true
	case packet.WindowAnvilInput, packet.WindowAnvilMaterial, packet.WindowAnvilResult, packet.WindowAnvilOutput:
		return anvilKind(open, window, slot)
	case packet.WindowTradingInput1, packet.WindowTradingInput2, packet.WindowTradingUseInputs:
		return VirtualTradeInput, true
	case packet.WindowTradingOutput:
		return VirtualTradeOutput, true
	case packet.WindowBeacon:
		return VirtualBeacon, true
	case packet.WindowContainerDropContents:
		return VirtualDropContents, true
	}
	return 0, false
}

func anvilKind(open WindowType, window int32, slot int) (VirtualKind, bool) {
	result := window == packet.WindowAnvilResult || window == packet.WindowAnvilOutput
	switch open {
	case WindowTypeSmithing:
		switch {
		case result:
			return VirtualSmithingResult, true
		case window == packet.WindowAnvilInput:
			return VirtualSmithingEquipment, true
		case slot == 3:
			return VirtualSmithingTemplate, true
		default:
			return VirtualSmithingIngredient, true
		}
	case WindowTypeGrindstone:
		switch {
		case result:
			return VirtualGrindstoneResult, true
		case window == packet.WindowAnvilInput:
			return VirtualGrindstoneInput, true
		default:
			return VirtualGrindstoneAdditional, true
		}
	case WindowTypeAnvil:
		switch {
		case result:
			return VirtualRepairResult, true
		case window == packet.WindowAnvilInput:
			return VirtualRepairInput, true
		default:
			return VirtualRepairMaterial, true
		}
	}
	return 0, false
}
