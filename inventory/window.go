package inventory

// Window IDs of the inventories every player has open.
const (
	WindowInventory int32 = 0
	WindowOffhand   int32 = 119
	WindowArmour    int32 = 120
	WindowCreative  int32 = 121
	WindowHotbar    int32 = 122
	WindowFixed     int32 = 123
	WindowUI        int32 = 124
)

// HotbarSize is the number of slots of the inventory shown in the hotbar.
const HotbarSize = 9

// HotbarSlot reports whether slot is one of the hotbar slots of the player's inventory.
func HotbarSlot(slot int) bool {
	return slot >= 0 && slot < HotbarSize
}

// Slots of the UI inventory.
const (
	SlotCursor               = 0
	SlotAnvilInput           = 1
	SlotAnvilMaterial        = 2
	SlotStonecutterInput     = 3
	SlotTradeInput1          = 4
	SlotTradeInput2          = 5
	SlotLoomInput            = 9
	SlotLoomDye              = 10
	SlotLoomPattern          = 11
	SlotEnchantInput         = 14
	SlotEnchantMaterial      = 15
	SlotGrindstoneInput      = 16
	SlotGrindstoneAdditional = 17
	SlotCraftingGridFirst    = 28
	SlotCraftingGridLast     = 36
	SlotCraftingOutput       = 50
	SlotSmithingEquipment    = 51
	SlotSmithingIngredient   = 52
	SlotSmithingTemplate     = 53
)

// UISize is the number of slots of the UI inventory.
const UISize = 54

// WindowType is the kind of block UI a player has open.
type WindowType uint8

const (
	WindowTypeNone WindowType = iota
	WindowTypeWorkbench
	WindowTypeStonecutter
	WindowTypeAnvil
	WindowTypeEnchant
	WindowTypeGrindstone
	WindowTypeSmithing
	WindowTypeLoom
	WindowTypeTrade
	WindowTypeContainer
)

var windowTypeNames = [...]string{
	WindowTypeNone:        "none",
	WindowTypeWorkbench:   "workbench",
	WindowTypeStonecutter: "stonecutter",
	WindowTypeAnvil:       "anvil",
	WindowTypeEnchant:     "enchant",
	WindowTypeGrindstone:  "grindstone",
	WindowTypeSmithing:    "smithing",
	WindowTypeLoom:        "loom",
	WindowTypeTrade:       "trade",
	WindowTypeContainer:   "container",
}

// String ...
func (t WindowType) String() string {
	if int(t) < len(windowTypeNames) {
		return windowTypeNames[t]
	}
	return "unknown"
}

// Network container types sent in ContainerOpen.
const (
	ContainerTypeContainer   byte = 0
	ContainerTypeWorkbench   byte = 1
	ContainerTypeEnchantment byte = 3
	ContainerTypeAnvil       byte = 5
	ContainerTypeTrade       byte = 15
	ContainerTypeLoom        byte = 24
	ContainerTypeGrindstone  byte = 26
	ContainerTypeStonecutter byte = 29
	ContainerTypeSmithing    byte = 33
)

// WindowTypeFromContainer maps a network container type to a WindowType.
func WindowTypeFromContainer(t byte) WindowType {
	switch t {
	case ContainerTypeWorkbench:
		return WindowTypeWorkbench
	case ContainerTypeEnchantment:
		return WindowTypeEnchant
	case ContainerTypeAnvil:
		return WindowTypeAnvil
	case ContainerTypeTrade:
		return WindowTypeTrade
	case ContainerTypeLoom:
		return WindowTypeLoom
	case ContainerTypeGrindstone:
		return WindowTypeGrindstone
	case ContainerTypeStonecutter:
		return WindowTypeStonecutter
	case ContainerTypeSmithing:
		return WindowTypeSmithing
	}
	return WindowTypeContainer
}

// Holder gives access to the inventories of a player.
type Holder interface {
	// Window returns the inventory open under the window ID passed.
	Window(id int32) (Inventory, bool)
	// OpenType returns the type of block UI currently open.
	OpenType() WindowType
	// Creative reports whether the player may take items from the creative inventory.
	Creative() bool
}
