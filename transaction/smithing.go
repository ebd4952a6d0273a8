package transaction

import (
	"errors"

	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
)

var errNoFreeSlot = errors.New("no free inventory slot for smithing result")

// smithingWorkaround rebuilds the repair item transaction some clients replace with a mismatch
// transaction when taking the result out of a smithing table. It reports false if the smithing
// table holds no valid recipe.
func (e *Engine) smithingWorkaround() (*packet.InventoryTransaction, bool, error) {
	p := e.env.Player
	ui, ok := p.Window(inventory.WindowUI)
	if !ok {
		return nil, false, nil
	}
	template, err := ui.Item(inventory.SlotSmithingTemplate)
	if err != nil {
		return nil, false, err
	}
	equipment, err := ui.Item(inventory.SlotSmithingEquipment)
	if err != nil {
		return nil, false, err
	}
	ingredient, err := ui.Item(inventory.SlotSmithingIngredient)
	if err != nil {
		return nil, false, err
	}
	result, ok := e.env.Recipes.MatchSmithing(template, equipment, ingredient)
	if !ok || result.Empty() {
		return nil, false, nil
	}
	free := p.Inventory().FirstEmpty()
	if free < 0 {
		return nil, false, errNoFreeSlot
	}

	ui52, ui51, ui53 := ingredient.Decrement(1), equipment.Decrement(1), template.Decrement(1)
	pk := &packet.InventoryTransaction{
		TransactionType: packet.TransactionTypeNormal,
		Actions: []packet.NetworkInventoryAction{
			container(inventory.WindowUI, inventory.SlotSmithingIngredient, ingredient, ui52),
			container(inventory.WindowUI, inventory.SlotSmithingEquipment, equipment, ui51),
			container(inventory.WindowUI, inventory.SlotSmithingTemplate, template, ui53),
			container(inventory.WindowInventory, free, inventory.Air, result),
			virtual(packet.WindowAnvilResult, 2, result, inventory.Air),
			virtual(packet.WindowAnvilInput, 0, ui51, equipment),
			virtual(packet.WindowAnvilMaterial, 1, ui52, ingredient),
			virtual(packet.WindowAnvilMaterial, 3, ui53, template),
		},
		RepairItemPart: true,
	}
	return pk, true, nil
}

func container(window int32, slot int, from, to inventory.Item) packet.NetworkInventoryAction {
	return packet.NetworkInventoryAction{
		SourceType: packet.SourceContainer,
		WindowID:   window,
		Slot:       uint32(slot),
		OldItem:    from.Stack(),
		NewItem:    to.Stack(),
	}
}

func virtual(window int32, slot int, from, to inventory.Item) packet.NetworkInventoryAction {
	return packet.NetworkInventoryAction{
		SourceType: packet.SourceTODO,
		WindowID:   window,
		Slot:       uint32(slot),
		OldItem:    from.Stack(),
		NewItem:    to.Stack(),
	}
}
