package transaction

import (
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
)

// Classify returns the kind of an inventory transaction and whether the kind was derived from one of
// the part flags rather than the transaction type.
func Classify(pk *packet.InventoryTransaction, actions []inventory.Action) (Kind, bool) {
	switch {
	case pk.CraftingPart:
		if hasVirtual(actions, inventory.VirtualLoomResult, inventory.VirtualLoomIngredient) {
			return KindLoom, true
		}
		return KindCrafting, true
	case pk.EnchantingPart:
		return KindEnchant, true
	case pk.RepairItemPart:
		switch {
		case hasVirtual(actions, inventory.VirtualSmithingEquipment, inventory.VirtualSmithingIngredient,
			inventory.VirtualSmithingTemplate, inventory.VirtualSmithingResult):
			return KindSmithing, true
		case hasVirtual(actions, inventory.VirtualGrindstoneInput, inventory.VirtualGrindstoneAdditional,
			inventory.VirtualGrindstoneResult):
			return KindGrindstone, true
		}
		return KindRepairItem, true
	case pk.TradeItemPart:
		return KindTrading, true
	}
	return KindNormal, false
}

// Decision is what the engine does with an incoming transaction.
type Decision uint8

const (
	// DecisionStart starts a new pending transaction with the actions.
	DecisionStart Decision = iota
	// DecisionAppend appends the actions to the live pending transaction.
	DecisionAppend
	// DecisionInterrupt discards the live pending transaction and drops the message.
	DecisionInterrupt
	// DecisionInterruptDispatch discards the live pending transaction and handles the message by its
	// transaction type.
	DecisionInterruptDispatch
	// DecisionDispatch handles the message by its transaction type.
	DecisionDispatch
)

var decisionNames = [...]string{"start", "append", "interrupt", "interrupt_dispatch", "dispatch"}

// String ...
func (d Decision) String() string {
	if int(d) < len(decisionNames) {
		return decisionNames[d]
	}
	return "unknown"
}

// Plan decides what to do with a message of the kind passed given the live pending transaction, which
// may be nil. continues is the result of current.Continues for the message's actions.
func Plan(current Pending, kind Kind, flagged, continues bool) Decision {
	if current == nil {
		if flagged {
			return DecisionStart
		}
		return DecisionDispatch
	}
	if flagged {
		if kind == current.Kind() {
			return DecisionAppend
		}
		return DecisionInterrupt
	}
	if continues {
		return DecisionAppend
	}
	return DecisionInterruptDispatch
}
