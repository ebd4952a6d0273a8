package transaction

// Kind classifies an inventory transaction.
type Kind uint8

const (
	KindNormal Kind = iota
	KindCrafting
	KindLoom
	KindEnchant
	KindSmithing
	KindGrindstone
	KindRepairItem
	KindTrading
)

var kindNames = [...]string{
	KindNormal:     "normal",
	KindCrafting:   "crafting",
	KindLoom:       "loom",
	KindEnchant:    "enchant",
	KindSmithing:   "smithing",
	KindGrindstone: "grindstone",
	KindRepairItem: "repair_item",
	KindTrading:    "trading",
}

// String ...
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
