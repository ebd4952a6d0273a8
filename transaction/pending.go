package transaction

import (
	"errors"
	"fmt"

	"github.com/cooldogedev/prism/inventory"
)

// ErrRecipeMismatch is returned when the contents of a transaction do not form a known recipe.
var ErrRecipeMismatch = errors.New("transaction does not match any recipe")

// Env is the state a pending transaction is evaluated against.
type Env struct {
	Player  Player
	Recipes Recipes
}

// Pending is a multi-message transaction being accumulated for a connection. The set of
// implementations is closed: Crafting, Loom, Enchant, Smithing, Grindstone, RepairItem, Trading and
// the single-message Normal.
type Pending interface {
	Kind() Kind
	Actions() []inventory.Action
	// Add appends the actions of another message.
	Add(actions ...inventory.Action)
	// Continues reports whether an unflagged message carrying actions belongs to this transaction.
	Continues(actions []inventory.Action, env Env) bool
	// CanExecute reports whether every part of the transaction has arrived.
	CanExecute(env Env) bool

	// check verifies the transaction is what it claims to be, after the generic validation passed.
	check(env Env) error
	// effects runs on the world loop once the transaction was applied.
	effects(env Env, w World)
}

// NewPending returns an empty pending transaction of the kind passed.
func NewPending(k Kind) Pending {
	switch k {
	case KindCrafting:
		return &Crafting{}
	case KindLoom:
		return &Loom{}
	case KindEnchant:
		return &Enchant{}
	case KindSmithing:
		return &Smithing{}
	case KindGrindstone:
		return &Grindstone{}
	case KindRepairItem:
		return &RepairItem{}
	case KindTrading:
		return &Trading{}
	}
	return &Normal{}
}

type base struct {
	actions []inventory.Action
}

// Actions ...
func (b *base) Actions() []inventory.Action { return b.actions }

// Add ...
func (b *base) Add(actions ...inventory.Action) { b.actions = append(b.actions, actions...) }

func (b *base) effects(Env, World) {}

// produced returns the items taken out of virtual slots of the kinds passed.
func (b *base) produced(kinds ...inventory.VirtualKind) []inventory.Item {
	return collect(b.actions, kinds, (*inventory.Virtual).Produced)
}

// consumed returns the items put into virtual slots of the kinds passed.
func (b *base) consumed(kinds ...inventory.VirtualKind) []inventory.Item {
	return collect(b.actions, kinds, (*inventory.Virtual).Consumed)
}

func (b *base) first(items []inventory.Item) (inventory.Item, bool) {
	if len(items) == 0 {
		return inventory.Air, false
	}
	return items[0], true
}

// Normal is a plain slot swap, executed as soon as it arrives.
type Normal struct{ base }

// Kind ...
func (*Normal) Kind() Kind { return KindNormal }

// Continues ...
func (*Normal) Continues([]inventory.Action, Env) bool { return false }

// CanExecute ...
func (*Normal) CanExecute(Env) bool { return true }

func (*Normal) check(Env) error { return nil }

// Crafting crafts an item at a workbench, the inventory grid or a stonecutter.
type Crafting struct{ base }

// Kind ...
func (*Crafting) Kind() Kind { return KindCrafting }

// Continues ...
func (c *Crafting) Continues(actions []inventory.Action, env Env) bool {
	if touchesUI(actions, inventory.SlotCraftingGridFirst, inventory.SlotCraftingGridLast) ||
		touchesUI(actions, inventory.SlotCraftingOutput, inventory.SlotCraftingOutput) ||
		touchesUI(actions, inventory.SlotStonecutterInput, inventory.SlotStonecutterInput) ||
		hasVirtual(actions, inventory.VirtualCraftingResult, inventory.VirtualCraftingIngredient) {
		return true
	}
	out, ok := c.output()
	return ok && env.Recipes.MatchMulti(out, c.inputs())
}

// CanExecute ...
func (c *Crafting) CanExecute(env Env) bool {
	out, ok := c.output()
	if !ok {
		return false
	}
	if env.Player.OpenType() == inventory.WindowTypeStonecutter {
		return true
	}
	inputs := c.inputs()
	return env.Recipes.MatchCrafting(out, inputs) || env.Recipes.MatchMulti(out, inputs)
}

func (c *Crafting) check(env Env) error {
	out, _ := c.output()
	inputs := c.inputs()
	if env.Player.OpenType() == inventory.WindowTypeStonecutter {
		if len(inputs) == 1 && env.Recipes.MatchStonecutter(inputs[0], out) {
			return nil
		}
		return fmt.Errorf("%w: stonecutter %v", ErrRecipeMismatch, out)
	}
	if env.Recipes.MatchCrafting(out, inputs) || env.Recipes.MatchMulti(out, inputs) {
		return nil
	}
	return fmt.Errorf("%w: crafting %v from %v", ErrRecipeMismatch, out, inputs)
}

// output returns the primary output of the craft.
func (c *Crafting) output() (inventory.Item, bool) {
	return c.first(c.produced(inventory.VirtualCraftingResult))
}

func (c *Crafting) inputs() []inventory.Item {
	return c.consumed(inventory.VirtualCraftingIngredient)
}

// Loom applies a banner pattern.
type Loom struct{ base }

// Kind ...
func (*Loom) Kind() Kind { return KindLoom }

// Continues ...
func (*Loom) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotLoomInput, inventory.SlotLoomPattern) ||
		hasVirtual(actions, inventory.VirtualLoomResult, inventory.VirtualLoomIngredient)
}

// CanExecute ...
func (l *Loom) CanExecute(Env) bool {
	_, ok := l.first(l.produced(inventory.VirtualLoomResult))
	return ok && len(l.consumed(inventory.VirtualLoomIngredient)) >= 2
}

func (l *Loom) check(Env) error {
	res, _ := l.first(l.produced(inventory.VirtualLoomResult))
	return sameKindAsInput(res, l.consumed(inventory.VirtualLoomIngredient))
}

func (*Loom) effects(env Env, w World) { w.PlaySound(env.Player, SoundLoom) }

// Enchant enchants an item at an enchanting table.
type Enchant struct{ base }

// Kind ...
func (*Enchant) Kind() Kind { return KindEnchant }

// Continues ...
func (*Enchant) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotEnchantInput, inventory.SlotEnchantMaterial) ||
		hasVirtual(actions, inventory.VirtualEnchantInput, inventory.VirtualEnchantMaterial, inventory.VirtualEnchantOutput)
}

// CanExecute ...
func (e *Enchant) CanExecute(Env) bool {
	_, in := e.first(e.consumed(inventory.VirtualEnchantInput))
	_, out := e.first(e.produced(inventory.VirtualEnchantOutput))
	return in && out
}

func (e *Enchant) check(Env) error {
	out, _ := e.first(e.produced(inventory.VirtualEnchantOutput))
	return sameKindAsInput(out, e.consumed(inventory.VirtualEnchantInput))
}

// Smithing upgrades an item at a smithing table.
type Smithing struct{ base }

// Kind ...
func (*Smithing) Kind() Kind { return KindSmithing }

// Continues ...
func (*Smithing) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotSmithingEquipment, inventory.SlotSmithingTemplate) ||
		hasVirtual(actions, inventory.VirtualSmithingEquipment, inventory.VirtualSmithingIngredient,
			inventory.VirtualSmithingTemplate, inventory.VirtualSmithingResult)
}

// CanExecute ...
func (s *Smithing) CanExecute(Env) bool {
	_, template := s.first(s.consumed(inventory.VirtualSmithingTemplate))
	_, equipment := s.first(s.consumed(inventory.VirtualSmithingEquipment))
	_, ingredient := s.first(s.consumed(inventory.VirtualSmithingIngredient))
	_, result := s.first(s.produced(inventory.VirtualSmithingResult))
	return template && equipment && ingredient && result
}

func (s *Smithing) check(env Env) error {
	template, _ := s.first(s.consumed(inventory.VirtualSmithingTemplate))
	equipment, _ := s.first(s.consumed(inventory.VirtualSmithingEquipment))
	ingredient, _ := s.first(s.consumed(inventory.VirtualSmithingIngredient))
	result, _ := s.first(s.produced(inventory.VirtualSmithingResult))
	want, ok := env.Recipes.MatchSmithing(template, equipment, ingredient)
	if !ok || want.ID != result.ID || want.Meta != result.Meta {
		return fmt.Errorf("%w: smithing %v from %v, %v and %v", ErrRecipeMismatch, result, template, equipment, ingredient)
	}
	return nil
}

func (*Smithing) effects(env Env, w World) { w.PlaySound(env.Player, SoundSmithingTable) }

// Grindstone removes enchantments from an item.
type Grindstone struct{ base }

// Kind ...
func (*Grindstone) Kind() Kind { return KindGrindstone }

// Continues ...
func (*Grindstone) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotGrindstoneInput, inventory.SlotGrindstoneAdditional) ||
		hasVirtual(actions, inventory.VirtualGrindstoneInput, inventory.VirtualGrindstoneAdditional, inventory.VirtualGrindstoneResult)
}

// CanExecute ...
func (g *Grindstone) CanExecute(Env) bool {
	_, in := g.first(g.consumed(inventory.VirtualGrindstoneInput))
	_, out := g.first(g.produced(inventory.VirtualGrindstoneResult))
	return in && out
}

func (g *Grindstone) check(Env) error {
	out, _ := g.first(g.produced(inventory.VirtualGrindstoneResult))
	return sameKindAsInput(out, g.consumed(inventory.VirtualGrindstoneInput, inventory.VirtualGrindstoneAdditional))
}

func (*Grindstone) effects(env Env, w World) { w.PlaySound(env.Player, SoundGrindstone) }

// RepairItem repairs or renames an item at an anvil.
type RepairItem struct{ base }

// Kind ...
func (*RepairItem) Kind() Kind { return KindRepairItem }

// Continues ...
func (*RepairItem) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotAnvilInput, inventory.SlotAnvilMaterial) ||
		hasVirtual(actions, inventory.VirtualRepairInput, inventory.VirtualRepairMaterial, inventory.VirtualRepairResult)
}

// CanExecute ...
func (r *RepairItem) CanExecute(Env) bool {
	_, in := r.first(r.consumed(inventory.VirtualRepairInput))
	_, out := r.first(r.produced(inventory.VirtualRepairResult))
	return in && out
}

func (r *RepairItem) check(Env) error {
	out, _ := r.first(r.produced(inventory.VirtualRepairResult))
	return sameKindAsInput(out, r.consumed(inventory.VirtualRepairInput))
}

func (*RepairItem) effects(env Env, w World) { w.PlaySound(env.Player, SoundAnvil) }

// Trading buys an item from a villager.
type Trading struct {
	base
	reward int
}

// Kind ...
func (*Trading) Kind() Kind { return KindTrading }

// Continues ...
func (*Trading) Continues(actions []inventory.Action, _ Env) bool {
	return touchesUI(actions, inventory.SlotTradeInput1, inventory.SlotTradeInput2) ||
		hasVirtual(actions, inventory.VirtualTradeInput, inventory.VirtualTradeOutput)
}

// CanExecute ...
func (t *Trading) CanExecute(env Env) bool {
	out, ok := t.first(t.produced(inventory.VirtualTradeOutput))
	if !ok {
		return false
	}
	inputs := t.consumed(inventory.VirtualTradeInput)
	if len(inputs) == 0 {
		return false
	}
	_, ok = env.Recipes.MatchTrade(inputs, out)
	return ok
}

func (t *Trading) check(env Env) error {
	out, _ := t.first(t.produced(inventory.VirtualTradeOutput))
	reward, ok := env.Recipes.MatchTrade(t.consumed(inventory.VirtualTradeInput), out)
	if !ok {
		return fmt.Errorf("%w: trade for %v", ErrRecipeMismatch, out)
	}
	t.reward = reward
	return nil
}

func (t *Trading) effects(env Env, w World) {
	if t.reward > 0 {
		w.AddExperience(env.Player, t.reward)
	}
	w.PlaySound(env.Player, SoundOrb)
}

func sameKindAsInput(out inventory.Item, inputs []inventory.Item) error {
	for _, in := range inputs {
		if in.ID == out.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: %v is made from none of %v", ErrRecipeMismatch, out, inputs)
}

func collect(actions []inventory.Action, kinds []inventory.VirtualKind, f func(*inventory.Virtual) inventory.Item) []inventory.Item {
	var items []inventory.Item
	for _, a := range actions {
		v, ok := a.(*inventory.Virtual)
		if !ok || !hasKind(kinds, v.Kind) {
			continue
		}
		if it := f(v); !it.Empty() {
			items = append(items, it)
		}
	}
	return items
}

func hasKind(kinds []inventory.VirtualKind, k inventory.VirtualKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func hasVirtual(actions []inventory.Action, kinds ...inventory.VirtualKind) bool {
	for _, a := range actions {
		if v, ok := a.(*inventory.Virtual); ok && hasKind(kinds, v.Kind) {
			return true
		}
	}
	return false
}

// touchesUI reports whether any of the actions changes a UI slot in the range [first, last].
func touchesUI(actions []inventory.Action, first, last int) bool {
	for _, a := range actions {
		if s, ok := a.(*inventory.SlotChange); ok && s.Window == inventory.WindowUI && s.Slot >= first && s.Slot <= last {
			return true
		}
	}
	return false
}
