package transaction

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/recipe"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const recipes = `
crafting:
  - output: {id: 5, meta: 0, count: 4}
    inputs:
      - {id: 17, meta: -1, count: 1}
stonecutter:
  - input: {id: 1, meta: 0}
    output: {id: 44, meta: 0, count: 2}
smithing:
  - template: {id: 700, meta: 0}
    base: {id: 276, meta: 0}
    addition: {id: 742, meta: 0}
    output: {id: 743, meta: 0}
trades:
  - buy_a: {id: 388, meta: 0, count: 3}
    sell: {id: 264, meta: 0, count: 1}
    reward_exp: 2
`

var (
	dirt       = inventory.NewItem(3, 0, 64)
	stone      = inventory.NewItem(1, 0, 1)
	template   = inventory.NewItem(700, 0, 1)
	sword      = inventory.NewItem(276, 0, 1)
	ingot      = inventory.NewItem(742, 0, 1)
	netherite  = inventory.NewItem(743, 0, 1)
	errBadSlot = errors.New("bad slot")
)

type fakePlayer struct {
	rid       uint64
	inv       *inventory.Container
	armour    *inventory.Container
	offhand   *inventory.Container
	ui        *inventory.Container
	open      inventory.WindowType
	creative  bool
	spectator bool
	dead      bool
	pos       mgl32.Vec3
	held      int
	using     bool

	closed     int
	resent     int
	heldResent int
}

func newPlayer() *fakePlayer {
	return &fakePlayer{
		rid:     1,
		inv:     inventory.NewContainer(36),
		armour:  inventory.NewContainer(4),
		offhand: inventory.NewContainer(1),
		ui:      inventory.NewContainer(inventory.UISize),
	}
}

func (p *fakePlayer) Window(id int32) (inventory.Inventory, bool) {
	switch id {
	case inventory.WindowInventory:
		return p.inv, true
	case inventory.WindowArmour:
		return p.armour, true
	case inventory.WindowOffhand:
		return p.offhand, true
	case inventory.WindowUI:
		return p.ui, true
	}
	return nil, false
}

func (p *fakePlayer) OpenType() inventory.WindowType  { return p.open }
func (p *fakePlayer) Creative() bool                  { return p.creative }
func (p *fakePlayer) Name() string                    { return "steve" }
func (p *fakePlayer) RuntimeID() uint64               { return p.rid }
func (p *fakePlayer) Position() mgl32.Vec3            { return p.pos }
func (p *fakePlayer) Alive() bool                     { return !p.dead }
func (p *fakePlayer) Spectator() bool                 { return p.spectator }
func (p *fakePlayer) Inventory() *inventory.Container { return p.inv }
func (p *fakePlayer) HeldSlot() int                   { return p.held }
func (p *fakePlayer) SetHeldSlot(slot int)            { p.held = slot }
func (p *fakePlayer) UsingItem() bool                 { return p.using }
func (p *fakePlayer) SetUsingItem(using bool)         { p.using = using }
func (p *fakePlayer) CloseWindows()                   { p.closed++; p.open = inventory.WindowTypeNone }
func (p *fakePlayer) ResendInventory()                { p.resent++ }
func (p *fakePlayer) ResendHeldItem()                 { p.heldResent++ }
func (p *fakePlayer) SetHeldItem(it inventory.Item)   { _ = p.inv.SetItem(p.held, it) }
func (p *fakePlayer) HeldItem() inventory.Item        { it, _ := p.inv.Item(p.held); return it }

type fakeEntity struct {
	rid      uint64
	pos      mgl32.Vec3
	attacked int
}

func (e *fakeEntity) RuntimeID() uint64    { return e.rid }
func (e *fakeEntity) Position() mgl32.Vec3 { return e.pos }
func (e *fakeEntity) Interact(Player, inventory.Item, mgl32.Vec3) bool {
	return false
}
func (e *fakeEntity) Attack(Player, inventory.Item) bool {
	e.attacked++
	return true
}

type fakeWorld struct {
	entities map[uint64]Entity
	useOn    int
	sent     []protocol.BlockPos
	drops    []inventory.Item
	sounds   []Sound
	exp      int
}

func (w *fakeWorld) Exec(f func()) { f() }

func (w *fakeWorld) UseItemOn(Player, protocol.BlockPos, int32, mgl32.Vec3, inventory.Item) (inventory.Item, bool) {
	w.useOn++
	return inventory.Air, false
}

func (w *fakeWorld) UseBreakOn(Player, protocol.BlockPos, int32, inventory.Item) (inventory.Item, bool) {
	return inventory.Air, false
}

func (w *fakeWorld) UseItemInAir(_ Player, held inventory.Item) (inventory.Item, bool) {
	return held, true
}

func (w *fakeWorld) FinishUsingItem(Player, inventory.Item) bool { return true }
func (w *fakeWorld) ReleaseItem(Player, inventory.Item) bool     { return true }

func (w *fakeWorld) Entity(rid uint64) (Entity, bool) {
	e, ok := w.entities[rid]
	return e, ok
}

func (w *fakeWorld) SendBlocks(_ Player, positions ...protocol.BlockPos) {
	w.sent = append(w.sent, positions...)
}

func (w *fakeWorld) DropItem(_ Player, it inventory.Item) { w.drops = append(w.drops, it) }
func (w *fakeWorld) PlaySound(_ Player, s Sound)          { w.sounds = append(w.sounds, s) }
func (w *fakeWorld) AddExperience(_ Player, amount int)   { w.exp += amount }

// failingInventory refuses to change one of its slots.
type failingInventory struct {
	*inventory.Container
	bad int
}

func (f *failingInventory) SetItem(slot int, it inventory.Item) error {
	if slot == f.bad {
		return errBadSlot
	}
	return f.Container.SetItem(slot, it)
}

func newEngine(t *testing.T, p *fakePlayer) (*Engine, *fakeWorld) {
	t.Helper()
	r := recipe.NewRegistry()
	if err := r.LoadBytes([]byte(recipes)); err != nil {
		t.Fatal(err)
	}
	w := &fakeWorld{entities: make(map[uint64]Entity)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(p, w, r, nil, DefaultConfig(), logger, nil), w
}
