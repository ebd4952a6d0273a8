package transaction

import (
	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/inventory"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Player is the connection a transaction is processed for.
type Player interface {
	inventory.Holder

	Name() string
	RuntimeID() uint64
	// Position returns the eye position of the player.
	Position() mgl32.Vec3
	Alive() bool
	Spectator() bool

	// Inventory returns the main inventory, the first nine slots of which form the hotbar.
	Inventory() *inventory.Container
	HeldSlot() int
	SetHeldSlot(slot int)
	HeldItem() inventory.Item
	SetHeldItem(it inventory.Item)
	UsingItem() bool
	SetUsingItem(using bool)

	// CloseWindows force closes every open block UI.
	CloseWindows()
	// ResendInventory marks every open inventory to be sent again after the current batch.
	ResendInventory()
	// ResendHeldItem marks the held item to be sent again after the current batch.
	ResendHeldItem()
}

// Entity is an entity a player can interact with.
type Entity interface {
	RuntimeID() uint64
	Position() mgl32.Vec3
	// Interact is called when p uses held on the entity and reports whether held was used up.
	Interact(p Player, held inventory.Item, clickPos mgl32.Vec3) bool
	// Attack is called when p hits the entity and reports whether the hit landed.
	Attack(p Player, held inventory.Item) bool
}

// Sound is a sound played as the effect of a transaction.
type Sound string

const (
	SoundSmithingTable Sound = "smithing_table.use"
	SoundGrindstone    Sound = "block.grindstone.use"
	SoundLoom          Sound = "block.loom.use"
	SoundAnvil         Sound = "random.anvil_use"
	SoundOrb           Sound = "random.orb"
)

// World owns the blocks and entities players interact with. Implementations serialise their own state:
// the methods below may be called from any connection goroutine.
type World interface {
	// Exec schedules f on the world's serialised execution loop and returns immediately.
	Exec(f func())

	UseItemOn(p Player, pos protocol.BlockPos, face int32, clickPos mgl32.Vec3, held inventory.Item) (inventory.Item, bool)
	UseBreakOn(p Player, pos protocol.BlockPos, face int32, held inventory.Item) (inventory.Item, bool)
	UseItemInAir(p Player, held inventory.Item) (inventory.Item, bool)
	FinishUsingItem(p Player, held inventory.Item) bool
	ReleaseItem(p Player, held inventory.Item) bool
	Entity(rid uint64) (Entity, bool)
	// SendBlocks resends the blocks at the positions passed to p.
	SendBlocks(p Player, positions ...protocol.BlockPos)

	// DropItem, PlaySound and AddExperience are only called from functions passed to Exec.
	DropItem(p Player, it inventory.Item)
	PlaySound(p Player, s Sound)
	AddExperience(p Player, amount int)
}

// Recipes matches transaction contents against known recipes.
type Recipes interface {
	MatchCrafting(output inventory.Item, inputs []inventory.Item) bool
	MatchMulti(output inventory.Item, inputs []inventory.Item) bool
	MatchStonecutter(input, output inventory.Item) bool
	MatchSmithing(template, equipment, ingredient inventory.Item) (inventory.Item, bool)
	MatchTrade(inputs []inventory.Item, output inventory.Item) (int, bool)
}

// Handler is consulted before every state changing branch. Cancelling the context aborts the branch.
type Handler interface {
	HandleTransaction(ctx *event.Context, p Player, kind Kind, actions []inventory.Action)
	HandleItemUseOnBlock(ctx *event.Context, p Player, pos protocol.BlockPos, face int32, held inventory.Item)
	HandleBlockBreak(ctx *event.Context, p Player, pos protocol.BlockPos, held inventory.Item)
	HandleItemUse(ctx *event.Context, p Player, held inventory.Item)
	HandleItemRelease(ctx *event.Context, p Player, held inventory.Item)
	HandleEntityInteract(ctx *event.Context, p Player, e Entity, held inventory.Item)
	HandleAttackEntity(ctx *event.Context, p Player, e Entity, held inventory.Item)
}

// NopHandler allows everything.
type NopHandler struct{}

func (NopHandler) HandleTransaction(*event.Context, Player, Kind, []inventory.Action) {}

func (NopHandler) HandleItemUseOnBlock(*event.Context, Player, protocol.BlockPos, int32, inventory.Item) {
}

func (NopHandler) HandleBlockBreak(*event.Context, Player, protocol.BlockPos, inventory.Item) {}

func (NopHandler) HandleItemUse(*event.Context, Player, inventory.Item) {}

func (NopHandler) HandleItemRelease(*event.Context, Player, inventory.Item) {}

func (NopHandler) HandleEntityInteract(*event.Context, Player, Entity, inventory.Item) {}

func (NopHandler) HandleAttackEntity(*event.Context, Player, Entity, inventory.Item) {}
