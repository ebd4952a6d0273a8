package transaction

import (
	"errors"
	"testing"
	"time"

	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

func normal(actions ...packet.NetworkInventoryAction) *packet.InventoryTransaction {
	return &packet.InventoryTransaction{TransactionType: packet.TransactionTypeNormal, Actions: actions}
}

func drop(it inventory.Item) packet.NetworkInventoryAction {
	return packet.NetworkInventoryAction{SourceType: packet.SourceWorld, NewItem: it.Stack()}
}

func TestActionCap(t *testing.T) {
	for _, n := range []int{50, 51} {
		p := newPlayer()
		e, _ := newEngine(t, p)
		pk := normal()
		for i := 0; i < n; i++ {
			pk.Actions = append(pk.Actions, container(inventory.WindowUI, i, inventory.Air, inventory.Air))
		}
		err := e.Handle(pk)
		if n == 50 && err != nil {
			t.Fatalf("%d actions: unexpected error %v", n, err)
		}
		if n == 51 && !errors.Is(err, ErrTooManyActions) {
			t.Fatalf("%d actions: got %v, want ErrTooManyActions", n, err)
		}
	}
}

func TestNormalAllOrNothing(t *testing.T) {
	p := newPlayer()
	e, w := newEngine(t, p)
	_ = p.inv.SetItem(0, dirt)
	_ = p.inv.SetItem(1, stone)
	before := p.inv.Contents()

	err := e.Handle(normal(
		container(inventory.WindowInventory, 0, dirt, inventory.Air),
		container(inventory.WindowInventory, 2, inventory.Air, dirt),
		container(inventory.WindowInventory, 1, stone.WithCount(2), inventory.Air),
		container(inventory.WindowInventory, 3, inventory.Air, stone.WithCount(2)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := p.inv.Contents()
	for i := range before {
		if !before[i].EqualExact(after[i]) {
			t.Fatalf("slot %d changed from %v to %v", i, before[i], after[i])
		}
	}
	if e.Failed() != 1 || p.resent != 1 {
		t.Fatalf("failed = %d, resent = %d, want 1 and 1", e.Failed(), p.resent)
	}
	if len(w.drops) != 0 {
		t.Fatalf("effects ran for a failed transaction")
	}
}

func TestApplyRollback(t *testing.T) {
	good := inventory.NewContainer(1)
	bad := &failingInventory{Container: inventory.NewContainer(1), bad: 0}
	_ = good.SetItem(0, dirt)

	err := apply([]inventory.Action{
		&inventory.SlotChange{Inv: good, Slot: 0, From: dirt, To: inventory.Air},
		&inventory.SlotChange{Inv: bad, Slot: 0, From: inventory.Air, To: dirt},
	})
	if !errors.Is(err, errBadSlot) {
		t.Fatalf("got %v, want errBadSlot", err)
	}
	if it, _ := good.Item(0); !it.EqualExact(dirt) {
		t.Fatalf("slot was not rolled back: %v", it)
	}
}

func TestNormalSwapAndDrop(t *testing.T) {
	p := newPlayer()
	e, w := newEngine(t, p)
	_ = p.inv.SetItem(0, dirt)
	_ = p.inv.SetItem(1, stone)

	if err := e.Handle(normal(
		container(inventory.WindowInventory, 0, dirt, stone),
		container(inventory.WindowInventory, 1, stone, dirt.WithCount(60)),
		drop(dirt.WithCount(4)),
	)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it, _ := p.inv.Item(0); !it.EqualExact(stone) {
		t.Fatalf("slot 0 holds %v", it)
	}
	if it, _ := p.inv.Item(1); !it.EqualExact(dirt.WithCount(60)) {
		t.Fatalf("slot 1 holds %v", it)
	}
	if len(w.drops) != 1 || w.drops[0].Count != 4 {
		t.Fatalf("drops = %v", w.drops)
	}
}

func TestSquashChain(t *testing.T) {
	p := newPlayer()
	e, _ := newEngine(t, p)
	_ = p.inv.SetItem(0, dirt)

	// The cursor picks up the stack and puts it down again in another slot.
	if err := e.Handle(normal(
		container(inventory.WindowUI, inventory.SlotCursor, dirt, inventory.Air),
		container(inventory.WindowInventory, 0, dirt, inventory.Air),
		container(inventory.WindowUI, inventory.SlotCursor, inventory.Air, dirt),
		container(inventory.WindowInventory, 5, inventory.Air, dirt),
	)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it, _ := p.inv.Item(5); !it.EqualExact(dirt) {
		t.Fatalf("slot 5 holds %v", it)
	}
	if it, _ := p.ui.Item(inventory.SlotCursor); !it.Empty() {
		t.Fatalf("cursor holds %v", it)
	}
	if e.Failed() != 0 {
		t.Fatalf("transaction failed")
	}
}

func TestFailureEscalation(t *testing.T) {
	p := newPlayer()
	e, _ := newEngine(t, p)
	bad := normal(container(inventory.WindowInventory, 0, dirt, inventory.Air), drop(dirt))
	for i := 1; i <= 15; i++ {
		if err := e.Handle(bad); err != nil {
			t.Fatalf("failure %d closed the connection: %v", i, err)
		}
	}
	if err := e.Handle(bad); !errors.Is(err, ErrTooManyFailedTransactions) {
		t.Fatalf("failure 16: got %v, want ErrTooManyFailedTransactions", err)
	}
}

func TestFailureCounterResets(t *testing.T) {
	p := newPlayer()
	e, _ := newEngine(t, p)
	bad := normal(container(inventory.WindowInventory, 0, dirt, inventory.Air), drop(dirt))
	for i := 0; i < 10; i++ {
		_ = e.Handle(bad)
	}
	if err := e.Handle(normal()); err != nil {
		t.Fatal(err)
	}
	if e.Failed() != 0 {
		t.Fatalf("failed = %d after a successful transaction", e.Failed())
	}
}

func smithingStart() *packet.InventoryTransaction {
	return &packet.InventoryTransaction{
		Actions: []packet.NetworkInventoryAction{
			container(inventory.WindowUI, inventory.SlotSmithingEquipment, sword, inventory.Air),
			container(inventory.WindowUI, inventory.SlotSmithingIngredient, ingot, inventory.Air),
			container(inventory.WindowUI, inventory.SlotSmithingTemplate, template, inventory.Air),
			virtual(packet.WindowAnvilInput, 0, inventory.Air, sword),
			virtual(packet.WindowAnvilMaterial, 1, inventory.Air, ingot),
			virtual(packet.WindowAnvilMaterial, 3, inventory.Air, template),
		},
		RepairItemPart: true,
	}
}

func smithingPlayer() *fakePlayer {
	p := newPlayer()
	p.open = inventory.WindowTypeSmithing
	_ = p.ui.SetItem(inventory.SlotSmithingEquipment, sword)
	_ = p.ui.SetItem(inventory.SlotSmithingIngredient, ingot)
	_ = p.ui.SetItem(inventory.SlotSmithingTemplate, template)
	return p
}

func TestSmithingTwoMessages(t *testing.T) {
	p := smithingPlayer()
	e, w := newEngine(t, p)

	if err := e.Handle(smithingStart()); err != nil {
		t.Fatal(err)
	}
	if e.Pending() == nil || e.Pending().Kind() != KindSmithing {
		t.Fatalf("pending = %v, want smithing", e.Pending())
	}
	if it, _ := p.ui.Item(inventory.SlotSmithingEquipment); !it.EqualExact(sword) {
		t.Fatalf("smithing executed early")
	}

	if err := e.Handle(&packet.InventoryTransaction{
		Actions: []packet.NetworkInventoryAction{
			virtual(packet.WindowAnvilResult, 2, netherite, inventory.Air),
			container(inventory.WindowInventory, 0, inventory.Air, netherite),
		},
		RepairItemPart: true,
	}); err != nil {
		t.Fatal(err)
	}
	if e.Pending() != nil {
		t.Fatalf("pending transaction left after execution: %v", e.Pending().Kind())
	}
	if it, _ := p.inv.Item(0); !it.EqualExact(netherite) {
		t.Fatalf("inventory slot 0 holds %v, want %v", it, netherite)
	}
	for _, slot := range []int{inventory.SlotSmithingEquipment, inventory.SlotSmithingIngredient, inventory.SlotSmithingTemplate} {
		if it, _ := p.ui.Item(slot); !it.Empty() {
			t.Fatalf("UI slot %d holds %v", slot, it)
		}
	}
	if len(w.sounds) != 1 || w.sounds[0] != SoundSmithingTable {
		t.Fatalf("sounds = %v", w.sounds)
	}
	if p.resent != 0 {
		t.Fatalf("inventory resent after a successful transaction")
	}
}

func TestCrossKindInterruption(t *testing.T) {
	p := smithingPlayer()
	e, w := newEngine(t, p)
	if err := e.Handle(smithingStart()); err != nil {
		t.Fatal(err)
	}

	// The player switched to a grindstone without finishing the smithing.
	p.open = inventory.WindowTypeGrindstone
	_ = p.ui.SetItem(inventory.SlotGrindstoneInput, sword)
	if err := e.Handle(&packet.InventoryTransaction{
		Actions: []packet.NetworkInventoryAction{
			container(inventory.WindowUI, inventory.SlotGrindstoneInput, sword, inventory.Air),
			virtual(packet.WindowAnvilInput, 0, inventory.Air, sword),
			virtual(packet.WindowAnvilResult, 2, sword, inventory.Air),
			container(inventory.WindowInventory, 0, inventory.Air, sword),
		},
		RepairItemPart: true,
	}); err != nil {
		t.Fatal(err)
	}
	if e.Pending() != nil {
		t.Fatalf("pending = %v, want none", e.Pending().Kind())
	}
	if p.resent != 1 || p.closed != 1 {
		t.Fatalf("resent = %d, closed = %d, want 1 and 1", p.resent, p.closed)
	}
	if it, _ := p.ui.Item(inventory.SlotGrindstoneInput); !it.EqualExact(sword) {
		t.Fatalf("grindstone executed")
	}
	if it, _ := p.ui.Item(inventory.SlotSmithingEquipment); !it.EqualExact(sword) {
		t.Fatalf("smithing executed")
	}
	if len(w.sounds) != 0 {
		t.Fatalf("sounds = %v", w.sounds)
	}
}

func TestSmithingMismatchWorkaround(t *testing.T) {
	p := smithingPlayer()
	_ = p.inv.SetItem(0, dirt)
	e, _ := newEngine(t, p)

	if err := e.Handle(&packet.InventoryTransaction{TransactionType: packet.TransactionTypeMismatch}); err != nil {
		t.Fatal(err)
	}
	if it, _ := p.inv.Item(1); it.ID != netherite.ID {
		t.Fatalf("first free slot holds %v, want %v", it, netherite)
	}
	if it, _ := p.ui.Item(inventory.SlotSmithingEquipment); !it.Empty() {
		t.Fatalf("equipment left in UI: %v", it)
	}
	if e.Pending() != nil {
		t.Fatalf("pending transaction left")
	}
}

func TestSmithingMismatchNoFreeSlot(t *testing.T) {
	p := smithingPlayer()
	for i := 0; i < p.inv.Size(); i++ {
		_ = p.inv.SetItem(i, dirt)
	}
	e, _ := newEngine(t, p)
	if err := e.Handle(&packet.InventoryTransaction{TransactionType: packet.TransactionTypeMismatch}); err != nil {
		t.Fatal(err)
	}
	if p.resent != 1 {
		t.Fatalf("resent = %d, want 1", p.resent)
	}
	if it, _ := p.ui.Item(inventory.SlotSmithingEquipment); !it.EqualExact(sword) {
		t.Fatalf("UI changed: %v", it)
	}
}

func TestUnmatchedActionResends(t *testing.T) {
	p := newPlayer()
	e, _ := newEngine(t, p)
	if err := e.Handle(normal(container(99, 0, inventory.Air, dirt))); err != nil {
		t.Fatal(err)
	}
	if p.resent != 1 || e.Failed() != 0 {
		t.Fatalf("resent = %d, failed = %d", p.resent, e.Failed())
	}
}

func TestSpectatorResends(t *testing.T) {
	p := newPlayer()
	p.spectator = true
	_ = p.inv.SetItem(0, dirt)
	e, _ := newEngine(t, p)
	if err := e.Handle(normal(container(inventory.WindowInventory, 0, dirt, inventory.Air), drop(dirt))); err != nil {
		t.Fatal(err)
	}
	if it, _ := p.inv.Item(0); !it.EqualExact(dirt) || p.resent != 1 {
		t.Fatalf("spectator transaction executed")
	}
}

func TestSelfAttack(t *testing.T) {
	p := newPlayer()
	e, w := newEngine(t, p)
	w.entities[p.rid] = &fakeEntity{rid: p.rid}
	err := e.Handle(&packet.InventoryTransaction{
		TransactionType: packet.TransactionTypeUseItemOnEntity,
		UseItemOnEntity: packet.UseItemOnEntityData{TargetEntityRuntimeID: p.rid, ActionType: packet.UseItemOnEntityActionAttack},
	})
	if !errors.Is(err, ErrInvalidAttack) {
		t.Fatalf("got %v, want ErrInvalidAttack", err)
	}
}

func TestAttackReach(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		creative bool
		hits     int
	}{
		{"survival in reach", 4, false, 1},
		{"survival out of reach", 6, false, 0},
		{"creative in reach", 7, true, 1},
		{"creative out of reach", 9, true, 0},
	}
	for _, tt := range tests {
		p := newPlayer()
		p.creative = tt.creative
		e, w := newEngine(t, p)
		target := &fakeEntity{rid: 2, pos: mgl32.Vec3{tt.distance, 0, 0}}
		w.entities[2] = target
		if err := e.Handle(&packet.InventoryTransaction{
			TransactionType: packet.TransactionTypeUseItemOnEntity,
			UseItemOnEntity: packet.UseItemOnEntityData{TargetEntityRuntimeID: 2, ActionType: packet.UseItemOnEntityActionAttack},
		}); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if target.attacked != tt.hits {
			t.Errorf("%s: attacked %d times, want %d", tt.name, target.attacked, tt.hits)
		}
	}
}

func TestClickBlockSpam(t *testing.T) {
	p := newPlayer()
	e, w := newEngine(t, p)
	_ = p.inv.SetItem(0, stone)
	now := time.Unix(0, 0)
	e.now = func() time.Time { return now }

	click := &packet.InventoryTransaction{
		TransactionType: packet.TransactionTypeUseItem,
		UseItem: packet.UseItemData{
			ActionType:    packet.UseItemActionClickBlock,
			BlockPosition: protocol.BlockPos{1, 0, 0},
			BlockFace:     1,
			HeldItem:      stone.Stack(),
		},
	}
	_ = e.Handle(click)
	now = now.Add(50 * time.Millisecond)
	_ = e.Handle(click)
	if w.useOn != 1 {
		t.Fatalf("world used %d times, want 1", w.useOn)
	}
	now = now.Add(time.Second)
	_ = e.Handle(click)
	if w.useOn != 2 {
		t.Fatalf("world used %d times, want 2", w.useOn)
	}
	// The use was refused every time, so the clicked block and its neighbour were sent back.
	if len(w.sent) != 4 || w.sent[1] != (protocol.BlockPos{1, 1, 0}) {
		t.Fatalf("sent blocks = %v", w.sent)
	}
}

func TestReleaseWithoutUsing(t *testing.T) {
	p := newPlayer()
	e, _ := newEngine(t, p)
	_ = e.Handle(&packet.InventoryTransaction{TransactionType: packet.TransactionTypeReleaseItem})
	if p.resent != 1 || p.using {
		t.Fatalf("resent = %d, using = %v", p.resent, p.using)
	}
}

func TestHotbarSlotRange(t *testing.T) {
	tests := []struct {
		slot int32
		want int
		ok   bool
	}{
		{slot: 4, want: 4, ok: true},
		{slot: 8, want: 8, ok: true},
		{slot: -7, want: 2},
		{slot: 9, want: 2},
	}
	for _, tt := range tests {
		p := newPlayer()
		p.held = 2
		e, w := newEngine(t, p)
		target := &fakeEntity{rid: 2}
		w.entities[2] = target

		pks := []*packet.InventoryTransaction{
			{
				TransactionType: packet.TransactionTypeUseItem,
				UseItem:         packet.UseItemData{ActionType: packet.UseItemActionClickAir, HotBarSlot: tt.slot},
			},
			{
				TransactionType: packet.TransactionTypeUseItemOnEntity,
				UseItemOnEntity: packet.UseItemOnEntityData{TargetEntityRuntimeID: 2, ActionType: packet.UseItemOnEntityActionAttack, HotBarSlot: tt.slot},
			},
		}
		for _, pk := range pks {
			if err := e.Handle(pk); err != nil {
				t.Fatalf("slot %d: %v", tt.slot, err)
			}
		}
		if p.held != tt.want {
			t.Fatalf("slot %d: held slot %d, want %d", tt.slot, p.held, tt.want)
		}
		if !tt.ok && (p.heldResent != 2 || target.attacked != 0) {
			t.Fatalf("slot %d: held resent %d times, attacked %d times", tt.slot, p.heldResent, target.attacked)
		}
	}
}
