package world

import (
	"log/slog"

	"github.com/cooldogedev/prism/internal"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
	"github.com/cooldogedev/prism/transaction"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	gtpacket "github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Viewer is a player that can be sent packets.
type Viewer interface {
	WritePacket(pk packet.Packet) error
}

// Drop is an item thrown into the world.
type Drop struct {
	Owner    uint64
	Item     inventory.Item
	Position mgl32.Vec3
}

// World is an in-memory world of blocks and entities. It implements transaction.World.
type World struct {
	loop   *Loop
	logger *slog.Logger

	// The fields below are only accessed on the loop.
	blocks     map[protocol.BlockPos]palette.Legacy
	entities   map[uint64]transaction.Entity
	drops      []Drop
	experience map[uint64]int
}

// New returns a World whose loop buffers up to queue functions.
func New(queue int, logger *slog.Logger) *World {
	return &World{
		loop:       NewLoop(queue, logger),
		logger:     logger,
		blocks:     make(map[protocol.BlockPos]palette.Legacy),
		entities:   make(map[uint64]transaction.Entity),
		experience: make(map[uint64]int),
	}
}

// Close stops the world's loop.
func (w *World) Close() {
	w.loop.Close()
}

// Exec ...
func (w *World) Exec(f func()) {
	w.loop.Exec(f)
}

// SetBlock places b at pos. The zero Legacy removes the block.
func (w *World) SetBlock(pos protocol.BlockPos, b palette.Legacy) {
	w.loop.Do(func() {
		if b == (palette.Legacy{}) {
			delete(w.blocks, pos)
			return
		}
		w.blocks[pos] = b
	})
}

// Block returns the block at pos.
func (w *World) Block(pos protocol.BlockPos) (b palette.Legacy, ok bool) {
	w.loop.Do(func() {
		b, ok = w.blocks[pos]
	})
	return b, ok
}

// AddEntity ...
func (w *World) AddEntity(e transaction.Entity) {
	w.loop.Do(func() {
		w.entities[e.RuntimeID()] = e
	})
}

// RemoveEntity ...
func (w *World) RemoveEntity(rid uint64) {
	w.loop.Do(func() {
		delete(w.entities, rid)
	})
}

// Entity ...
func (w *World) Entity(rid uint64) (e transaction.Entity, ok bool) {
	w.loop.Do(func() {
		e, ok = w.entities[rid]
	})
	return e, ok
}

// UseItemOn places the block the held item carries against the clicked face.
func (w *World) UseItemOn(p transaction.Player, pos protocol.BlockPos, face int32, _ mgl32.Vec3, held inventory.Item) (res inventory.Item, ok bool) {
	if held.Empty() || held.Block == (palette.Legacy{}) {
		return held, false
	}
	w.loop.Do(func() {
		target := protocol.BlockPos(internal.Side(pos, face))
		if _, taken := w.blocks[target]; taken {
			return
		}
		w.blocks[target] = held.Block
		w.write(p, &packet.UpdateBlock{Position: target, Block: held.Block, Flags: packet.BlockUpdateNetwork})
		res, ok = held.Decrement(1), true
	})
	return res, ok
}

// UseBreakOn removes the block at pos.
func (w *World) UseBreakOn(p transaction.Player, pos protocol.BlockPos, _ int32, held inventory.Item) (res inventory.Item, ok bool) {
	w.loop.Do(func() {
		if _, exists := w.blocks[pos]; !exists {
			return
		}
		delete(w.blocks, pos)
		w.write(p, &packet.UpdateBlock{Position: pos, Flags: packet.BlockUpdateNetwork})
		res, ok = held, true
	})
	return res, ok
}

// UseItemInAir ...
func (w *World) UseItemInAir(_ transaction.Player, held inventory.Item) (inventory.Item, bool) {
	return held, !held.Empty()
}

// FinishUsingItem ...
func (w *World) FinishUsingItem(_ transaction.Player, held inventory.Item) bool {
	return !held.Empty()
}

// ReleaseItem ...
func (w *World) ReleaseItem(_ transaction.Player, held inventory.Item) bool {
	return !held.Empty()
}

// SendBlocks ...
func (w *World) SendBlocks(p transaction.Player, positions ...protocol.BlockPos) {
	w.loop.Do(func() {
		for _, pos := range positions {
			w.write(p, &packet.UpdateBlock{Position: pos, Block: w.blocks[pos], Flags: packet.BlockUpdateNetwork})
		}
	})
}

// DropItem ...
func (w *World) DropItem(p transaction.Player, it inventory.Item) {
	w.drops = append(w.drops, Drop{Owner: p.RuntimeID(), Item: it, Position: p.Position()})
	w.logger.Debug("dropped item", "player", p.Name(), "item", it)
}

// PlaySound ...
func (w *World) PlaySound(p transaction.Player, s transaction.Sound) {
	w.write(p, packet.Fixed{Packet: &gtpacket.PlaySound{
		SoundName: string(s),
		Position:  p.Position(),
		Volume:    1,
		Pitch:     1,
	}})
}

// AddExperience ...
func (w *World) AddExperience(p transaction.Player, amount int) {
	w.experience[p.RuntimeID()] += amount
}

// Drops returns the items dropped so far.
func (w *World) Drops() (drops []Drop) {
	w.loop.Do(func() {
		drops = append(drops, w.drops...)
	})
	return drops
}

// Experience returns the experience granted to the player with the runtime ID passed.
func (w *World) Experience(rid uint64) (n int) {
	w.loop.Do(func() {
		n = w.experience[rid]
	})
	return n
}

func (w *World) write(p transaction.Player, pk packet.Packet) {
	v, ok := p.(Viewer)
	if !ok {
		return
	}
	if err := v.WritePacket(pk); err != nil {
		w.logger.Debug("failed to write packet", "player", p.Name(), "err", err)
	}
}
