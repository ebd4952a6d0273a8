package session

import (
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/transaction"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	gtpacket "github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Game modes a player can be in.
const (
	GameModeSurvival  int32 = 0
	GameModeCreative  int32 = 1
	GameModeAdventure int32 = 2
	GameModeSpectator int32 = 6
)

var (
	_ transaction.Player = (*Session)(nil)
	_ transaction.Entity = (*Session)(nil)
)

// Window ...
func (s *Session) Window(id int32) (inventory.Inventory, bool) {
	switch id {
	case inventory.WindowInventory:
		return s.inventory, true
	case inventory.WindowArmour:
		return s.armour, true
	case inventory.WindowOffhand:
		return s.offhand, true
	case inventory.WindowUI:
		return s.ui, true
	}
	return s.tracker.Container(id)
}

// OpenType ...
func (s *Session) OpenType() inventory.WindowType {
	return s.tracker.OpenType()
}

// Creative ...
func (s *Session) Creative() bool {
	return s.gameMode.Load() == GameModeCreative
}

// Spectator ...
func (s *Session) Spectator() bool {
	return s.gameMode.Load() == GameModeSpectator
}

// GameMode ...
func (s *Session) GameMode() int32 {
	return s.gameMode.Load()
}

// SetGameMode changes the game mode of the player and notifies the client.
func (s *Session) SetGameMode(mode int32) error {
	s.gameMode.Store(mode)
	return s.WritePacket(packet.Fixed{Packet: &gtpacket.SetPlayerGameType{GameType: mode}})
}

// Name returns the name the session is registered under.
func (s *Session) Name() string {
	return s.name
}

// RuntimeID ...
func (s *Session) RuntimeID() uint64 {
	return s.rid
}

// Position returns the last eye position reported by the client.
func (s *Session) Position() mgl32.Vec3 {
	return *s.position.Load()
}

// Alive ...
func (s *Session) Alive() bool {
	return !s.dead.Load()
}

// Kill marks the player as dead and shows the respawn screen. The player is alive again once the client
// asks to respawn.
func (s *Session) Kill() error {
	if s.dead.Swap(true) {
		return nil
	}
	return s.WritePacket(packet.Fixed{Packet: &gtpacket.Respawn{
		Position:        s.Position(),
		State:           gtpacket.RespawnStateSearchingForSpawn,
		EntityRuntimeID: s.rid,
	}})
}

// Inventory ...
func (s *Session) Inventory() *inventory.Container {
	return s.inventory
}

// Armour ...
func (s *Session) Armour() *inventory.Container {
	return s.armour
}

// Offhand ...
func (s *Session) Offhand() *inventory.Container {
	return s.offhand
}

// HeldSlot ...
func (s *Session) HeldSlot() int {
	return int(s.heldSlot.Load())
}

// SetHeldSlot ...
func (s *Session) SetHeldSlot(slot int) {
	s.heldSlot.Store(int32(slot))
}

// HeldItem ...
func (s *Session) HeldItem() inventory.Item {
	it, _ := s.inventory.Item(s.HeldSlot())
	return it
}

// SetHeldItem ...
func (s *Session) SetHeldItem(it inventory.Item) {
	if err := s.inventory.SetItem(s.HeldSlot(), it); err != nil {
		s.logger.Error("failed to set held item", "err", err)
	}
}

// UsingItem ...
func (s *Session) UsingItem() bool {
	return s.using
}

// SetUsingItem ...
func (s *Session) SetUsingItem(using bool) {
	s.using = using
}

// OpenWindow opens a block UI or container for the client. inv is nil for block UIs without inventory of
// their own.
func (s *Session) OpenWindow(id byte, containerType byte, pos protocol.BlockPos, inv inventory.Inventory) error {
	s.tracker.Open(int32(id), inventory.WindowTypeFromContainer(containerType), inv)
	pks := []packet.Packet{&packet.ContainerOpen{
		WindowID:                id,
		ContainerType:           containerType,
		ContainerPosition:       pos,
		ContainerEntityUniqueID: -1,
	}}
	if inv != nil {
		pks = append(pks, content(int32(id), inv))
	}
	return s.WritePackets(pks...)
}

// CloseWindows ...
func (s *Session) CloseWindows() {
	for _, id := range s.tracker.Clear() {
		if err := s.WritePacket(&packet.ContainerClose{WindowID: byte(id), ServerSide: true}); err != nil {
			s.logger.Debug("failed to close window", "window", id, "err", err)
		}
	}
}

// ResendInventory ...
func (s *Session) ResendInventory() {
	s.resendInventory = true
}

// ResendHeldItem ...
func (s *Session) ResendHeldItem() {
	s.resendHeld = true
}

// Interact ...
func (s *Session) Interact(transaction.Player, inventory.Item, mgl32.Vec3) bool {
	return false
}

// Attack ...
func (s *Session) Attack(p transaction.Player, held inventory.Item) bool {
	if !s.Alive() {
		return false
	}
	s.logger.Debug("attacked by player", "attacker", p.Name(), "item", held)
	return true
}
