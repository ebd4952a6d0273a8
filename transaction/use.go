package transaction

import (
	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/internal"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	blockReachCreative  = 13
	blockReachSurvival  = 7
	attackReachCreative = 8
	attackReachSurvival = 5
	// interactDistanceSquared is the squared distance up to which entities can be interacted with.
	interactDistanceSquared = 256
	// resendDistanceSquared is the squared distance up to which refused blocks are sent again.
	resendDistanceSquared = 10000
)

func (e *Engine) useItem(d *packet.UseItemData) {
	p := e.env.Player
	if !e.equip(d.HotBarSlot) {
		return
	}
	switch d.ActionType {
	case packet.UseItemActionClickBlock:
		e.clickBlock(d)
	case packet.UseItemActionBreakBlock:
		e.breakBlock(d)
	case packet.UseItemActionClickAir:
		e.clickAir(d)
	default:
		e.logger.Debug("unknown use item action", "player", p.Name(), "action", d.ActionType)
	}
}

// equip selects the hotbar slot the client acted with. Slots outside the hotbar are refused and the held
// item is sent again.
func (e *Engine) equip(slot int32) bool {
	p := e.env.Player
	if !inventory.HotbarSlot(int(slot)) {
		e.logger.Debug("client used an invalid hotbar slot", "player", p.Name(), "slot", slot)
		p.ResendHeldItem()
		return false
	}
	if int(slot) != p.HeldSlot() {
		p.SetHeldSlot(int(slot))
	}
	return true
}

func (e *Engine) spamming(pos protocol.BlockPos) bool {
	now := e.now()
	last, lastTime := e.lastClick, e.lastClickTime
	e.lastClick, e.lastClickTime = &pos, now
	if last == nil || now.Sub(lastTime) >= e.conf.SpamWindow {
		return false
	}
	return internal.DistanceSquared(internal.BlockVec(pos), internal.BlockVec(*last)) < e.conf.SpamDistanceSquared
}

func (e *Engine) clickBlock(d *packet.UseItemData) {
	p := e.env.Player
	held := p.HeldItem()
	// Clicking the same block again right away is the client repeating its input, unless a block is
	// being placed.
	if e.spamming(d.BlockPosition) && held.Block == (palette.Legacy{}) {
		return
	}

	if internal.WithinReach(p.Position(), internal.BlockVec(d.BlockPosition), e.blockReach()) {
		ctx := event.NewContext()
		e.handler.HandleItemUseOnBlock(ctx, p, d.BlockPosition, d.BlockFace, held)
		if !ctx.Cancelled() {
			if p.Creative() {
				if _, ok := e.world.UseItemOn(p, d.BlockPosition, d.BlockFace, d.ClickedPosition, held); ok {
					return
				}
			} else if held.Equal(inventory.FromStack(d.HeldItem)) {
				if res, ok := e.world.UseItemOn(p, d.BlockPosition, d.BlockFace, d.ClickedPosition, held); ok {
					e.updateHeld(held, res)
					return
				}
			} else {
				p.ResendHeldItem()
			}
		}
	}

	if internal.DistanceSquared(p.Position(), internal.BlockVec(d.BlockPosition)) > resendDistanceSquared {
		return
	}
	e.world.SendBlocks(p, d.BlockPosition, internal.Side(d.BlockPosition, d.BlockFace))
}

func (e *Engine) breakBlock(d *packet.UseItemData) {
	p := e.env.Player
	held := p.HeldItem()
	if internal.WithinReach(p.Position(), internal.BlockCentre(d.BlockPosition), e.blockReach()) {
		ctx := event.NewContext()
		e.handler.HandleBlockBreak(ctx, p, d.BlockPosition, held)
		if !ctx.Cancelled() {
			if res, ok := e.world.UseBreakOn(p, d.BlockPosition, d.BlockFace, held); ok {
				if !p.Creative() {
					e.updateHeld(held, res)
				}
				return
			}
		}
	}

	p.ResendInventory()
	p.ResendHeldItem()
	if internal.DistanceSquared(p.Position(), internal.BlockVec(d.BlockPosition)) > resendDistanceSquared {
		return
	}
	e.world.SendBlocks(p, d.BlockPosition)
}

func (e *Engine) clickAir(d *packet.UseItemData) {
	p := e.env.Player
	held := p.HeldItem()
	if !held.Equal(inventory.FromStack(d.HeldItem)) {
		p.ResendHeldItem()
		return
	}

	ctx := event.NewContext()
	e.handler.HandleItemUse(ctx, p, held)
	if ctx.Cancelled() {
		p.ResendHeldItem()
		return
	}
	res, ok := e.world.UseItemInAir(p, held)
	if !ok {
		return
	}
	if !p.Creative() {
		e.updateHeld(held, res)
	}
	if !p.UsingItem() {
		p.SetUsingItem(true)
		return
	}
	p.SetUsingItem(false)
	if !e.world.FinishUsingItem(p, p.HeldItem()) {
		p.ResendInventory()
	}
}

// updateHeld replaces the held item with what is left of it after being used.
func (e *Engine) updateHeld(held, res inventory.Item) {
	if res.EqualExact(held) {
		return
	}
	p := e.env.Player
	if res.Empty() || res.ID == held.ID {
		p.SetHeldItem(res)
		return
	}
	e.logger.Debug("item changed kind after use", "player", p.Name(), "held", held, "result", res)
	p.ResendHeldItem()
}

func (e *Engine) useItemOnEntity(d *packet.UseItemOnEntityData) error {
	p := e.env.Player
	target, ok := e.world.Entity(d.TargetEntityRuntimeID)
	if !ok {
		return nil
	}
	if !e.equip(d.HotBarSlot) {
		return nil
	}
	held := p.HeldItem()
	if !held.Equal(inventory.FromStack(d.HeldItem)) {
		p.ResendHeldItem()
	}

	switch d.ActionType {
	case packet.UseItemOnEntityActionInteract:
		if internal.DistanceSquared(p.Position(), target.Position()) > interactDistanceSquared {
			e.logger.Debug("entity too far away to interact with", "player", p.Name(), "entity", target.RuntimeID())
			return nil
		}
		p.SetUsingItem(false)
		ctx := event.NewContext()
		e.handler.HandleEntityInteract(ctx, p, target, held)
		if ctx.Cancelled() {
			return nil
		}
		if target.Interact(p, held, d.ClickedPosition) && !p.Creative() {
			p.SetHeldItem(held.Decrement(1))
		}
	case packet.UseItemOnEntityActionAttack:
		if target.RuntimeID() == p.RuntimeID() {
			return ErrInvalidAttack
		}
		if !internal.WithinReach(p.Position(), target.Position(), e.attackReach()) {
			return nil
		}
		if other, ok := target.(Player); ok && (!e.conf.AllowPvP || other.Creative()) {
			return nil
		}
		p.SetUsingItem(false)
		ctx := event.NewContext()
		e.handler.HandleAttackEntity(ctx, p, target, held)
		if ctx.Cancelled() {
			return nil
		}
		target.Attack(p, held)
	default:
		e.logger.Debug("unknown use item on entity action", "player", p.Name(), "action", d.ActionType)
	}
	return nil
}

func (e *Engine) releaseItem(d *packet.ReleaseItemData) {
	p := e.env.Player
	defer p.SetUsingItem(false)
	if d.ActionType != packet.ReleaseItemActionRelease {
		e.logger.Debug("unhandled release item action", "player", p.Name(), "action", d.ActionType)
		return
	}
	if !p.UsingItem() {
		p.ResendInventory()
		return
	}
	held := p.HeldItem()
	ctx := event.NewContext()
	e.handler.HandleItemRelease(ctx, p, held)
	if ctx.Cancelled() || !e.world.ReleaseItem(p, held) {
		p.ResendInventory()
	}
}

func (e *Engine) blockReach() float32 {
	if e.env.Player.Creative() {
		return blockReachCreative
	}
	return blockReachSurvival
}

func (e *Engine) attackReach() float32 {
	if e.env.Player.Creative() {
		return attackReachCreative
	}
	return attackReachSurvival
}
