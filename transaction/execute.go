package transaction

import (
	"errors"
	"fmt"

	"github.com/cooldogedev/prism/inventory"
)

var (
	// ErrUnbalanced is returned when a transaction does not put back exactly what it takes out.
	ErrUnbalanced = errors.New("transaction is not balanced")
	// ErrBrokenChain is returned when several actions change the same slot in an order that cannot be
	// followed.
	ErrBrokenChain = errors.New("slot changes do not chain")
)

// execute validates and applies the actions of p in one pass. Either every slot change is applied or
// none is.
func execute(p Pending, env Env) ([]inventory.Action, error) {
	actions, err := squash(p.Actions())
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if err := a.Validate(env.Player); err != nil {
			return nil, err
		}
	}
	if err := balance(actions); err != nil {
		return nil, err
	}
	if err := p.check(env); err != nil {
		return nil, err
	}
	if err := apply(actions); err != nil {
		return nil, err
	}
	return actions, nil
}

type slotKey struct {
	inv  inventory.Inventory
	slot int
}

// squash merges the slot changes that touch the same slot into one change from the first source to the
// last target.
func squash(actions []inventory.Action) ([]inventory.Action, error) {
	groups := make(map[slotKey][]*inventory.SlotChange)
	var order []slotKey
	out := make([]inventory.Action, 0, len(actions))
	for _, a := range actions {
		s, ok := a.(*inventory.SlotChange)
		if !ok {
			out = append(out, a)
			continue
		}
		k := slotKey{inv: s.Inv, slot: s.Slot}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		merged, err := chain(group)
		if err != nil {
			return nil, err
		}
		out = append(out, merged)
	}
	return out, nil
}

// chain follows the changes of one slot starting from the item the slot currently holds.
func chain(group []*inventory.SlotChange) (*inventory.SlotChange, error) {
	live, err := group[0].Inv.Item(group[0].Slot)
	if err != nil {
		return nil, err
	}
	used := make([]bool, len(group))
	var first *inventory.SlotChange
	cur := live
	for n := 0; n < len(group); n++ {
		next := -1
		for i, s := range group {
			if !used[i] && s.From.EqualExact(cur) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w: window %d slot %d", ErrBrokenChain, group[0].Window, group[0].Slot)
		}
		used[next] = true
		if first == nil {
			first = group[next]
		}
		cur = group[next].To
	}
	return &inventory.SlotChange{Window: first.Window, Inv: first.Inv, Slot: first.Slot, From: first.From, To: cur}, nil
}

type stackKey struct {
	id   int32
	meta uint32
	nbt  string
}

// balance checks that the items taken out by the actions equal the items put in.
func balance(actions []inventory.Action) error {
	counts := make(map[stackKey]int)
	add := func(it inventory.Item, n int) {
		if it.Empty() {
			return
		}
		counts[stackKey{id: it.ID, meta: it.Meta, nbt: string(it.NBT)}] += n * it.Count
	}
	for _, a := range actions {
		add(a.Source(), 1)
		add(a.Target(), -1)
	}
	for k, n := range counts {
		if n != 0 {
			return fmt.Errorf("%w: %d:%d off by %d", ErrUnbalanced, k.id, k.meta, n)
		}
	}
	return nil
}

type undo struct {
	change *inventory.SlotChange
	prev   inventory.Item
}

// apply writes every slot change, restoring the slots already written if one fails.
func apply(actions []inventory.Action) error {
	applied := make([]undo, 0, len(actions))
	for _, a := range actions {
		s, ok := a.(*inventory.SlotChange)
		if !ok {
			continue
		}
		prev, err := s.Inv.Item(s.Slot)
		if err == nil {
			err = s.Apply()
		}
		if err != nil {
			for i := len(applied) - 1; i >= 0; i-- {
				_ = applied[i].change.Inv.SetItem(applied[i].change.Slot, applied[i].prev)
			}
			return err
		}
		applied = append(applied, undo{change: s, prev: prev})
	}
	return nil
}
