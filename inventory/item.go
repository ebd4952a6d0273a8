package inventory

import (
	"bytes"
	"fmt"

	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
)

// Item is a stack of items held in an inventory slot.
type Item struct {
	ID    int32
	Meta  uint32
	Count int
	// Block is the block the item places, if any.
	Block palette.Legacy
	// NBT holds the opaque user data of the item. Two items only stack if their NBT is equal.
	NBT []byte
}

// Air is the empty item.
var Air = Item{}

// NewItem ...
func NewItem(id int32, meta uint32, count int) Item {
	return Item{ID: id, Meta: meta, Count: count}
}

// Empty reports whether the item is air or has no count left.
func (i Item) Empty() bool {
	return i.ID == 0 || i.Count <= 0
}

// Equal reports whether i and o are the same kind of item, ignoring their counts.
func (i Item) Equal(o Item) bool {
	if i.Empty() || o.Empty() {
		return i.Empty() && o.Empty()
	}
	return i.ID == o.ID && i.Meta == o.Meta && bytes.Equal(i.NBT, o.NBT)
}

// EqualExact reports whether i and o are equal including their counts.
func (i Item) EqualExact(o Item) bool {
	return i.Equal(o) && (i.Empty() || i.Count == o.Count)
}

// WithCount returns a copy of i with the count passed. A count of zero or less returns Air.
func (i Item) WithCount(n int) Item {
	if n <= 0 {
		return Air
	}
	i.Count = n
	return i
}

// Decrement returns a copy of i with n fewer items.
func (i Item) Decrement(n int) Item {
	return i.WithCount(i.Count - n)
}

// String ...
func (i Item) String() string {
	if i.Empty() {
		return "air"
	}
	return fmt.Sprintf("%d:%d x%d", i.ID, i.Meta, i.Count)
}

// FromStack converts a network item stack.
func FromStack(s packet.ItemStack) Item {
	if s.Air() {
		return Air
	}
	return Item{ID: s.NetworkID, Meta: s.Meta, Count: int(s.Count), Block: s.Block, NBT: s.UserData}
}

// Stack converts the item to a network item stack.
func (i Item) Stack() packet.ItemStack {
	if i.Empty() {
		return packet.ItemStack{}
	}
	return packet.ItemStack{NetworkID: i.ID, Meta: i.Meta, Count: uint16(i.Count), Block: i.Block, UserData: i.NBT}
}
