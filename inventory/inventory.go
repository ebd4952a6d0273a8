package inventory

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrSlotOutOfRange is returned when accessing a slot outside an inventory.
var ErrSlotOutOfRange = errors.New("slot out of range")

// Inventory is a fixed size collection of item slots.
type Inventory interface {
	Size() int
	Item(slot int) (Item, error)
	SetItem(slot int, it Item) error
}

// Container is a slice backed Inventory safe for concurrent use.
type Container struct {
	mu    sync.RWMutex
	items []Item
}

// NewContainer ...
func NewContainer(size int) *Container {
	return &Container{items: make([]Item, size)}
}

// Size ...
func (c *Container) Size() int {
	return len(c.items)
}

// Item ...
func (c *Container) Item(slot int) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if slot < 0 || slot >= len(c.items) {
		return Air, fmt.Errorf("%w: %d of %d", ErrSlotOutOfRange, slot, len(c.items))
	}
	return c.items[slot], nil
}

// SetItem ...
func (c *Container) SetItem(slot int, it Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.items) {
		return fmt.Errorf("%w: %d of %d", ErrSlotOutOfRange, slot, len(c.items))
	}
	if it.Empty() {
		it = Air
	}
	c.items[slot] = it
	return nil
}

// Contents returns a snapshot of every slot.
func (c *Container) Contents() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// SetContents replaces every slot. Items beyond the container's size are ignored.
func (c *Container) SetContents(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	copy(c.items, items)
}

// FirstEmpty returns the first empty slot, or -1 if the container is full.
func (c *Container) FirstEmpty() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, it := range c.items {
		if it.Empty() {
			return i
		}
	}
	return -1
}
