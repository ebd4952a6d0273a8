package session

import (
	"slices"
	"sync"

	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/scylladb/go-set/i32set"
)

// Tracker keeps track of the block UIs and containers a client has open.
type Tracker struct {
	windows    *i32set.Set
	types      map[int32]inventory.WindowType
	containers map[int32]inventory.Inventory
	openType   inventory.WindowType
	mu         sync.RWMutex
}

// NewTracker ...
func NewTracker() *Tracker {
	return &Tracker{
		windows:    i32set.New(),
		types:      make(map[int32]inventory.WindowType),
		containers: make(map[int32]inventory.Inventory),
	}
}

// Open marks the window passed as open. A non-nil inv is returned by Container for id until it is closed.
func (t *Tracker) Open(id int32, typ inventory.WindowType, inv inventory.Inventory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows.Add(id)
	t.types[id] = typ
	if inv != nil {
		t.containers[id] = inv
	}
	if typ != inventory.WindowTypeContainer {
		t.openType = typ
	}
}

// Close marks the window passed as closed and reports whether it was open.
func (t *Tracker) Close(id int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.windows.Has(id) {
		return false
	}
	t.windows.Remove(id)
	if t.types[id] == t.openType {
		t.openType = inventory.WindowTypeNone
	}
	delete(t.types, id)
	delete(t.containers, id)
	return true
}

// IsOpen ...
func (t *Tracker) IsOpen(id int32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.windows.Has(id)
}

// OpenType returns the type of the block UI open, or WindowTypeNone.
func (t *Tracker) OpenType() inventory.WindowType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.openType
}

// Container returns the inventory of an open container window.
func (t *Tracker) Container(id int32) (inventory.Inventory, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	inv, ok := t.containers[id]
	return inv, ok
}

// Windows returns the IDs of every open window in ascending order.
func (t *Tracker) Windows() []int32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.windows.List()
	slices.Sort(ids)
	return ids
}

// Clear closes every window and returns the IDs that were open.
func (t *Tracker) Clear() []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.windows.List()
	slices.Sort(ids)
	t.windows.Clear()
	clear(t.types)
	clear(t.containers)
	t.openType = inventory.WindowTypeNone
	return ids
}

func (t *Tracker) handlePacket(pk packet.Packet) {
	switch pk := pk.(type) {
	case *packet.ContainerOpen:
		t.Open(int32(pk.WindowID), inventory.WindowTypeFromContainer(pk.ContainerType), nil)
	case *packet.ContainerClose:
		t.Close(int32(pk.WindowID))
	}
}
