package network

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
)

// Descriptor describes a registered packet.
type Descriptor struct {
	ID   uint32
	Name string
	New  func() packet.Packet
}

// Pool is an immutable table of packet descriptors keyed by packet ID. Pools are never mutated after
// Build, so they may be read from any number of goroutines.
type Pool struct {
	version     proto.Version
	descriptors map[uint32]Descriptor
}

// Get ...
func (p *Pool) Get(id uint32) (Descriptor, bool) {
	d, ok := p.descriptors[id]
	return d, ok
}

// Len ...
func (p *Pool) Len() int {
	return len(p.descriptors)
}

// IDs returns the registered IDs in ascending order.
func (p *Pool) IDs() []uint32 {
	return slices.Sorted(maps.Keys(p.descriptors))
}

// Version returns the lowest version the pool was built for.
func (p *Pool) Version() proto.Version {
	return p.version
}

// Builder returns a builder seeded with a copy of the pool's descriptors.
func (p *Pool) Builder() *Builder {
	return &Builder{version: p.version, descriptors: maps.Clone(p.descriptors)}
}

// Builder assembles a Pool. Every difference between two pools is an explicit Register or Deregister
// call on a builder.
type Builder struct {
	version     proto.Version
	descriptors map[uint32]Descriptor
}

// NewBuilder ...
func NewBuilder(v proto.Version) *Builder {
	return &Builder{version: v, descriptors: make(map[uint32]Descriptor)}
}

// Register adds the packet created by f under its own ID, replacing any previous registration. It
// panics if the ID does not fit the packet header.
func (b *Builder) Register(f func() packet.Packet) *Builder {
	pk := f()
	id := pk.ID()
	if id > proto.MaxPacketID {
		panic(fmt.Sprintf("packet %s has ID %d above %d", packet.Name(pk), id, proto.MaxPacketID))
	}
	b.descriptors[id] = Descriptor{ID: id, Name: packet.Name(pk), New: f}
	return b
}

// Deregister removes the packet with the ID passed.
func (b *Builder) Deregister(id uint32) *Builder {
	delete(b.descriptors, id)
	return b
}

// Version sets the version of the pool built.
func (b *Builder) Version(v proto.Version) *Builder {
	b.version = v
	return b
}

// Build returns a Pool holding a snapshot of the builder's descriptors. The builder may be reused.
func (b *Builder) Build() *Pool {
	return &Pool{version: b.version, descriptors: maps.Clone(b.descriptors)}
}

// Registry selects the pool of a connection by its version. Versions below the cutoff share the legacy
// pool, all others share the current pool. Mutations build a new pool and publish it atomically, so
// readers observe either the old or the new table, never a mix.
type Registry struct {
	cutoff proto.Version

	legacy  atomic.Pointer[Pool]
	current atomic.Pointer[Pool]

	initialLegacy  *Pool
	initialCurrent *Pool
	mu             sync.Mutex
}

// NewRegistry ...
func NewRegistry(cutoff proto.Version, legacy, current *Pool) *Registry {
	r := &Registry{cutoff: cutoff, initialLegacy: legacy, initialCurrent: current}
	r.legacy.Store(legacy)
	r.current.Store(current)
	return r
}

// Cutoff returns the first version served by the current pool.
func (r *Registry) Cutoff() proto.Version {
	return r.cutoff
}

func (r *Registry) slot(v proto.Version) *atomic.Pointer[Pool] {
	if v.Resolve() >= r.cutoff {
		return &r.current
	}
	return &r.legacy
}

// Pool returns the pool serving v.
func (r *Registry) Pool(v proto.Version) *Pool {
	return r.slot(v).Load()
}

// Get looks up a packet ID for v.
func (r *Registry) Get(v proto.Version, id uint32) (Descriptor, bool) {
	return r.Pool(v).Get(id)
}

// SetPool replaces the pool serving v.
func (r *Registry) SetPool(v proto.Version, p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(v).Store(p)
}

// Update derives a new pool for v from the live one and publishes it.
func (r *Registry) Update(v proto.Version, f func(b *Builder)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slot(v)
	b := slot.Load().Builder()
	f(b)
	slot.Store(b.Build())
}

// Register adds a packet to the pool serving v.
func (r *Registry) Register(v proto.Version, f func() packet.Packet) {
	r.Update(v, func(b *Builder) {
		b.Register(f)
	})
}

// Deregister removes a packet from the pool serving v.
func (r *Registry) Deregister(v proto.Version, id uint32) {
	r.Update(v, func(b *Builder) {
		b.Deregister(id)
	})
}

// Reset restores the pool serving v to the one the registry was created with.
func (r *Registry) Reset(v proto.Version) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Resolve() >= r.cutoff {
		r.current.Store(r.initialCurrent)
	} else {
		r.legacy.Store(r.initialLegacy)
	}
}
