package palette

import (
	"fmt"

	proto "github.com/cooldogedev/prism/protocol"
)

// DataBits is the number of bits the variant occupies in a full legacy ID.
const DataBits = 6

const dataMask = 1<<DataBits - 1

// Legacy is the stable, version independent identity of a block state.
type Legacy struct {
	Type    uint32
	Variant uint32
}

// FullID packs the identity into a single integer. Variants wider than DataBits do not survive the
// packing, so lookups never go through it.
func (l Legacy) FullID() uint32 {
	return l.Type<<DataBits | l.Variant&dataMask
}

// FromFullID unpacks an identity packed by Legacy.FullID.
func FromFullID(id uint32) Legacy {
	return Legacy{Type: id >> DataBits, Variant: id & dataMask}
}

// String ...
func (l Legacy) String() string {
	return fmt.Sprintf("%d:%d", l.Type, l.Variant)
}

// Palette maps block states of a single anchor version to their runtime IDs. Runtime IDs are dense and
// follow the order of the source table, so the same table always produces the same IDs. A Palette is
// immutable once built.
type Palette struct {
	version proto.Version
	runtime map[Legacy]uint32
	legacy  []Legacy
	names   []string
}

// New builds a palette from the ordered entries passed. When a state occurs more than once, lookups by
// legacy identity return its first runtime ID.
func New(v proto.Version, entries []Entry) *Palette {
	p := &Palette{
		version: v,
		runtime: make(map[Legacy]uint32, len(entries)),
		legacy:  make([]Legacy, len(entries)),
		names:   make([]string, len(entries)),
	}
	for i, e := range entries {
		l := e.Legacy()
		p.legacy[i] = l
		p.names[i] = e.Name
		if _, ok := p.runtime[l]; !ok {
			p.runtime[l] = uint32(i)
		}
	}
	return p
}

// Version returns the anchor version the palette was built for.
func (p *Palette) Version() proto.Version {
	return p.version
}

// Len returns the number of runtime IDs in the palette.
func (p *Palette) Len() int {
	return len(p.legacy)
}

// RuntimeID ...
func (p *Palette) RuntimeID(l Legacy) (uint32, error) {
	rid, ok := p.runtime[l]
	if !ok {
		return 0, fmt.Errorf("%w: %v in palette %v", ErrUnknownBlockState, l, p.version)
	}
	return rid, nil
}

// Legacy ...
func (p *Palette) Legacy(rid uint32) (Legacy, error) {
	if int(rid) >= len(p.legacy) {
		return Legacy{}, fmt.Errorf("%w: runtime ID %d in palette %v", ErrUnknownBlockState, rid, p.version)
	}
	return p.legacy[rid], nil
}

// Name returns the name of the block state with the runtime ID passed, or an empty string.
func (p *Palette) Name(rid uint32) string {
	if int(rid) >= len(p.names) {
		return ""
	}
	return p.names[rid]
}

// Entries returns the source entries of the palette in runtime ID order.
func (p *Palette) Entries() []Entry {
	entries := make([]Entry, len(p.legacy))
	for i, l := range p.legacy {
		entries[i] = Entry{ID: int32(l.Type), Data: int32(l.Variant), Name: p.names[i]}
	}
	return entries
}
