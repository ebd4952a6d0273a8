package palette

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	proto "github.com/cooldogedev/prism/protocol"
)

var (
	ErrAlreadyInitialized  = errors.New("block palette already initialized")
	ErrNotInitialized      = errors.New("block palette not initialized")
	ErrUnknownBlockState   = errors.New("unknown block state")
	ErrUnsupportedVersion  = errors.New("unsupported protocol version")
	ErrPaletteCycle        = errors.New("block palette inheritance cycle")
	errFirstVersionAnchor  = errors.New("first supported version must be an anchor")
	errAnchorNotSupported  = errors.New("anchor is not a supported version")
	errParentAfterChild    = errors.New("palette inherits from a later version")
	errParentMissingAnchor = errors.New("palette chain does not end at an anchor")
)

// DefaultAnchors are the versions that ship their own block state table. Every other supported version
// inherits the table of the nearest earlier anchor.
var DefaultAnchors = []proto.Version{
	proto.V1_20_0_23,
	proto.V1_20_10_21,
	proto.V1_20_30_24,
	proto.V1_20_40,
	proto.V1_20_50,
	proto.V1_20_60,
	proto.V1_20_70,
	proto.V1_20_80,
	proto.V1_21_0,
	proto.V1_21_20,
	proto.V1_21_30,
	proto.V1_21_40,
	proto.V1_21_50_26,
	proto.V1_21_60,
	proto.V1_21_70_24,
	proto.V1_21_80,
	proto.V1_21_90,
	proto.V1_21_100,
	proto.V1_21_110_26,
}

// forest links every supported version to the version whose table it uses. Anchors link to themselves.
type forest struct {
	parent map[proto.Version]proto.Version
	tables map[proto.Version]*Palette
}

// Registry holds the palettes of every supported version. It is built once by Init and read
// concurrently without locking afterwards.
type Registry struct {
	anchors []proto.Version
	mu      sync.Mutex
	state   atomic.Pointer[forest]
}

// NewRegistry returns an uninitialised registry for the anchors passed, or DefaultAnchors if none are.
func NewRegistry(anchors ...proto.Version) *Registry {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	anchors = slices.Clone(anchors)
	slices.Sort(anchors)
	return &Registry{anchors: anchors}
}

// Anchors returns the anchor versions of the registry.
func (r *Registry) Anchors() []proto.Version {
	return slices.Clone(r.anchors)
}

// Init builds the table of every anchor from src and links the remaining versions. It may only succeed
// once: clients cache runtime IDs, so the tables must never change afterwards.
func (r *Registry) Init(src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Load() != nil {
		return ErrAlreadyInitialized
	}

	f := &forest{
		parent: make(map[proto.Version]proto.Version, len(proto.SupportedVersions)),
		tables: make(map[proto.Version]*Palette, len(r.anchors)),
	}
	for _, anchor := range r.anchors {
		if !proto.Supported(anchor) {
			return fmt.Errorf("%w: %v", errAnchorNotSupported, anchor)
		}
		entries, err := src.Table(anchor)
		if err != nil {
			return fmt.Errorf("load table %v: %w", anchor, err)
		}
		f.tables[anchor] = New(anchor, entries)
	}

	var nearest proto.Version
	for i, v := range proto.SupportedVersions {
		if _, ok := f.tables[v]; ok {
			nearest = v
		} else if i == 0 {
			return errFirstVersionAnchor
		}
		f.parent[v] = nearest
	}
	if err := f.verify(); err != nil {
		return err
	}
	r.state.Store(f)
	return nil
}

// Anchor returns the anchor version whose table v uses.
func (r *Registry) Anchor(v proto.Version) (proto.Version, error) {
	f := r.state.Load()
	if f == nil {
		return 0, ErrNotInitialized
	}
	return f.anchor(v.Resolve())
}

// Palette returns the palette used by v.
func (r *Registry) Palette(v proto.Version) (*Palette, error) {
	f := r.state.Load()
	if f == nil {
		return nil, ErrNotInitialized
	}
	anchor, err := f.anchor(v.Resolve())
	if err != nil {
		return nil, err
	}
	return f.tables[anchor], nil
}

// RuntimeID returns the runtime ID of l for v.
func (r *Registry) RuntimeID(v proto.Version, l Legacy) (uint32, error) {
	p, err := r.Palette(v)
	if err != nil {
		return 0, err
	}
	return p.RuntimeID(l)
}

// Legacy returns the legacy identity of the runtime ID passed for v.
func (r *Registry) Legacy(v proto.Version, rid uint32) (Legacy, error) {
	p, err := r.Palette(v)
	if err != nil {
		return Legacy{}, err
	}
	return p.Legacy(rid)
}

// Verify checks that every version's inheritance chain ends at an anchor without revisiting a version.
func (r *Registry) Verify() error {
	f := r.state.Load()
	if f == nil {
		return ErrNotInitialized
	}
	return f.verify()
}

func (f *forest) anchor(v proto.Version) (proto.Version, error) {
	seen := 0
	for {
		parent, ok := f.parent[v]
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
		}
		if parent == v {
			return v, nil
		}
		if seen++; seen > len(f.parent) {
			return 0, fmt.Errorf("%w at %v", ErrPaletteCycle, v)
		}
		v = parent
	}
}

func (f *forest) verify() error {
	for v := range f.parent {
		seen := map[proto.Version]struct{}{}
		for cur := v; ; {
			if _, ok := seen[cur]; ok {
				return fmt.Errorf("%w: %v revisits %v", ErrPaletteCycle, v, cur)
			}
			seen[cur] = struct{}{}

			parent, ok := f.parent[cur]
			if !ok {
				return fmt.Errorf("%w: %v", errParentMissingAnchor, cur)
			}
			if parent == cur {
				if _, ok := f.tables[cur]; !ok {
					return fmt.Errorf("%w: %v", errParentMissingAnchor, cur)
				}
				break
			}
			cur = parent
		}
	}
	for v, parent := range f.parent {
		if parent > v {
			return fmt.Errorf("%w: %v -> %v", errParentAfterChild, v, parent)
		}
	}
	return nil
}
