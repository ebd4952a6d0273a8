package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	AnimateActionSwingArm         int32 = 1
	AnimateActionStopSleep        int32 = 3
	AnimateActionCriticalHit      int32 = 4
	AnimateActionMagicCriticalHit int32 = 5
	AnimateActionRowRight         int32 = 128
	AnimateActionRowLeft          int32 = 129
)

// Animate is sent by the client when it swings its arm or rows a boat, and relayed to viewers.
type Animate struct {
	ActionType      int32
	EntityRuntimeID uint64
	// RowingTime is only present for row actions before FeatureAnimateSwingSource.
	RowingTime float32
	// Data and SwingSource replace RowingTime from FeatureAnimateSwingSource onwards.
	Data        float32
	SwingSource string
}

// ID ...
func (*Animate) ID() uint32 {
	return IDAnimate
}

// Row reports whether the action is a paddle stroke.
func (pk *Animate) Row() bool {
	return pk.ActionType&0x80 != 0
}

// Marshal ...
func (pk *Animate) Marshal(io protocol.IO, v proto.Version) {
	io.Varint32(&pk.ActionType)
	io.Varuint64(&pk.EntityRuntimeID)
	if !v.Has(proto.FeatureAnimateSwingSource) {
		if pk.Row() {
			io.Float32(&pk.RowingTime)
		}
		return
	}
	io.Float32(&pk.Data)
	hasSource := pk.SwingSource != ""
	io.Bool(&hasSource)
	if hasSource {
		io.String(&pk.SwingSource)
	}
}
