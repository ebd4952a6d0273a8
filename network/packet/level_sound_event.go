package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	SoundEventItemUseOn uint32 = 0
	SoundEventBreak     uint32 = 5
	SoundEventPlace     uint32 = 6
)

// LevelSoundEvent plays a sound at a position for every viewer.
type LevelSoundEvent struct {
	SoundType             uint32
	Position              mgl32.Vec3
	ExtraData             int32
	EntityType            string
	BabyMob               bool
	DisableRelativeVolume bool
	// ActorUniqueID is only present from FeatureLevelSoundActorID onwards.
	ActorUniqueID int64
}

// ID ...
func (*LevelSoundEvent) ID() uint32 {
	return IDLevelSoundEvent
}

// Marshal ...
func (pk *LevelSoundEvent) Marshal(io protocol.IO, v proto.Version) {
	io.Varuint32(&pk.SoundType)
	io.Vec3(&pk.Position)
	io.Varint32(&pk.ExtraData)
	io.String(&pk.EntityType)
	io.Bool(&pk.BabyMob)
	io.Bool(&pk.DisableRelativeVolume)
	if v.Has(proto.FeatureLevelSoundActorID) {
		io.Int64(&pk.ActorUniqueID)
	}
}
