package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// PlayerInput is sent by clients before FeaturePlayerLocation while steering a vehicle.
type PlayerInput struct {
	Movement mgl32.Vec2
	Jumping  bool
	Sneaking bool
}

// ID ...
func (*PlayerInput) ID() uint32 {
	return IDPlayerInput
}

// Marshal ...
func (pk *PlayerInput) Marshal(io protocol.IO, _ proto.Version) {
	io.Vec2(&pk.Movement)
	io.Bool(&pk.Jumping)
	io.Bool(&pk.Sneaking)
}

// RiderJump is sent by clients before FeaturePlayerLocation when a ridden entity jumps.
type RiderJump struct {
	JumpStrength int32
}

// ID ...
func (*RiderJump) ID() uint32 {
	return IDRiderJump
}

// Marshal ...
func (pk *RiderJump) Marshal(io protocol.IO, _ proto.Version) {
	io.Varint32(&pk.JumpStrength)
}

const (
	PlayerLocationTypeCoordinates int32 = iota
	PlayerLocationTypeHide
)

// PlayerLocation replaces PlayerInput and RiderJump from FeaturePlayerLocation onwards.
type PlayerLocation struct {
	Type           int32
	EntityUniqueID int64
	Position       mgl32.Vec3
}

// ID ...
func (*PlayerLocation) ID() uint32 {
	return IDPlayerLocation
}

// Marshal ...
func (pk *PlayerLocation) Marshal(io protocol.IO, _ proto.Version) {
	io.Varint32(&pk.Type)
	io.Varint64(&pk.EntityUniqueID)
	if pk.Type == PlayerLocationTypeCoordinates {
		io.Vec3(&pk.Position)
	}
}
