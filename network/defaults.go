package network

import (
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	gtpacket "github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Cutoff is the first version served by the current pool of the default registry.
const Cutoff = proto.V1_21_80

// LegacyPool returns the pool of every packet prism knows for versions below Cutoff.
func LegacyPool() *Pool {
	b := NewBuilder(proto.SupportedVersions[0])
	for _, f := range []func() packet.Packet{
		func() packet.Packet { return &packet.Disconnect{} },
		func() packet.Packet { return &packet.RiderJump{} },
		func() packet.Packet { return &packet.UpdateBlock{} },
		func() packet.Packet { return &packet.InventoryTransaction{} },
		func() packet.Packet { return &packet.Animate{} },
		func() packet.Packet { return &packet.ContainerOpen{} },
		func() packet.Packet { return &packet.ContainerClose{} },
		func() packet.Packet { return &packet.InventoryContent{} },
		func() packet.Packet { return &packet.InventorySlot{} },
		func() packet.Packet { return &packet.PlayerInput{} },
		func() packet.Packet { return &packet.LevelSoundEvent{} },

		fixed(func() gtpacket.Packet { return &gtpacket.Text{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.RequestNetworkSettings{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.RequestChunkRadius{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.SetLocalPlayerAsInitialised{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.NetworkStackLatency{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.Interact{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.MobEquipment{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.PlayerAction{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.PlayerSkin{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.CommandRequest{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.ModalFormResponse{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.BlockPickRequest{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.Respawn{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.Emote{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.PlaySound{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.NetworkSettings{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.MovePlayer{} }),
		fixed(func() gtpacket.Packet { return &gtpacket.SetPlayerGameType{} }),
	} {
		b.Register(f)
	}
	return b.Build()
}

// CurrentPool derives the pool for Cutoff and later from the legacy pool.
func CurrentPool(legacy *Pool) *Pool {
	return legacy.Builder().
		Version(Cutoff).
		Deregister(packet.IDPlayerInput).
		Deregister(packet.IDRiderJump).
		Register(func() packet.Packet { return &packet.PlayerLocation{} }).
		Build()
}

// NewDefaultRegistry returns a registry holding LegacyPool and CurrentPool.
func NewDefaultRegistry() *Registry {
	legacy := LegacyPool()
	return NewRegistry(Cutoff, legacy, CurrentPool(legacy))
}

func fixed(f func() gtpacket.Packet) func() packet.Packet {
	return func() packet.Packet {
		return packet.Fixed{Packet: f()}
	}
}
