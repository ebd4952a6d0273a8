package packet

import (
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Disconnect is sent to the client right before the connection is closed.
type Disconnect struct {
	Reason                  int32
	HideDisconnectionScreen bool
	Message                 string
}

// ID ...
func (*Disconnect) ID() uint32 {
	return IDDisconnect
}

// Marshal ...
func (pk *Disconnect) Marshal(io protocol.IO, _ proto.Version) {
	io.Varint32(&pk.Reason)
	io.Bool(&pk.HideDisconnectionScreen)
	if !pk.HideDisconnectionScreen {
		io.String(&pk.Message)
	}
}
