package session

import (
	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/network/packet"
)

// Processor defines methods for processing the packets of a session before they are handled or sent.
type Processor interface {
	// ProcessClient is called for every packet decoded from the client, in arrival order. Cancelling the
	// context drops the packet.
	ProcessClient(ctx *event.Context, pk packet.Packet)
	// ProcessServer is called for every packet about to be written to the client. Cancelling the
	// context drops the packet.
	ProcessServer(ctx *event.Context, pk packet.Packet)
	// ProcessDisconnection is called right before the session is closed for the reason passed. Cancelling
	// the context closes the connection without sending the reason to the client.
	ProcessDisconnection(ctx *event.Context, reason string)
}

// NopProcessor is a no-op implementation of the Processor interface.
type NopProcessor struct{}

// Ensure that NopProcessor satisfies the Processor interface.
var _ Processor = NopProcessor{}

func (NopProcessor) ProcessClient(_ *event.Context, _ packet.Packet) {}
func (NopProcessor) ProcessServer(_ *event.Context, _ packet.Packet) {}
func (NopProcessor) ProcessDisconnection(_ *event.Context, _ string) {}
