package packet

import "bytes"

// DisablePacket removes a packet from the pool serving Version. Clients of that version sending it have
// it dropped as unknown from then on.
type DisablePacket struct {
	Version  int32
	PacketID int32
}

// ID ...
func (pk *DisablePacket) ID() uint32 {
	return IDDisablePacket
}

// Encode ...
func (pk *DisablePacket) Encode(buf *bytes.Buffer) {
	WriteInt32(buf, pk.Version)
	WriteInt32(buf, pk.PacketID)
}

// Decode ...
func (pk *DisablePacket) Decode(buf *bytes.Buffer) {
	pk.Version = ReadInt32(buf)
	pk.PacketID = ReadInt32(buf)
}
