package packet

import "bytes"

// ResetPool restores the pool serving Version to the one the server started with.
type ResetPool struct {
	Version int32
}

// ID ...
func (pk *ResetPool) ID() uint32 {
	return IDResetPool
}

// Encode ...
func (pk *ResetPool) Encode(buf *bytes.Buffer) {
	WriteInt32(buf, pk.Version)
}

// Decode ...
func (pk *ResetPool) Decode(buf *bytes.Buffer) {
	pk.Version = ReadInt32(buf)
}
