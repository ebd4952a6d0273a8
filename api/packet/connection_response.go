package packet

import (
	"bytes"
)

const (
	ResponseSuccess = iota
	ResponseUnauthorized
	ResponseFail
)

type ConnectionResponse struct {
	Response uint8
}

// ID ...
func (pk *ConnectionResponse) ID() uint32 {
	return IDConnectionResponse
}

// Encode ...
func (pk *ConnectionResponse) Encode(buf *bytes.Buffer) {
	buf.WriteByte(pk.Response)
}

// Decode ...
func (pk *ConnectionResponse) Decode(buf *bytes.Buffer) {
	b, err := buf.ReadByte()
	if err != nil {
		panic(err)
	}
	pk.Response = b
}
