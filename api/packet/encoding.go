package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// maxStringLength bounds strings read from API connections.
const maxStringLength = 1 << 16

func ReadString(buf *bytes.Buffer) string {
	var length uint32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		panic(err)
	}
	if length > maxStringLength || int(length) > buf.Len() {
		panic(fmt.Errorf("string length %d exceeds remaining %d bytes", length, buf.Len()))
	}
	return string(buf.Next(int(length)))
}

func WriteString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

func ReadInt32(buf *bytes.Buffer) (v int32) {
	if err := binary.Read(buf, binary.LittleEndian, &v); err != nil {
		panic(err)
	}
	return v
}

func WriteInt32(buf *bytes.Buffer, v int32) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
