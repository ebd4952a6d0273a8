package packet

import (
	"reflect"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// slice reads or writes a varuint32 length prefixed slice. When reading, a length above max is
// reported through io.InvalidValue and the slice is allocated fresh.
func slice[T any](io protocol.IO, x *[]T, max uint32, field string, f func(*T)) {
	n := uint32(len(*x))
	io.Varuint32(&n)
	if n > max {
		io.InvalidValue(n, field, "too many entries")
		return
	}
	if uint32(len(*x)) != n {
		*x = make([]T, n)
	}
	for i := range *x {
		f(&(*x)[i])
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
