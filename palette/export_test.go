package palette

import (
	"os"

	proto "github.com/cooldogedev/prism/protocol"
)

func writeFile(path string, v proto.Version, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, v, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
