package main

import (
	"bytes"
	"strings"
	"testing"

	proto "github.com/cooldogedev/prism/protocol"
)

func TestRenderVersions(t *testing.T) {
	var buf bytes.Buffer
	renderVersions(&buf)
	out := buf.String()
	for _, v := range proto.SupportedVersions {
		if !strings.Contains(out, v.String()) {
			t.Fatalf("version %v missing from table:\n%s", v, out)
		}
	}
	if !strings.Contains(out, "current") || !strings.Contains(out, "legacy") {
		t.Fatalf("table does not name both packet pools:\n%s", out)
	}
}
