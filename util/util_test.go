package util

import (
	"strings"
	"testing"
	"time"

	proto "github.com/cooldogedev/prism/protocol"
)

func TestParseOpts(t *testing.T) {
	opts, err := ParseOpts([]byte(`
addr: ":19133"
transport: kcp
compression: snappy
transaction:
  max_failed_transactions: 20
  spam_window: 250ms
`))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != ":19133" || opts.Transport != "kcp" {
		t.Fatalf("unexpected listener opts: %+v", opts)
	}
	if opts.Transaction.MaxFailedTransactions != 20 || opts.Transaction.SpamWindow != 250*time.Millisecond {
		t.Fatalf("unexpected transaction opts: %+v", opts.Transaction)
	}
	if opts.Transaction.MaxActions != 50 {
		t.Fatalf("default max actions lost: %d", opts.Transaction.MaxActions)
	}
	if opts.QueueSize != DefaultOpts().QueueSize {
		t.Fatalf("default queue size lost: %d", opts.QueueSize)
	}

	conf, err := opts.SessionConfig()
	if err != nil {
		t.Fatal(err)
	}
	if conf.Compression != proto.SnappyCompression {
		t.Fatalf("compression %v, want snappy", conf.Compression)
	}
}

func TestParseOptsUnknownCompression(t *testing.T) {
	if _, err := ParseOpts([]byte("compression: lz4\n")); err == nil {
		t.Fatalf("expected an error for an unknown compression")
	}
}

func TestPongData(t *testing.T) {
	status := NewStatusProvider("prism;test", "sub").ServerStatus(3, 10)
	fields := strings.Split(string(PongData(status, 42, 19132)), ";")
	if len(fields) != 13 {
		t.Fatalf("got %d pong fields, want 13: %v", len(fields), fields)
	}
	if fields[0] != "MCPE" || fields[1] != "prismtest" || fields[4] != "3" || fields[5] != "10" || fields[6] != "42" {
		t.Fatalf("unexpected pong data: %v", fields)
	}
	if fields[3] != proto.Latest.String() {
		t.Fatalf("advertised version %q, want %q", fields[3], proto.Latest)
	}
}
