package transport

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	proto "github.com/cooldogedev/prism/protocol"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStreamHandshake(t *testing.T) {
	tests := []struct {
		name  string
		hello []byte
		ok    bool
	}{
		{"current", Hello(proto.SubProtocolCurrent), true},
		{"single byte", Hello(proto.SubProtocolSingleByte), true},
		{"unsupported", Hello(3), false},
		{"too long", []byte{11, 0}, false},
	}
	for _, tt := range tests {
		client, server := net.Pipe()
		go func() {
			_ = proto.NewWriter(client).Write(tt.hello)
		}()
		c, err := newStreamConn(server, server.RemoteAddr())
		if tt.ok {
			if err != nil {
				t.Errorf("%s: %v", tt.name, err)
			} else if c.SubProtocol() != int(tt.hello[0]) {
				t.Errorf("%s: sub-protocol %d", tt.name, c.SubProtocol())
			}
		} else if !errors.Is(err, ErrHandshake) {
			t.Errorf("%s: got %v, want ErrHandshake", tt.name, err)
		}
		_ = client.Close()
		_ = server.Close()
	}
}

func TestTCPRoundTrip(t *testing.T) {
	l, err := NewTCP(discard()).Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	client, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	w := proto.NewWriter(client)
	if err := w.Write(Hello(proto.SubProtocolCurrent)); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]byte("batch")); err != nil {
		t.Fatal(err)
	}

	conn, err := l.Accept()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	batch, err := conn.ReadBatch()
	if err != nil {
		t.Fatal(err)
	}
	if string(batch) != "batch" {
		t.Fatalf("read %q, want %q", batch, "batch")
	}

	if err := conn.WriteBatch([]byte("reply")); err != nil {
		t.Fatal(err)
	}
	reply, err := proto.NewReader(client).ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if string(reply) != "reply" {
		t.Fatalf("client read %q, want %q", reply, "reply")
	}
}

func TestSpectralListener(t *testing.T) {
	l, err := NewSpectral(discard()).Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if addr, ok := l.Addr().(*net.UDPAddr); !ok || !addr.IP.IsLoopback() {
		t.Fatalf("listener address %v, want a loopback UDP address", l.Addr())
	}

	accepted := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		accepted <- err
	}()
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-accepted; !errors.Is(err, net.ErrClosed) {
		t.Fatalf("accept after close = %v, want net.ErrClosed", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close = %v", err)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"raknet", "TCP", "kcp", "quic", "spectral", "Spectral"} {
		if _, err := ByName(name, discard()); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if tr, _ := ByName("spectral", discard()); tr == nil {
		t.Fatal("spectral transport is nil")
	} else if _, ok := tr.(*Spectral); !ok {
		t.Errorf("spectral resolved to %T", tr)
	}
	if _, err := ByName("websocket", discard()); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("got %v, want ErrUnknownTransport", err)
	}
}
