package session

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network"
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/cooldogedev/prism/recipe"
	"github.com/cooldogedev/prism/violation"
	"github.com/cooldogedev/prism/world"
	"github.com/go-gl/mathgl/mgl32"
	gtpacket "github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// pipeConn is an in-memory transport.Conn. Batches written to in are read by the session and batches
// written by the session end up in out.
type pipeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *pipeConn) ReadBatch() ([]byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	case <-c.closed:
		return nil, net.ErrClosed
	}
}

func (c *pipeConn) WriteBatch(b []byte) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.out <- bytes.Clone(b)
	return nil
}

func (c *pipeConn) SubProtocol() int { return proto.SubProtocolCurrent }
func (c *pipeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 19132}
}

func (c *pipeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

type recorder struct {
	mu         sync.Mutex
	violations []violation.Violation
}

func (r *recorder) Record(v violation.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
}

func (r *recorder) all() []violation.Violation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]violation.Violation(nil), r.violations...)
}

type harness struct {
	s        *Session
	conn     *pipeConn
	registry *Registry
	recorder *recorder
	decoder  *network.Decoder
	encoder  *network.Encoder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := network.NewDefaultRegistry()
	w := world.New(16, logger)
	t.Cleanup(w.Close)

	h := &harness{
		conn:     newPipeConn(),
		registry: NewRegistry(),
		recorder: &recorder{},
		decoder:  network.NewDecoder(reg, nil, logger, nil),
		encoder:  network.NewEncoder(reg, nil),
	}
	h.s = NewSession(h.conn, 1, DefaultConfig(), Services{
		Registry: h.registry,
		Decoder:  h.decoder,
		Encoder:  h.encoder,
		World:    w,
		Recipes:  recipe.NewRegistry(),
		Recorder: h.recorder,
		Logger:   logger,
	})
	t.Cleanup(func() { _ = h.s.Close() })
	return h
}

// send encodes pks the way a client with the session's current settings would.
func (h *harness) send(t *testing.T, pks ...packet.Packet) {
	t.Helper()
	st := h.s.settings()
	batch, err := h.encoder.Encode(st, pks...)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h.conn.in <- batch
}

// receive waits for the next batch written by the session and decodes it.
func (h *harness) receive(t *testing.T, compressed bool) []packet.Packet {
	t.Helper()
	select {
	case b := <-h.conn.out:
		st := network.Settings{SubProtocol: proto.SubProtocolCurrent, Version: h.s.Version()}
		if compressed {
			st.Compression = proto.FlateCompression
		}
		pks, err := h.decoder.Decode(b, st)
		if err != nil {
			t.Fatalf("decode batch written by session: %v", err)
		}
		return pks
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a batch")
		return nil
	}
}

func (h *harness) negotiate(t *testing.T) {
	t.Helper()
	h.send(t, packet.Fixed{Packet: &gtpacket.RequestNetworkSettings{ClientProtocol: int32(proto.V1_21_50)}})
	pks := h.receive(t, false)
	if len(pks) != 1 {
		t.Fatalf("got %d packets in response to RequestNetworkSettings, want 1", len(pks))
	}
	f, ok := pks[0].(packet.Fixed)
	if !ok {
		t.Fatalf("got %T, want NetworkSettings", pks[0])
	}
	settings, ok := f.Packet.(*gtpacket.NetworkSettings)
	if !ok {
		t.Fatalf("got %T, want NetworkSettings", f.Packet)
	}
	if settings.CompressionAlgorithm != 0 {
		t.Fatalf("announced compression algorithm %d, want flate", settings.CompressionAlgorithm)
	}
	waitFor(t, func() bool { return h.s.compressed.Load() })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNetworkSettings(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	h.negotiate(t)

	if v := h.s.Version(); v != proto.V1_21_50 {
		t.Fatalf("version %v, want %v", v, proto.V1_21_50)
	}
	if h.registry.GetSession(h.s.Name()) != h.s {
		t.Fatalf("session not registered under %q", h.s.Name())
	}

	h.send(t, packet.Fixed{Packet: &gtpacket.MobEquipment{HotBarSlot: 3}})
	waitFor(t, func() bool { return h.s.HeldSlot() == 3 })
}

func TestDecompressLimit(t *testing.T) {
	h := newHarness(t)
	if limit := h.s.settings().Limit; limit != proto.NoDecompressLimit {
		t.Fatalf("limit before the version is known = %d, want none", limit)
	}
	h.s.Start()
	h.negotiate(t)
	if limit := h.s.settings().Limit; limit != proto.AppearanceDecompressLimit {
		t.Fatalf("limit before the skin = %d, want %d", limit, proto.AppearanceDecompressLimit)
	}
	h.s.appearance.Store(true)
	if limit := h.s.settings().Limit; limit != 0 {
		t.Fatalf("limit after the skin = %d, want the default", limit)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	h.send(t, packet.Fixed{Packet: &gtpacket.RequestNetworkSettings{ClientProtocol: 100}})

	pks := h.receive(t, false)
	d, ok := pks[0].(*packet.Disconnect)
	if !ok || d.Message != "Outdated client" {
		t.Fatalf("got %#v, want an outdated client disconnect", pks[0])
	}
	waitFor(t, func() bool { return h.s.closed.Load() })
	if len(h.recorder.all()) != 0 {
		t.Fatalf("unsupported version recorded as a violation")
	}
}

func TestProtocolViolationDisconnects(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	// A chunk declaring 64 bytes with only 2 present.
	h.conn.in <- []byte{64, 1, 2}

	pks := h.receive(t, false)
	if _, ok := pks[0].(*packet.Disconnect); !ok {
		t.Fatalf("got %T, want Disconnect", pks[0])
	}
	waitFor(t, func() bool { return h.s.closed.Load() })
	if h.registry.Len() != 0 {
		t.Fatalf("closed session still registered")
	}
	v := h.recorder.all()
	if len(v) != 1 || v[0].Cause != "protocol" {
		t.Fatalf("recorded %+v, want one protocol violation", v)
	}
}

type cancelEquipment struct {
	NopProcessor
}

func (cancelEquipment) ProcessClient(ctx *event.Context, pk packet.Packet) {
	if f, ok := pk.(packet.Fixed); ok {
		if _, ok := f.Packet.(*gtpacket.MobEquipment); ok {
			ctx.Cancel()
		}
	}
}

func TestProcessorCancel(t *testing.T) {
	h := newHarness(t)
	h.s.SetProcessor(cancelEquipment{})
	h.s.Start()
	h.negotiate(t)

	pos := mgl32.Vec3{1, 2, 3}
	h.send(t, packet.Fixed{Packet: &gtpacket.MobEquipment{HotBarSlot: 5}}, packet.Fixed{Packet: &gtpacket.MovePlayer{Position: pos}})
	waitFor(t, func() bool { return h.s.Position() == pos })
	if slot := h.s.HeldSlot(); slot != 0 {
		t.Fatalf("held slot %d after cancelled MobEquipment, want 0", slot)
	}
}

func TestInvalidTransactionResends(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	h.negotiate(t)

	dirt := inventory.NewItem(3, 0, 1)
	h.send(t, &packet.InventoryTransaction{
		TransactionType: packet.TransactionTypeNormal,
		Actions: []packet.NetworkInventoryAction{{
			SourceType: packet.SourceContainer,
			WindowID:   inventory.WindowInventory,
			Slot:       0,
			OldItem:    dirt.Stack(),
			NewItem:    inventory.Air.Stack(),
		}},
	})

	pks := h.receive(t, true)
	windows := map[uint32]int{}
	for _, pk := range pks {
		c, ok := pk.(*packet.InventoryContent)
		if !ok {
			t.Fatalf("got %T in inventory resend", pk)
		}
		windows[c.WindowID] = len(c.Content)
	}
	want := map[uint32]int{
		uint32(inventory.WindowInventory): InventorySize,
		uint32(inventory.WindowArmour):    ArmourSize,
		uint32(inventory.WindowOffhand):   OffhandSize,
		uint32(inventory.WindowUI):        inventory.UISize,
	}
	for id, n := range want {
		if windows[id] != n {
			t.Fatalf("window %d resent with %d slots, want %d", id, windows[id], n)
		}
	}
	if h.s.Engine().Failed() != 1 {
		t.Fatalf("failed counter %d, want 1", h.s.Engine().Failed())
	}
}

func TestUseItemInvalidHotbarSlot(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	h.negotiate(t)

	h.send(t, &packet.InventoryTransaction{
		TransactionType: packet.TransactionTypeUseItem,
		UseItem:         packet.UseItemData{ActionType: packet.UseItemActionClickAir, HotBarSlot: -7},
	})
	pks := h.receive(t, true)
	slot, ok := pks[0].(*packet.InventorySlot)
	if !ok || slot.WindowID != uint32(inventory.WindowInventory) || slot.Slot != 0 {
		t.Fatalf("got %#v, want the held item in slot 0", pks[0])
	}
	if held := h.s.HeldSlot(); held != 0 {
		t.Fatalf("held slot %d after an invalid hotbar slot, want 0", held)
	}
}

func TestContainerClose(t *testing.T) {
	h := newHarness(t)
	h.s.Start()
	h.negotiate(t)

	chest := inventory.NewContainer(27)
	if err := h.s.OpenWindow(2, inventory.ContainerTypeContainer, [3]int32{1, 2, 3}, chest); err != nil {
		t.Fatal(err)
	}
	pks := h.receive(t, true)
	if len(pks) != 2 {
		t.Fatalf("got %d packets opening a chest, want 2", len(pks))
	}
	if inv, ok := h.s.Window(2); !ok || inv != chest {
		t.Fatalf("chest not reachable through window 2")
	}

	h.send(t, &packet.ContainerClose{WindowID: 2})
	pks = h.receive(t, true)
	if c, ok := pks[0].(*packet.ContainerClose); !ok || c.WindowID != 2 || c.ServerSide {
		t.Fatalf("got %#v, want a client side close of window 2", pks[0])
	}
	if _, ok := h.s.Window(2); ok {
		t.Fatalf("window 2 still open")
	}
}
