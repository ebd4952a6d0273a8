package world

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
	"github.com/cooldogedev/prism/transaction"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

type viewer struct {
	transaction.Player
	mu      sync.Mutex
	packets []packet.Packet
}

func (v *viewer) Name() string         { return "alex" }
func (v *viewer) RuntimeID() uint64    { return 7 }
func (v *viewer) Position() mgl32.Vec3 { return mgl32.Vec3{} }

func (v *viewer) WritePacket(pk packet.Packet) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.packets = append(v.packets, pk)
	return nil
}

func newWorld(t *testing.T) *World {
	t.Helper()
	w := New(16, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(w.Close)
	return w
}

func TestLoopOrder(t *testing.T) {
	l := NewLoop(128, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer l.Close()

	var got []int
	for i := 0; i < 100; i++ {
		l.Exec(func() { got = append(got, i) })
	}
	var n int
	if !l.Do(func() { n = len(got) }) {
		t.Fatal("loop closed")
	}
	if n != 100 {
		t.Fatalf("ran %d functions, want 100", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("function %d ran at position %d", v, i)
		}
	}
}

func TestLoopRecoversPanic(t *testing.T) {
	l := NewLoop(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer l.Close()
	l.Exec(func() { panic("boom") })
	if !l.Do(func() {}) {
		t.Fatal("loop stopped after a panic")
	}
}

func TestLoopClosed(t *testing.T) {
	l := NewLoop(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.Close()
	l.Close()
	if l.Do(func() { t.Error("function ran on a closed loop") }) {
		t.Fatal("Do reported success on a closed loop")
	}
}

func TestLoopDoWaitsForRunningFunction(t *testing.T) {
	l := NewLoop(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	started, release := make(chan struct{}), make(chan struct{})
	var res int
	done := make(chan bool)
	go func() {
		done <- l.Do(func() {
			close(started)
			<-release
			res = 1
		})
	}()

	<-started
	l.Close()
	select {
	case <-done:
		t.Fatal("Do returned while its function was still running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	if ok := <-done; !ok || res != 1 {
		t.Fatalf("Do = %v with result %d, want true and 1", ok, res)
	}
}

func TestLoopDoCancelledWhileQueued(t *testing.T) {
	l := NewLoop(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	release := make(chan struct{})
	l.Exec(func() { <-release })

	var ran atomic.Bool
	done := make(chan bool)
	go func() { done <- l.Do(func() { ran.Store(true) }) }()
	time.Sleep(10 * time.Millisecond)
	l.Close()
	if <-done {
		t.Fatal("Do reported success for a function that never started")
	}
	close(release)
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Fatal("function ran after Do reported it would not")
	}
}

func TestPlaceAndBreak(t *testing.T) {
	w := newWorld(t)
	v := &viewer{}
	stone := palette.Legacy{Type: 1}
	held := inventory.Item{ID: 1, Count: 2, Block: stone}

	res, ok := w.UseItemOn(v, protocol.BlockPos{0, 0, 0}, 1, mgl32.Vec3{}, held)
	if !ok || res.Count != 1 {
		t.Fatalf("place = %v, %v", res, ok)
	}
	if b, ok := w.Block(protocol.BlockPos{0, 1, 0}); !ok || b != stone {
		t.Fatalf("block above = %v, %v", b, ok)
	}
	if _, ok := w.UseItemOn(v, protocol.BlockPos{0, 0, 0}, 1, mgl32.Vec3{}, res); ok {
		t.Fatalf("placed into an occupied position")
	}

	if _, ok := w.UseBreakOn(v, protocol.BlockPos{0, 1, 0}, 1, inventory.Air); !ok {
		t.Fatalf("break refused")
	}
	if _, ok := w.Block(protocol.BlockPos{0, 1, 0}); ok {
		t.Fatalf("block still present after breaking")
	}
	if _, ok := w.UseBreakOn(v, protocol.BlockPos{0, 1, 0}, 1, inventory.Air); ok {
		t.Fatalf("broke air")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.packets) != 2 {
		t.Fatalf("viewer got %d packets, want 2", len(v.packets))
	}
	if pk, ok := v.packets[0].(*packet.UpdateBlock); !ok || pk.Block != stone {
		t.Fatalf("first packet = %#v", v.packets[0])
	}
}

func TestEffects(t *testing.T) {
	w := newWorld(t)
	v := &viewer{}
	done := make(chan struct{})
	w.Exec(func() {
		w.DropItem(v, inventory.NewItem(3, 0, 1))
		w.AddExperience(v, 5)
		w.PlaySound(v, transaction.SoundOrb)
		close(done)
	})
	<-done
	if d := w.Drops(); len(d) != 1 || d[0].Owner != 7 {
		t.Fatalf("drops = %v", d)
	}
	if n := w.Experience(7); n != 5 {
		t.Fatalf("experience = %d, want 5", n)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.packets) != 1 {
		t.Fatalf("viewer got %d packets, want 1", len(v.packets))
	}
}

func TestEntities(t *testing.T) {
	w := newWorld(t)
	v := &viewer{}
	if _, ok := w.Entity(7); ok {
		t.Fatal("entity present before being added")
	}
	w.AddEntity(entity{v})
	if e, ok := w.Entity(7); !ok || e.RuntimeID() != 7 {
		t.Fatalf("entity = %v, %v", e, ok)
	}
	w.RemoveEntity(7)
	if _, ok := w.Entity(7); ok {
		t.Fatal("entity present after removal")
	}
}

type entity struct{ *viewer }

func (entity) Interact(transaction.Player, inventory.Item, mgl32.Vec3) bool { return false }
func (entity) Attack(transaction.Player, inventory.Item) bool               { return false }
