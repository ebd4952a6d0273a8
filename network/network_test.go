package network

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

type offsetPalette struct{}

func (offsetPalette) RuntimeID(_ proto.Version, l palette.Legacy) (uint32, error) {
	return l.FullID() + 1, nil
}

func (offsetPalette) Legacy(_ proto.Version, rid uint32) (palette.Legacy, error) {
	if rid == 0 || rid > 1<<16 {
		return palette.Legacy{}, palette.ErrUnknownBlockState
	}
	return palette.FromFullID(rid - 1), nil
}

func newCodec() (*Registry, *Decoder, *Encoder) {
	registry := NewDefaultRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return registry, NewDecoder(registry, offsetPalette{}, logger, nil), NewEncoder(registry, offsetPalette{})
}

func current(v proto.Version) Settings {
	return Settings{SubProtocol: proto.SubProtocolCurrent, Version: v}
}

func TestDefaultPools(t *testing.T) {
	r := NewDefaultRegistry()
	if _, ok := r.Get(proto.V1_21_70, packet.IDPlayerInput); !ok {
		t.Fatalf("legacy pool lacks PlayerInput")
	}
	if _, ok := r.Get(proto.V1_21_70, packet.IDPlayerLocation); ok {
		t.Fatalf("legacy pool has PlayerLocation")
	}
	for _, id := range []uint32{packet.IDPlayerInput, packet.IDRiderJump} {
		if _, ok := r.Get(proto.V1_21_80, id); ok {
			t.Fatalf("current pool has packet %d", id)
		}
	}
	if d, ok := r.Get(proto.Unknown, packet.IDPlayerLocation); !ok || d.Name != "PlayerLocation" {
		t.Fatalf("unknown version does not use current pool: %+v", d)
	}
	if got, want := r.Pool(proto.V1_21_80).Len(), r.Pool(proto.V1_21_70).Len()-1; got != want {
		t.Fatalf("current pool has %d packets, want %d", got, want)
	}
}

func TestRegistryIsolation(t *testing.T) {
	r := NewDefaultRegistry()
	before := r.Pool(proto.V1_20_0).IDs()

	r.Deregister(proto.V1_21_80, packet.IDAnimate)
	r.Register(proto.V1_21_80, func() packet.Packet { return &packet.RiderJump{} })

	after := r.Pool(proto.V1_20_0).IDs()
	if fmt.Sprint(before) != fmt.Sprint(after) {
		t.Fatalf("legacy pool changed after mutating current: %v -> %v", before, after)
	}
	if _, ok := r.Get(proto.V1_21_130, packet.IDAnimate); ok {
		t.Fatalf("Animate still registered for current")
	}
	if _, ok := r.Get(proto.V1_20_0, packet.IDAnimate); !ok {
		t.Fatalf("Animate removed from legacy")
	}

	currentBefore := r.Pool(proto.V1_21_80).IDs()
	r.Deregister(proto.V1_20_0, packet.IDContainerClose)
	if fmt.Sprint(currentBefore) != fmt.Sprint(r.Pool(proto.V1_21_80).IDs()) {
		t.Fatalf("current pool changed after mutating legacy")
	}

	r.Reset(proto.V1_21_80)
	if _, ok := r.Get(proto.V1_21_80, packet.IDAnimate); !ok {
		t.Fatalf("reset did not restore Animate")
	}
}

func TestPoolSnapshotImmutable(t *testing.T) {
	r := NewDefaultRegistry()
	old := r.Pool(proto.V1_21_0)
	n := old.Len()
	r.Deregister(proto.V1_21_0, packet.IDAnimate)
	if old.Len() != n {
		t.Fatalf("held snapshot was mutated")
	}
	if _, ok := old.Get(packet.IDAnimate); !ok {
		t.Fatalf("held snapshot lost Animate")
	}
}

func TestBuilderRejectsWideID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewBuilder(proto.Latest).Register(func() packet.Packet { return wideID{} })
}

type wideID struct{}

func (wideID) ID() uint32 { return 0x400 }

func (wideID) Marshal(protocol.IO, proto.Version) {}

func batchOf(t *testing.T, e *Encoder, s Settings, n int) []byte {
	t.Helper()
	pks := make([]packet.Packet, n)
	for i := range pks {
		pks[i] = &packet.ContainerClose{WindowID: byte(i)}
	}
	data, err := e.Encode(s, pks...)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestBatchCap(t *testing.T) {
	_, d, e := newCodec()
	s := current(proto.V1_21_0)

	pks, err := d.Decode(batchOf(t, e, s, MaxBatchPackets-1), s)
	if err != nil {
		t.Fatalf("999 packets: %v", err)
	}
	if len(pks) != MaxBatchPackets-1 {
		t.Fatalf("decoded %d packets", len(pks))
	}
	for i, pk := range pks {
		if pk.(*packet.ContainerClose).WindowID != byte(i) {
			t.Fatalf("packet %d out of order", i)
		}
	}

	pks, err = d.Decode(batchOf(t, e, s, MaxBatchPackets), s)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("1000 packets: err = %v, want ProtocolError", err)
	}
	if pks != nil {
		t.Fatalf("rejected batch returned %d packets", len(pks))
	}
}

func TestTruncatedChunk(t *testing.T) {
	_, d, e := newCodec()
	s := current(proto.V1_21_0)

	data := batchOf(t, e, s, 3)
	data = append(data, 100, 1, 2, 3)

	pks, err := d.Decode(data, s)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("err = %v, want ProtocolError", err)
	}
	if len(pks) != 0 {
		t.Fatalf("decoded %d packets from a truncated batch", len(pks))
	}
}

func TestUnknownPacketSkipped(t *testing.T) {
	_, d, e := newCodec()
	s := current(proto.V1_21_0)

	buf := bytes.NewBuffer(nil)
	w := proto.NewBatchWriter(buf)
	unknown := bytes.NewBuffer(nil)
	_ = proto.WriteHeader(unknown, 0x3fe, s.SubProtocol)
	unknown.Write([]byte{1, 2, 3})
	_ = w.Write(unknown.Bytes())
	buf.Write(batchOf(t, e, s, 1))

	pks, err := d.Decode(buf.Bytes(), s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pks) != 1 {
		t.Fatalf("decoded %d packets, want 1", len(pks))
	}
}

func TestDecodeError(t *testing.T) {
	_, d, _ := newCodec()
	s := current(proto.V1_21_0)

	chunk := bytes.NewBuffer(nil)
	_ = proto.WriteHeader(chunk, packet.IDInventoryTransaction, s.SubProtocol)
	chunk.WriteByte(0)
	buf := bytes.NewBuffer(nil)
	_ = proto.NewBatchWriter(buf).Write(chunk.Bytes())

	pks, err := d.Decode(buf.Bytes(), s)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
	if decodeErr.Packet != "InventoryTransaction" {
		t.Fatalf("decode error names %q", decodeErr.Packet)
	}
	if pks != nil || !IsFatal(err) {
		t.Fatalf("decode error must be fatal and return no packets")
	}
}

func TestLegacySubProtocol(t *testing.T) {
	_, d, e := newCodec()
	for _, sub := range []int{proto.SubProtocolSingleByte, proto.SubProtocolPadded} {
		s := Settings{SubProtocol: sub, Version: proto.V1_20_0}
		pks, err := d.Decode(batchOf(t, e, s, 2), s)
		if err != nil {
			t.Fatalf("sub-protocol %d: %v", sub, err)
		}
		if len(pks) != 2 || pks[1].(*packet.ContainerClose).WindowID != 1 {
			t.Fatalf("sub-protocol %d: decoded %+v", sub, pks)
		}
	}
}

func TestCompression(t *testing.T) {
	_, d, e := newCodec()
	for _, c := range []proto.Compression{proto.FlateCompression, proto.SnappyCompression, proto.NoCompression} {
		for _, v := range []proto.Version{proto.V1_20_50, proto.V1_21_0} {
			s := current(v)
			s.Compression = c
			data := batchOf(t, e, s, 5)
			if v.Has(proto.FeatureCompressionPrefix) && data[0] != c.ID() {
				t.Fatalf("missing compression prefix")
			}
			pks, err := d.Decode(data, s)
			if err != nil {
				t.Fatalf("compression %d version %v: %v", c.ID(), v, err)
			}
			if len(pks) != 5 {
				t.Fatalf("decoded %d packets", len(pks))
			}
		}
	}
}

func TestDecompressCeiling(t *testing.T) {
	_, d, e := newCodec()
	s := current(proto.V1_21_0)
	s.Compression = proto.FlateCompression
	data := batchOf(t, e, s, 200)

	s.Limit = 64
	if _, err := d.Decode(data, s); !errors.Is(err, ErrDecompress) {
		t.Fatalf("err = %v, want ErrDecompress", err)
	}
	s.Limit = proto.NoDecompressLimit
	if pks, err := d.Decode(data, s); err != nil || len(pks) != 200 {
		t.Fatalf("without ceiling: decoded %d packets, err = %v", len(pks), err)
	}
}

func TestBlockTranslation(t *testing.T) {
	_, d, e := newCodec()
	s := current(proto.V1_21_0)
	block := palette.Legacy{Type: 5, Variant: 2}

	data, err := e.Encode(s, &packet.UpdateBlock{Position: protocol.BlockPos{1, 2, 3}, Block: block})
	if err != nil {
		t.Fatal(err)
	}
	pks, err := d.Decode(data, s)
	if err != nil {
		t.Fatal(err)
	}
	pk := pks[0].(*packet.UpdateBlock)
	if pk.NewBlockRuntimeID != block.FullID()+1 || pk.Block != block {
		t.Fatalf("translated %+v", pk)
	}
}

func TestUnregisteredForViewer(t *testing.T) {
	_, _, e := newCodec()
	if _, err := e.Encode(current(proto.V1_21_80), &packet.PlayerInput{}); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
}

func TestInventoryTransactionRoundTrip(t *testing.T) {
	_, d, e := newCodec()
	for _, v := range []proto.Version{proto.V1_20_0, proto.V1_21_0, proto.V1_21_20, proto.Latest} {
		s := current(v)
		in := &packet.InventoryTransaction{
			TransactionType: packet.TransactionTypeNormal,
			Actions: []packet.NetworkInventoryAction{
				{SourceType: packet.SourceTODO, WindowID: packet.WindowCraftingResult, Slot: 0, NewItem: packet.ItemStack{NetworkID: 5, Count: 1, HasStackNetworkID: true, StackNetworkID: 9}},
				{SourceType: packet.SourceContainer, WindowID: 0, Slot: 3, OldItem: packet.ItemStack{NetworkID: 5, Count: 1}},
				{SourceType: packet.SourceWorld, SourceFlags: packet.SourceFlagNoFlag, Slot: 0},
			},
		}
		data, err := e.Encode(s, in)
		if err != nil {
			t.Fatal(err)
		}
		pks, err := d.Decode(data, s)
		if err != nil {
			t.Fatalf("%v: %v", v, err)
		}
		out := pks[0].(*packet.InventoryTransaction)
		if len(out.Actions) != 3 || !out.CraftingPart || out.EnchantingPart {
			t.Fatalf("%v: decoded %+v", v, out)
		}
		hasNetID := out.Actions[0].NewItem.HasStackNetworkID
		if hasNetID != v.Has(proto.FeatureItemStackNetID) {
			t.Fatalf("%v: stack network ID present = %v", v, hasNetID)
		}
	}
}

func TestUseItemPayloadGating(t *testing.T) {
	_, d, e := newCodec()
	for _, v := range []proto.Version{proto.V1_21_2, proto.V1_21_20} {
		s := current(v)
		in := &packet.InventoryTransaction{
			TransactionType: packet.TransactionTypeUseItem,
			UseItem: packet.UseItemData{
				ActionType:       packet.UseItemActionClickBlock,
				TriggerType:      packet.TriggerTypePlayerInput,
				BlockPosition:    protocol.BlockPos{1, 64, -3},
				BlockFace:        1,
				HotBarSlot:       2,
				ClientPrediction: 1,
			},
		}
		data, err := e.Encode(s, in)
		if err != nil {
			t.Fatal(err)
		}
		pks, err := d.Decode(data, s)
		if err != nil {
			t.Fatalf("%v: %v", v, err)
		}
		out := pks[0].(*packet.InventoryTransaction).UseItem
		if out.BlockPosition != in.UseItem.BlockPosition || out.HotBarSlot != 2 {
			t.Fatalf("%v: decoded %+v", v, out)
		}
		if (out.TriggerType == packet.TriggerTypePlayerInput) != v.Has(proto.FeatureUseItemTrigger) {
			t.Fatalf("%v: trigger type gating wrong", v)
		}
	}
}
