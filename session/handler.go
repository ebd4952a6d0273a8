package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	gtpacket "github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// errDisconnected is returned by packet handlers that already closed the session.
var errDisconnected = errors.New("session disconnected")

// handleIncoming reads batches from the connection into the session's queue.
func handleIncoming(s *Session) {
	defer s.Close()
	for {
		batch, err := s.conn.ReadBatch()
		if err != nil {
			if !s.closed.Load() && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				s.logger.Error("failed to read batch from client", "err", err)
			}
			return
		}

		select {
		case s.queue <- batch:
		case <-s.ch:
			return
		}
	}
}

// handleBatches handles the queued batches one at a time.
func handleBatches(s *Session) {
	defer s.Close()
	for {
		select {
		case <-s.ch:
			return
		case batch := <-s.queue:
			if err := s.handleBatch(batch); err != nil {
				if !errors.Is(err, errDisconnected) && !s.closed.Load() {
					s.fail(err)
				}
				return
			}
		}
	}
}

func (s *Session) handleBatch(batch []byte) error {
	_, span := s.tracer.Start(context.Background(), "session.batch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("prism.player", s.name),
			attribute.String("prism.version", s.Version().String()),
			attribute.Int("prism.batch_size", len(batch)),
		),
	)
	defer span.End()

	start := time.Now()
	pks, err := s.decoder.Decode(batch, s.settings())
	s.metrics.Batch(len(pks), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("prism.packets", len(pks)))

	for _, pk := range pks {
		ctx := event.NewContext()
		s.Processor().ProcessClient(ctx, pk)
		if ctx.Cancelled() {
			continue
		}

		if err := s.handlePacket(pk); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	s.flush()
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Session) handlePacket(pk packet.Packet) error {
	switch pk := pk.(type) {
	case *packet.InventoryTransaction:
		return s.engine.Handle(pk)
	case *packet.ContainerOpen:
		s.tracker.handlePacket(pk)
	case *packet.ContainerClose:
		s.handleContainerClose(pk)
	case packet.Fixed:
		return s.handleFixed(pk.Packet)
	}
	return nil
}

func (s *Session) handleFixed(pk gtpacket.Packet) error {
	switch pk := pk.(type) {
	case *gtpacket.RequestNetworkSettings:
		return s.handleNetworkSettings(pk)
	case *gtpacket.PlayerSkin:
		s.appearance.Store(true)
	case *gtpacket.MobEquipment:
		s.handleMobEquipment(pk)
	case *gtpacket.MovePlayer:
		pos := pk.Position
		s.position.Store(&pos)
	case *gtpacket.Respawn:
		if pk.State == gtpacket.RespawnStateClientReadyToSpawn && s.dead.Load() {
			s.dead.Store(false)
			return s.WritePacket(packet.Fixed{Packet: &gtpacket.Respawn{
				Position:        s.Position(),
				State:           gtpacket.RespawnStateReadyToSpawn,
				EntityRuntimeID: s.rid,
			}})
		}
	}
	return nil
}

func (s *Session) handleNetworkSettings(pk *gtpacket.RequestNetworkSettings) error {
	if s.compressed.Load() {
		s.logger.Debug("client requested network settings twice")
		return nil
	}

	v := proto.Version(pk.ClientProtocol)
	if !proto.Supported(v) {
		s.logger.Info("client connected with an unsupported version", "protocol", pk.ClientProtocol)
		s.metrics.Disconnect("version")
		if v < proto.SupportedVersions[0] {
			s.Disconnect("Outdated client")
		} else {
			s.Disconnect("Outdated server")
		}
		return errDisconnected
	}

	s.version.Store(int32(v))
	if err := s.WritePacket(packet.Fixed{Packet: &gtpacket.NetworkSettings{
		CompressionThreshold: s.conf.CompressionThreshold,
		CompressionAlgorithm: compressionAlgorithm(s.conf.Compression),
	}}); err != nil {
		return fmt.Errorf("write network settings: %w", err)
	}
	s.compressed.Store(true)
	s.logger.Debug("negotiated network settings", "version", v)
	return nil
}

func (s *Session) handleMobEquipment(pk *gtpacket.MobEquipment) {
	if int32(pk.WindowID) != inventory.WindowInventory {
		return
	}
	slot := int(pk.HotBarSlot)
	if !inventory.HotbarSlot(slot) {
		s.logger.Debug("client selected an invalid hotbar slot", "slot", slot)
		s.ResendHeldItem()
		return
	}
	s.SetHeldSlot(slot)
	s.SetUsingItem(false)
}

func (s *Session) handleContainerClose(pk *packet.ContainerClose) {
	if !s.tracker.Close(int32(pk.WindowID)) {
		s.logger.Debug("client closed a window that was not open", "window", pk.WindowID)
		return
	}
	if err := s.WritePacket(&packet.ContainerClose{WindowID: pk.WindowID, ContainerType: pk.ContainerType}); err != nil {
		s.logger.Error("failed to acknowledge container close", "err", err)
	}
}

// flush sends the inventories marked for resending while handling the last batch.
func (s *Session) flush() {
	if s.resendInventory {
		s.resendInventory = false
		s.metrics.InventoryResend()
		pks := []packet.Packet{
			content(inventory.WindowInventory, s.inventory),
			content(inventory.WindowArmour, s.armour),
			content(inventory.WindowOffhand, s.offhand),
			content(inventory.WindowUI, s.ui),
		}
		for _, id := range s.tracker.Windows() {
			if inv, ok := s.tracker.Container(id); ok {
				pks = append(pks, content(id, inv))
			}
		}
		if err := s.WritePackets(pks...); err != nil {
			s.logger.Error("failed to resend inventory", "err", err)
		}
	}
	if s.resendHeld {
		s.resendHeld = false
		if err := s.WritePacket(&packet.InventorySlot{
			WindowID: uint32(inventory.WindowInventory),
			Slot:     uint32(s.HeldSlot()),
			NewItem:  s.HeldItem().Stack(),
		}); err != nil {
			s.logger.Error("failed to resend held item", "err", err)
		}
	}
}

func content(id int32, inv inventory.Inventory) *packet.InventoryContent {
	pk := &packet.InventoryContent{WindowID: uint32(id), Content: make([]packet.ItemStack, inv.Size())}
	for i := range pk.Content {
		it, _ := inv.Item(i)
		pk.Content[i] = it.Stack()
	}
	return pk
}

func compressionAlgorithm(c proto.Compression) uint16 {
	if c == nil || c.ID() == proto.CompressionIDNone {
		return 0xffff
	}
	return uint16(c.ID())
}
