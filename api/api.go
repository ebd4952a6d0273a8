package api

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/cooldogedev/prism/api/packet"
	"github.com/cooldogedev/prism/network"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/cooldogedev/prism/session"
)

// API serves the binary admin protocol over TCP.
type API struct {
	authentication Authentication
	sessions       *session.Registry
	packets        *network.Registry
	listener       net.Listener
	logger         *slog.Logger
}

func NewAPI(sessions *session.Registry, packets *network.Registry, logger *slog.Logger, authentication Authentication) *API {
	return &API{
		authentication: authentication,
		sessions:       sessions,
		packets:        packets,
		logger:         logger,
	}
}

func (a *API) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	a.listener = listener
	return nil
}

// Addr returns the address the API is listening on.
func (a *API) Addr() net.Addr {
	return a.listener.Addr()
}

func (a *API) Accept() error {
	conn, err := a.listener.Accept()
	if err != nil {
		return err
	}

	if conn, ok := conn.(*net.TCPConn); ok {
		_ = conn.SetLinger(0)
		_ = conn.SetNoDelay(true)
	}

	go a.handle(conn)
	a.logger.Info("accepted api connection", "addr", conn.RemoteAddr())
	return nil
}

func (a *API) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}

func (a *API) handle(conn net.Conn) {
	c := NewClient(conn, packet.NewPool())
	defer func() {
		_ = c.Close()
		a.logger.Info("closed api connection", "addr", conn.RemoteAddr())
	}()

	pk, err := c.ReadPacket()
	if err != nil {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseFail})
		a.logger.Error("failed to read connection request", "err", err)
		return
	}

	connectionRequest, ok := pk.(*packet.ConnectionRequest)
	if !ok {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseFail})
		a.logger.Error("expected connection request", "id", pk.ID())
		return
	}

	if a.authentication != nil && !a.authentication.Authenticate(connectionRequest.Token) {
		_ = c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseUnauthorized})
		a.logger.Debug("closed unauthenticated api connection", "addr", conn.RemoteAddr())
		return
	}

	if err := c.WritePacket(&packet.ConnectionResponse{Response: packet.ResponseSuccess}); err != nil {
		a.logger.Error("failed to write connection response", "err", err)
		return
	}
	a.logger.Info("authorized api connection", "addr", conn.RemoteAddr())
	for {
		pk, err := c.ReadPacket()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				a.logger.Error("failed to read api packet", "err", err)
			}
			return
		}
		a.handlePacket(pk)
	}
}

func (a *API) handlePacket(pk packet.Packet) {
	switch pk := pk.(type) {
	case *packet.Kick:
		s := a.sessions.GetSession(pk.Username)
		if s == nil {
			a.logger.Debug("tried to disconnect an unknown player", "player", pk.Username)
			return
		}
		s.Disconnect(pk.Reason)
	case *packet.DisablePacket:
		v := proto.Version(pk.Version)
		a.packets.Deregister(v, uint32(pk.PacketID))
		a.logger.Info("disabled packet", "version", v, "id", pk.PacketID)
	case *packet.ResetPool:
		v := proto.Version(pk.Version)
		a.packets.Reset(v)
		a.logger.Info("reset packet pool", "version", v)
	}
}
