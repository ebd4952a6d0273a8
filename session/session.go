package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/network"
	"github.com/cooldogedev/prism/network/packet"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/cooldogedev/prism/transaction"
	"github.com/cooldogedev/prism/transport"
	"github.com/cooldogedev/prism/violation"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnsupportedVersion is returned when a client requests network settings for a version prism does not
// speak.
var ErrUnsupportedVersion = errors.New("unsupported protocol version")

// Sizes of the inventories every player has.
const (
	InventorySize = 36
	ArmourSize    = 4
	OffhandSize   = 1
)

// World is the world the player of a session is part of.
type World interface {
	transaction.World
	AddEntity(e transaction.Entity)
	RemoveEntity(rid uint64)
}

// Config holds the per connection settings of a session.
type Config struct {
	// QueueSize is the number of batches buffered between the connection and the session's handling
	// goroutine. Reading from the connection blocks while the queue is full.
	QueueSize int
	// Compression is the algorithm announced in NetworkSettings.
	Compression proto.Compression
	// CompressionThreshold is the minimum batch size the client compresses.
	CompressionThreshold uint16
	Transaction          transaction.Config
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		QueueSize:            64,
		Compression:          proto.FlateCompression,
		CompressionThreshold: 256,
		Transaction:          transaction.DefaultConfig(),
	}
}

// Services are shared by every session of a server.
type Services struct {
	Registry *Registry
	Decoder  *network.Decoder
	Encoder  *network.Encoder
	World    World
	Recipes  transaction.Recipes
	Recorder violation.Recorder
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

// Session is the server side of a single client connection. Batches are decoded and handled by one
// goroutine, strictly in the order they arrived.
type Session struct {
	conn transport.Conn
	name string
	rid  uint64
	conf Config

	registry *Registry
	decoder  *network.Decoder
	encoder  *network.Encoder
	world    World
	recorder violation.Recorder
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	engine    *transaction.Engine
	processor atomic.Pointer[Processor]
	tracker   *Tracker

	version    atomic.Int32
	compressed atomic.Bool
	appearance atomic.Bool

	inventory *inventory.Container
	armour    *inventory.Container
	offhand   *inventory.Container
	ui        *inventory.Container

	heldSlot atomic.Int32
	gameMode atomic.Int32
	dead     atomic.Bool
	position atomic.Pointer[mgl32.Vec3]

	// The fields below are only accessed by the handling goroutine.
	using           bool
	resendInventory bool
	resendHeld      bool

	queue   chan []byte
	writeMu sync.Mutex

	ch     chan struct{}
	closed atomic.Bool
	once   sync.Once
}

// NewSession creates a session for conn whose player has the runtime ID passed. Start must be called for
// the session to begin reading.
func NewSession(conn transport.Conn, rid uint64, conf Config, srv Services) *Session {
	if conf.QueueSize <= 0 {
		conf.QueueSize = DefaultConfig().QueueSize
	}
	if srv.Recorder == nil {
		srv.Recorder = violation.NopRecorder{}
	}
	if srv.Logger == nil {
		srv.Logger = slog.Default()
	}
	if srv.Tracer == nil {
		srv.Tracer = otel.Tracer("github.com/cooldogedev/prism/session")
	}
	name := conn.RemoteAddr().String()
	s := &Session{
		conn: conn,
		name: name,
		rid:  rid,
		conf: conf,

		registry: srv.Registry,
		decoder:  srv.Decoder,
		encoder:  srv.Encoder,
		world:    srv.World,
		recorder: srv.Recorder,
		metrics:  srv.Metrics,
		tracer:   srv.Tracer,
		logger:   srv.Logger.With("player", name),

		tracker: NewTracker(),

		inventory: inventory.NewContainer(InventorySize),
		armour:    inventory.NewContainer(ArmourSize),
		offhand:   inventory.NewContainer(OffhandSize),
		ui:        inventory.NewContainer(inventory.UISize),

		queue: make(chan []byte, conf.QueueSize),
		ch:    make(chan struct{}),
	}
	s.version.Store(int32(proto.Unknown))
	s.position.Store(&mgl32.Vec3{})
	s.SetProcessor(NopProcessor{})
	s.engine = transaction.NewEngine(s, srv.World, srv.Recipes, transaction.NopHandler{}, conf.Transaction, s.logger, srv.Metrics)
	return s
}

// Start registers the session and starts handling the connection.
func (s *Session) Start() {
	if s.registry != nil {
		s.registry.AddSession(s)
	}
	if s.world != nil {
		s.world.AddEntity(s)
	}
	s.metrics.SessionOpened()
	go handleIncoming(s)
	go handleBatches(s)
	s.logger.Info("started session", "addr", s.conn.RemoteAddr(), "sub_protocol", s.conn.SubProtocol())
}

// Processor returns the processor packets are passed through.
func (s *Session) Processor() Processor {
	return *s.processor.Load()
}

// SetProcessor ...
func (s *Session) SetProcessor(processor Processor) {
	s.processor.Store(&processor)
}

// SetHandler sets the handler consulted by the session's transaction engine. It must be called before
// Start.
func (s *Session) SetHandler(h transaction.Handler) {
	s.engine.SetHandler(h)
}

// Engine returns the transaction engine of the session.
func (s *Session) Engine() *transaction.Engine {
	return s.engine
}

// Tracker returns the tracker of the windows the client has open.
func (s *Session) Tracker() *Tracker {
	return s.tracker
}

// Conn returns the underlying connection.
func (s *Session) Conn() transport.Conn {
	return s.conn
}

// Version returns the protocol version of the client, or proto.Unknown before it identified itself.
func (s *Session) Version() proto.Version {
	return proto.Version(s.version.Load())
}

// WritePacket encodes pk for the client's version and writes it in a batch of its own.
func (s *Session) WritePacket(pk packet.Packet) error {
	return s.WritePackets(pk)
}

// WritePackets writes pks in a single batch. Packets cancelled by the processor are left out.
func (s *Session) WritePackets(pks ...packet.Packet) error {
	if s.closed.Load() {
		return net.ErrClosed
	}
	out := pks[:0:0]
	for _, pk := range pks {
		ctx := event.NewContext()
		s.Processor().ProcessServer(ctx, pk)
		if ctx.Cancelled() {
			continue
		}
		s.tracker.handlePacket(pk)
		out = append(out, pk)
	}
	if len(out) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	batch, err := s.encoder.Encode(s.settings(), out...)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return s.conn.WriteBatch(batch)
}

// Disconnect sends the message passed to the client and closes the session.
func (s *Session) Disconnect(message string) {
	ctx := event.NewContext()
	s.Processor().ProcessDisconnection(ctx, message)
	if !ctx.Cancelled() {
		_ = s.WritePacket(&packet.Disconnect{Message: message})
	}
	s.Close()
}

// Close closes the connection and removes the session from its registry and world.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		if s.registry != nil {
			s.registry.RemoveSession(s)
		}
		if s.world != nil {
			s.world.RemoveEntity(s.rid)
		}
		s.metrics.SessionClosed()
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("failed to close connection", "err", err)
		}
		s.logger.Info("closed session")
	})
	return nil
}

// fail disconnects the client for a fatal error and records the violation.
func (s *Session) fail(err error) {
	c := cause(err)
	s.logger.Warn("disconnecting client", "cause", c, "err", err)
	s.metrics.Disconnect(c)
	s.recorder.Record(violation.Violation{
		Player: s.name,
		Addr:   s.conn.RemoteAddr().String(),
		Cause:  c,
		Reason: err.Error(),
		Time:   time.Now(),
	})
	s.Disconnect(err.Error())
}

func (s *Session) settings() network.Settings {
	st := network.Settings{
		SubProtocol: s.conn.SubProtocol(),
		Version:     s.Version(),
	}
	if s.compressed.Load() {
		st.Compression = s.conf.Compression
	}
	switch {
	case st.Version == proto.Unknown:
		st.Limit = proto.NoDecompressLimit
	case !s.appearance.Load():
		st.Limit = proto.AppearanceDecompressLimit
	}
	return st
}

func cause(err error) string {
	var decodeErr *network.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return "decode"
	case network.IsFatal(err), errors.Is(err, transaction.ErrTooManyActions):
		return "protocol"
	case errors.Is(err, transaction.ErrTooManyFailedTransactions), errors.Is(err, transaction.ErrInvalidAttack):
		return "abuse"
	case errors.Is(err, ErrUnsupportedVersion):
		return "version"
	}
	return "internal"
}
