package prism

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/network"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/cooldogedev/prism/palette"
	"github.com/cooldogedev/prism/recipe"
	"github.com/cooldogedev/prism/session"
	tr "github.com/cooldogedev/prism/transport"
	"github.com/cooldogedev/prism/util"
	"github.com/cooldogedev/prism/violation"
	"github.com/cooldogedev/prism/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// statusInterval is the interval at which the status advertised to unconnected pings is refreshed.
const statusInterval = 5 * time.Second

// Prism accepts client connections and runs a session for each of them.
type Prism struct {
	transport tr.Transport
	listener  tr.Listener

	registry *session.Registry
	packets  *network.Registry
	palette  packet.Palette
	recipes  *recipe.Registry
	world    *world.World
	ledger   *violation.Ledger
	status   *util.StatusProvider

	metrics  *metrics.Metrics
	gatherer *prometheus.Registry

	decoder *network.Decoder
	encoder *network.Encoder

	logger *slog.Logger
	opts   util.Opts
	conf   session.Config

	rid    atomic.Uint64
	ch     chan struct{}
	closed atomic.Bool
	once   sync.Once
}

// NewPrism loads the block palettes, recipes and violation ledger configured by opts. A nil transport
// selects the transport named by opts.
func NewPrism(logger *slog.Logger, opts *util.Opts, transport tr.Transport) (*Prism, error) {
	if opts == nil {
		opts = util.DefaultOpts()
	}
	conf, err := opts.SessionConfig()
	if err != nil {
		return nil, err
	}
	if transport == nil {
		if transport, err = tr.ByName(opts.Transport, logger); err != nil {
			return nil, err
		}
	}

	p := &Prism{
		transport: transport,
		registry:  session.NewRegistry(),
		packets:   network.NewDefaultRegistry(),
		recipes:   recipe.NewRegistry(),
		status:    util.NewStatusProvider(opts.ServerName, opts.ServerSubName),
		gatherer:  prometheus.NewRegistry(),
		logger:    logger,
		opts:      *opts,
		conf:      conf,
		ch:        make(chan struct{}),
	}
	p.gatherer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p.metrics = metrics.New(p.gatherer)

	if opts.PaletteDir != "" {
		blocks := palette.NewRegistry()
		if err := blocks.Init(palette.DirSource(opts.PaletteDir)); err != nil {
			return nil, fmt.Errorf("load block palettes: %w", err)
		}
		p.palette = blocks
		logger.Info("loaded block palettes", "dir", opts.PaletteDir, "anchors", len(blocks.Anchors()))
	}
	if opts.Recipes != "" {
		if err := p.recipes.Load(opts.Recipes); err != nil {
			return nil, fmt.Errorf("load recipes: %w", err)
		}
		logger.Info("loaded recipes", "path", opts.Recipes, "count", p.recipes.Len())
	}
	if opts.Ledger != "" {
		if p.ledger, err = violation.Open(opts.Ledger); err != nil {
			return nil, fmt.Errorf("open violation ledger: %w", err)
		}
	}

	p.decoder = network.NewDecoder(p.packets, p.palette, logger, p.metrics)
	p.encoder = network.NewEncoder(p.packets, p.palette)
	p.world = world.New(opts.WorldQueueSize, logger)
	return p, nil
}

func (p *Prism) Listen() (err error) {
	listener, err := p.transport.Listen(p.opts.Addr)
	if err != nil {
		p.logger.Error("failed to listen", "err", err)
		return err
	}

	p.listener = listener
	if rak, ok := listener.(*tr.RakNetListener); ok {
		p.updateStatus(rak)
		go p.handleStatus(rak)
	}
	p.logger.Info("started listening", "addr", listener.Addr())
	return nil
}

// Accept waits for the next connection and starts a session for it.
func (p *Prism) Accept() (*session.Session, error) {
	conn, err := p.listener.Accept()
	if err != nil {
		if !p.closed.Load() && !errors.Is(err, net.ErrClosed) {
			p.logger.Error("failed to accept connection", "err", err)
		}
		return nil, err
	}

	var recorder violation.Recorder = violation.NopRecorder{}
	if p.ledger != nil {
		recorder = p.ledger
	}
	s := session.NewSession(conn, p.rid.Add(1), p.conf, session.Services{
		Registry: p.registry,
		Decoder:  p.decoder,
		Encoder:  p.encoder,
		World:    p.world,
		Recipes:  p.recipes,
		Recorder: recorder,
		Metrics:  p.metrics,
		Logger:   p.logger,
	})
	s.Start()
	p.logger.Debug("accepted session", "addr", conn.RemoteAddr())
	return s, nil
}

func (p *Prism) handleStatus(l *tr.RakNetListener) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ch:
			return
		case <-ticker.C:
			p.updateStatus(l)
		}
	}
}

func (p *Prism) updateStatus(l *tr.RakNetListener) {
	port := 0
	if addr, ok := l.Addr().(*net.UDPAddr); ok {
		port = addr.Port
	}
	status := p.status.ServerStatus(p.registry.Len(), p.opts.MaxPlayers)
	l.PongData(util.PongData(status, l.ID(), port))
}

func (p *Prism) Opts() util.Opts {
	return p.opts
}

func (p *Prism) Registry() *session.Registry {
	return p.registry
}

// Packets returns the packet registry shared by every session.
func (p *Prism) Packets() *network.Registry {
	return p.packets
}

// Ledger returns the violation ledger, or nil if violations are not recorded.
func (p *Prism) Ledger() *violation.Ledger {
	return p.ledger
}

// Gatherer returns the registry the server's metrics are registered with.
func (p *Prism) Gatherer() prometheus.Gatherer {
	return p.gatherer
}

func (p *Prism) World() *world.World {
	return p.world
}

func (p *Prism) Transport() tr.Transport {
	return p.transport
}

// Close stops accepting connections, disconnects every session and releases the world and ledger.
func (p *Prism) Close() (err error) {
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.ch)
		if p.listener != nil {
			err = p.listener.Close()
		}
		for _, s := range p.registry.GetSessions() {
			s.Disconnect("Server closed")
		}
		p.world.Close()
		if p.ledger != nil {
			if lerr := p.ledger.Close(); lerr != nil && err == nil {
				err = lerr
			}
		}
	})
	return
}
