package transaction

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cooldogedev/prism/event"
	"github.com/cooldogedev/prism/inventory"
	"github.com/cooldogedev/prism/metrics"
	"github.com/cooldogedev/prism/network/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

var (
	// ErrTooManyActions is returned for a transaction carrying more actions than Config.MaxActions.
	ErrTooManyActions = errors.New("too many actions in inventory transaction")
	// ErrTooManyFailedTransactions is returned once more than Config.MaxFailedTransactions normal
	// transactions failed in a row.
	ErrTooManyFailedTransactions = errors.New("too many failed inventory transactions")
	// ErrInvalidAttack is returned when a player attacks itself.
	ErrInvalidAttack = errors.New("tried to attack invalid player")

	errCancelled = errors.New("cancelled by handler")
)

// Config holds the heuristics of an Engine.
type Config struct {
	MaxActions            int           `yaml:"max_actions"`
	MaxFailedTransactions int           `yaml:"max_failed_transactions"`
	SpamWindow            time.Duration `yaml:"spam_window"`
	SpamDistanceSquared   float32       `yaml:"spam_distance_squared"`
	AllowPvP              bool          `yaml:"allow_pvp"`
}

// DefaultConfig returns the Config used by the server unless configured otherwise.
func DefaultConfig() Config {
	return Config{
		MaxActions:            50,
		MaxFailedTransactions: 15,
		SpamWindow:            100 * time.Millisecond,
		SpamDistanceSquared:   0.00001,
		AllowPvP:              true,
	}
}

// Engine processes the inventory transactions of a single connection. It is not safe for concurrent
// use: a connection's packets are handled one at a time.
type Engine struct {
	env     Env
	world   World
	handler Handler
	conf    Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	pending Pending
	failed  int

	lastClick     *protocol.BlockPos
	lastClickTime time.Time
	now           func() time.Time
}

// NewEngine ...
func NewEngine(p Player, w World, r Recipes, h Handler, conf Config, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if h == nil {
		h = NopHandler{}
	}
	return &Engine{
		env:     Env{Player: p, Recipes: r},
		world:   w,
		handler: h,
		conf:    conf,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// SetHandler ...
func (e *Engine) SetHandler(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	e.handler = h
}

// Pending returns the live pending transaction, or nil if there is none.
func (e *Engine) Pending() Pending {
	return e.pending
}

// Failed returns the number of normal transactions that failed in a row.
func (e *Engine) Failed() int {
	return e.failed
}

// Handle processes an inventory transaction. The error returned is only non-nil if the connection
// must be closed.
func (e *Engine) Handle(pk *packet.InventoryTransaction) error {
	if len(pk.Actions) > e.conf.MaxActions {
		return fmt.Errorf("%w: %d > %d", ErrTooManyActions, len(pk.Actions), e.conf.MaxActions)
	}

	p := e.env.Player
	if !p.Alive() {
		return nil
	}
	if p.Spectator() {
		p.ResendInventory()
		return nil
	}

	if pk.TransactionType == packet.TransactionTypeMismatch && p.OpenType() == inventory.WindowTypeSmithing {
		synthesized, ok, err := e.smithingWorkaround()
		if err != nil {
			e.logger.Debug("failed to rebuild smithing transaction", "player", p.Name(), "err", err)
			p.ResendInventory()
			return nil
		}
		if ok {
			pk = synthesized
		}
	}

	actions := make([]inventory.Action, 0, len(pk.Actions))
	for _, na := range pk.Actions {
		a, err := inventory.Resolve(p, na)
		if err != nil {
			e.logger.Debug("unmatched inventory action", "player", p.Name(), "err", err)
			p.ResendInventory()
			return nil
		}
		actions = append(actions, a)
	}

	kind, flagged := Classify(pk, actions)
	continues := e.pending != nil && !flagged && e.pending.Continues(actions, e.env)
	switch Plan(e.pending, kind, flagged, continues) {
	case DecisionStart:
		e.pending = NewPending(kind)
		e.pending.Add(actions...)
		e.tryExecute()
	case DecisionAppend:
		e.pending.Add(actions...)
		e.tryExecute()
	case DecisionInterrupt:
		e.interrupt(kind)
	case DecisionInterruptDispatch:
		e.interrupt(kind)
		return e.dispatch(pk, actions)
	case DecisionDispatch:
		return e.dispatch(pk, actions)
	}
	return nil
}

// interrupt discards the live pending transaction and forces the client to resynchronise.
func (e *Engine) interrupt(incoming Kind) {
	e.logger.Debug("interrupted pending transaction", "player", e.env.Player.Name(), "pending", e.pending.Kind(), "incoming", incoming)
	e.metrics.Transaction(e.pending.Kind().String(), "interrupted")
	e.pending = nil
	e.env.Player.CloseWindows()
	e.env.Player.ResendInventory()
}

func (e *Engine) tryExecute() {
	if !e.pending.CanExecute(e.env) {
		return
	}
	pending := e.pending
	e.pending = nil
	if err := e.run(pending); err != nil {
		e.logger.Debug("failed to execute transaction", "player", e.env.Player.Name(), "kind", pending.Kind(), "err", err)
		e.env.Player.ResendInventory()
	}
}

// run executes p and schedules its effects on the world.
func (e *Engine) run(p Pending) error {
	ctx := event.NewContext()
	e.handler.HandleTransaction(ctx, e.env.Player, p.Kind(), p.Actions())
	if ctx.Cancelled() {
		e.metrics.Transaction(p.Kind().String(), "cancelled")
		return errCancelled
	}
	applied, err := execute(p, e.env)
	if err != nil {
		e.metrics.Transaction(p.Kind().String(), "failed")
		return err
	}
	e.metrics.Transaction(p.Kind().String(), "executed")

	var drops []inventory.Item
	for _, a := range applied {
		if d, ok := a.(*inventory.Drop); ok {
			drops = append(drops, d.Item)
		}
	}
	env := e.env
	e.world.Exec(func() {
		for _, it := range drops {
			e.world.DropItem(env.Player, it)
		}
		p.effects(env, e.world)
	})
	return nil
}

func (e *Engine) dispatch(pk *packet.InventoryTransaction, actions []inventory.Action) error {
	p := e.env.Player
	switch pk.TransactionType {
	case packet.TransactionTypeNormal:
		n := &Normal{}
		n.Add(actions...)
		if err := e.run(n); err != nil {
			e.failed++
			e.logger.Debug("failed to execute inventory transaction", "player", p.Name(), "failed", e.failed, "err", err)
			p.ResendInventory()
			if e.failed > e.conf.MaxFailedTransactions {
				return fmt.Errorf("%w: %d", ErrTooManyFailedTransactions, e.failed)
			}
			return nil
		}
		e.failed = 0
	case packet.TransactionTypeMismatch:
		p.ResendInventory()
	case packet.TransactionTypeUseItem:
		e.useItem(&pk.UseItem)
	case packet.TransactionTypeUseItemOnEntity:
		return e.useItemOnEntity(&pk.UseItemOnEntity)
	case packet.TransactionTypeReleaseItem:
		e.releaseItem(&pk.ReleaseItem)
	default:
		e.logger.Debug("unknown transaction type", "player", p.Name(), "type", pk.TransactionType)
	}
	return nil
}
