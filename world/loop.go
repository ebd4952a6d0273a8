package world

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Loop runs functions one after another on a single goroutine. Everything owned by a world is only
// touched from its loop.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
	logger *slog.Logger
}

// NewLoop starts a loop buffering up to size functions.
func NewLoop(size int, logger *slog.Logger) *Loop {
	l := &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l
}

// Exec schedules f and returns immediately. f is discarded if the loop is closed or its queue is full.
func (l *Loop) Exec(f func()) {
	if l.closed.Load() {
		return
	}
	select {
	case l.queue <- f:
	case <-l.done:
	default:
		l.logger.Warn("world queue full, discarding function")
	}
}

// Do runs f on the loop and waits for it to return. It reports false if the loop was closed before f
// started, in which case f never runs. Once f has started, Do waits for it even if the loop closes.
func (l *Loop) Do(f func()) bool {
	if l.closed.Load() {
		return false
	}
	const (
		pending int32 = iota
		started
		cancelled
	)
	var state atomic.Int32
	ran := make(chan struct{})
	select {
	case l.queue <- func() {
		if !state.CompareAndSwap(pending, started) {
			return
		}
		defer close(ran)
		f()
	}:
	case <-l.done:
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		if state.CompareAndSwap(pending, cancelled) {
			return false
		}
		<-ran
		return true
	}
}

// Close stops the loop. Functions still queued are discarded.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

func (l *Loop) run() {
	for {
		select {
		case f := <-l.queue:
			l.execute(f)
		case <-l.done:
			return
		}
	}
}

func (l *Loop) execute(f func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("world function panicked", "panic", r)
		}
	}()
	f()
}
