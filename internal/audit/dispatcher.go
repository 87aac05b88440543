package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events instead of blocking the caller when the
	// queue is full. Discards are counted by Dropped.
	DropIfFull bool
}

// Dispatcher moves events off the request path onto a single forwarding
// goroutine. A nil *Dispatcher is valid and discards everything.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	mu      sync.RWMutex
	closed  bool
	queue   chan Event
	drained chan struct{}

	dropped atomic.Uint64
}

// NewDispatcher returns nil when auditing is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, max(cfg.BufferSize, 1)),
		drained:    make(chan struct{}),
	}
	go d.forward()
	return d
}

func (d *Dispatcher) forward() {
	defer close(d.drained)
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
	}
}

// Emit queues event. After Close it is a no-op.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	}
}

// Close stops intake and waits until every queued event reached the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.drained
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
