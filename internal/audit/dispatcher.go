package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops ordinary events when the queue is full instead of
	// blocking the caller. Retained events are queued either way.
	DropIfFull bool
}

// Dispatcher asynchronously forwards audit events to a sink, in emit order.
//
// The queue holds at most BufferSize events, except that a retained event
// (see [Event.Retained]) arriving at a full queue evicts the oldest ordinary
// event, or grows the queue when only retained events are pending.
type Dispatcher struct {
	cfg  Config
	sink Sink

	mu     sync.Mutex
	queue  []Event
	space  chan struct{} // closed and replaced each time an event leaves the queue
	closed bool

	wake      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewDispatcher starts the delivery goroutine. It returns nil when cfg is
// disabled; every Dispatcher method accepts a nil receiver.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make([]Event, 0, cfg.BufferSize),
		space: make(chan struct{}),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		event, ok, closed := d.next()
		if ok {
			d.sink.Emit(context.Background(), event)
			continue
		}
		if closed {
			return
		}
		select {
		case <-d.wake:
		case <-d.done:
		}
	}
}

// next pops the oldest queued event. closed is true once the queue is empty
// and Close has been called.
func (d *Dispatcher) next() (event Event, ok bool, closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return Event{}, false, d.closed
	}
	event = d.queue[0]
	d.queue[0] = Event{}
	d.queue = d.queue[1:]

	close(d.space)
	d.space = make(chan struct{})
	return event, true, false
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Emit queues event. A full queue drops ordinary events when DropIfFull is set,
// and otherwise blocks until there is room, ctx is done, or the dispatcher
// closes. Retained events never block and are never dropped.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		if len(d.queue) < d.cfg.BufferSize {
			d.queue = append(d.queue, event)
			d.mu.Unlock()
			d.signal()
			return
		}
		if event.Retained() {
			d.evictLocked()
			d.queue = append(d.queue, event)
			d.mu.Unlock()
			d.signal()
			return
		}
		if d.cfg.DropIfFull {
			d.mu.Unlock()
			d.dropped.Add(1)
			return
		}
		space := d.space
		d.mu.Unlock()

		select {
		case <-space:
		case <-ctx.Done():
			return
		case <-d.done:
			return
		}
	}
}

// evictLocked removes the oldest ordinary event to make room for a retained one.
func (d *Dispatcher) evictLocked() {
	for i, queued := range d.queue {
		if queued.Retained() {
			continue
		}
		copy(d.queue[i:], d.queue[i+1:])
		d.queue[len(d.queue)-1] = Event{}
		d.queue = d.queue[:len(d.queue)-1]
		d.dropped.Add(1)
		return
	}
}

// Close stops accepting events and waits until queued events are delivered.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
