package memberauth

import (
	"context"
	"sync"
	"sync/atomic"

	internalaudit "github.com/MrEthical07/memberauth/internal/audit"
	"github.com/rs/zerolog"
)

// Store owns the in-memory session of a client process.
//
// A Store starts in [StateInitializing]. [Store.Restore] loads the persisted
// session exactly once; [Store.Login] and [Store.Logout] are the only mutation
// entry points. Login and Logout are serialized per Store: overlapping calls
// queue behind the one in flight.
type Store struct {
	config  Config
	client  AuthClient
	cache   Cache
	logger  zerolog.Logger
	audit   *internalaudit.Dispatcher
	metrics *Metrics

	initOnce sync.Once
	ready    chan struct{}

	// opMu serializes restore, login and logout across the remote call.
	opMu sync.Mutex

	mu           sync.RWMutex
	account      *Account
	token        string
	initializing bool
	restoreErr   error

	subMu     sync.Mutex
	nextSubID uint64
	listeners []listenerEntry
	watchers  map[uint64]chan Snapshot

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Account:      s.account.clone(),
		Token:        s.token,
		Initializing: s.initializing,
	}
}

// Account returns a copy of the signed-in member, or nil.
func (s *Store) Account() *Account {
	return s.Snapshot().Account
}

// Token returns the current credential token, or "".
func (s *Store) Token() string {
	return s.Snapshot().Token
}

// IsInitializing reports whether the startup restore has not completed yet.
// While it returns true an absent session is not a conclusive "logged out".
func (s *Store) IsInitializing() bool {
	return s.Snapshot().Initializing
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	return s.Snapshot().State()
}

// Ready is closed once the startup restore has completed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// RestoreErr returns the *CacheCorruptionError recorded by a failed restore, or nil.
func (s *Store) RestoreErr() error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restoreErr
}

// install replaces account and token together and leaves the initializing
// phase. It returns the resulting snapshot.
func (s *Store) install(account *Account, token string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.token = token
	s.initializing = false
	return s.snapshotLocked()
}

// Subscribe registers fn to be called after every state change. Listeners run
// synchronously on the goroutine that changed the state, in registration order,
// and must not call Login or Logout on the same Store.
//
// The returned cancel function is idempotent.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Watch returns a channel that receives the current snapshot immediately and
// then every subsequent change. When the buffer is full the oldest pending
// snapshot is dropped, so the newest state is always delivered. The channel is
// closed when ctx is done or the store is closed.
func (s *Store) Watch(ctx context.Context, buffer int) <-chan Snapshot {
	if s == nil || s.watchers == nil {
		ch := make(chan Snapshot)
		close(ch)
		return ch
	}
	if buffer <= 0 {
		buffer = s.config.Notify.WatchBuffer
	}
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.subMu.Lock()
	if s.closed.Load() {
		s.subMu.Unlock()
		close(ch)
		return ch
	}
	s.nextSubID++
	id := s.nextSubID
	s.watchers[id] = ch
	sendLatest(ch, s.Snapshot())
	s.subMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
	}()

	return ch
}

func (s *Store) publish(snap Snapshot) {
	s.metricInc(MetricStateChange)

	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l.fn)
	}
	for _, ch := range s.watchers {
		sendLatest(ch, snap)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// sendLatest delivers snap without blocking, evicting the oldest queued value
// when ch is full. Callers hold subMu, so there is a single sender per channel.
func sendLatest(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close stops watchers and drains the audit dispatcher. The in-memory session
// stays readable; Login and Logout return [ErrStoreClosed] afterwards.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.subMu.Lock()
		s.closed.Store(true)
		close(s.done)
		s.subMu.Unlock()
		if s.audit != nil {
			s.audit.Close()
		}
	})
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (s *Store) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot returns a copy of the store's counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Store) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Store) checkUsable() error {
	if s == nil || s.client == nil {
		return ErrStoreNotReady
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}
