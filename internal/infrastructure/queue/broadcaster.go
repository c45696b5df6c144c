package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

const defaultBuffer = 64

// Broadcaster fans session snapshots out to a fixed set of observers, one
// worker per observer, so a slow observer never blocks the session manager.
// Each observer sees snapshots in the order they were published.
type Broadcaster struct {
	workers []chan domain.Snapshot
	targets []ports.SessionObserver
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewBroadcaster creates a Broadcaster with a per-observer buffer of size
// buffer. If buffer <= 0, defaultBuffer is used.
func NewBroadcaster(buffer int, log zerolog.Logger, observers ...ports.SessionObserver) *Broadcaster {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	b := &Broadcaster{
		workers: make([]chan domain.Snapshot, len(observers)),
		targets: observers,
		log:     log,
	}
	for i := range b.workers {
		b.workers[i] = make(chan domain.Snapshot, buffer)
	}
	return b
}

// Start launches all worker goroutines. Workers stop when Close is called,
// or when ctx is cancelled after delivering what is already queued.
func (b *Broadcaster) Start(ctx context.Context) {
	b.wg.Add(len(b.workers))
	for i, ch := range b.workers {
		go b.runWorker(ctx, i, ch)
	}
}

// OnSession enqueues s for every observer. It never blocks: when an
// observer's buffer is full the snapshot is dropped for that observer.
func (b *Broadcaster) OnSession(s domain.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for i, ch := range b.workers {
		snap := s
		snap.User = s.User.Clone()
		select {
		case ch <- snap:
		default:
			b.log.Warn().
				Int("observer", i).
				Str("state", string(s.State)).
				Msg("session observer buffer full, snapshot dropped")
		}
	}
}

// Close stops accepting snapshots and waits for workers to drain what is
// already queued.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.workers {
		close(ch)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Broadcaster) runWorker(ctx context.Context, id int, ch <-chan domain.Snapshot) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			b.drain(id, ch)
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			b.deliver(id, snap)
		}
	}
}

func (b *Broadcaster) drain(id int, ch <-chan domain.Snapshot) {
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			b.deliver(id, snap)
		default:
			return
		}
	}
}

func (b *Broadcaster) deliver(id int, snap domain.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Int("observer", id).
				Msg("session observer panicked")
		}
	}()
	b.targets[id].OnSession(snap)
}
