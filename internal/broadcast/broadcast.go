// Package broadcast fans snapshot records out to concurrent subscribers
// with per-subscriber backpressure (component H).
package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"itchbook/internal/emit"
)

// DefaultBufferSize is the default per-subscriber ring capacity (spec.md
// §4.8).
const DefaultBufferSize = 1024

// Subscriber is anything that can accept delivery of payload, one per
// snapshot, with its own backpressure handling. ws.go and kafka.go each
// implement it.
type Subscriber interface {
	deliver(payload []byte)
	id() string
}

// Broadcaster owns the subscriber set and the single queue fed by the
// engine thread (spec.md §5). It runs on its own goroutine, started by
// Run, and is the only writer to any subscriber's ring.
type Broadcaster struct {
	log *zap.Logger

	mu   sync.Mutex
	subs map[string]Subscriber

	queue chan emit.Snapshot
}

// New returns a Broadcaster whose internal engine->broadcaster queue holds
// queueSize records (default 8192 per spec.md §5); on queue full the
// engine thread blocks rather than drops, since book state must never be
// silently lost.
func New(log *zap.Logger, queueSize int) *Broadcaster {
	return &Broadcaster{
		log:   log,
		subs:  make(map[string]Subscriber),
		queue: make(chan emit.Snapshot, queueSize),
	}
}

// Queue returns the send side of the engine->broadcaster channel. The
// engine thread sends here; a full queue blocks it by design.
func (b *Broadcaster) Queue() chan<- emit.Snapshot { return b.queue }

// Add registers a subscriber. Joining mid-stream: it receives only future
// records, no backfill (spec.md §4.8).
func (b *Broadcaster) Add(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[s.id()] = s
}

// Remove drops a subscriber from the set, e.g. after a send-deadline
// timeout or socket close.
func (b *Broadcaster) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Run drains the engine->broadcaster queue until it is closed, publishing
// each snapshot to every current subscriber in the same order the engine
// produced it (spec.md §5's ordering guarantee).
func (b *Broadcaster) Run(pace func(emit.Snapshot)) {
	for snap := range b.queue {
		if pace != nil {
			pace(snap)
		}
		payload, err := snap.MarshalJSON()
		if err != nil {
			b.log.Error("marshal snapshot", zap.Error(err))
			continue
		}
		b.mu.Lock()
		for _, s := range b.subs {
			s.deliver(payload)
		}
		b.mu.Unlock()
	}
}

// Close closes the engine->broadcaster queue, signaling Run to drain and
// return once all pending snapshots are delivered.
func (b *Broadcaster) Close() { close(b.queue) }
