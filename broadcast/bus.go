// Package broadcast implements the per-championship fan-out channel: one
// ingest loop publishes decoded packets, many subscribers (the websocket
// layer, in the system this package is part of) consume them. The sender
// never blocks on a slow subscriber (spec.md §4.4).
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pitwall/telemetry-ingest/codec"
)

// DefaultCapacity is the recommended subscriber buffer size: spec.md §9
// corrects the original's mistake of sizing the channel in bytes of the
// largest packet variant — the right unit is messages, chosen so that at
// ~60 Hz input a subscriber has room to fall a little behind before
// lagging.
const DefaultCapacity = 256

// Message is one item a subscriber receives: either a decoded packet or,
// after a Recv that would otherwise have returned a dropped packet, a
// Lagged count describing how many packets were skipped.
type Message struct {
	Packet codec.Packet
	Lagged uint64
}

// Bus is a single championship's broadcast channel. Zero value is not
// usable; construct with New.
type Bus struct {
	capacity int

	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
}

type subscriber struct {
	data chan Message
	lag  atomic.Uint64
	done chan struct{}
}

// New creates a Bus with the given per-subscriber buffer capacity. A
// capacity <= 0 falls back to DefaultCapacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{capacity: capacity, subs: make(map[uint64]*subscriber)}
}

// Subscription is a handle returned by Subscribe. Packets published after
// Subscribe is called, and before Unsubscribe or the bus closing, are
// visible through Recv.
type Subscription struct {
	bus *Bus
	id  uint64
	sub *subscriber
}

// Subscribe joins the bus. The returned Subscription must eventually be
// released with Unsubscribe to free its buffer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &subscriber{
		data: make(chan Message, b.capacity),
		done: make(chan struct{}),
	}
	id := b.nextID
	b.nextID++
	if b.closed {
		close(s.done)
		close(s.data)
	} else {
		b.subs[id] = s
	}
	return &Subscription{bus: b, id: id, sub: s}
}

// Recv blocks until a message is available, the bus closes (ok=false), or
// ctx is cancelled (err set). If the subscriber fell behind since the
// previous Recv, the first call after that lag reports it via
// Message.Lagged instead of delivering the oldest buffered packet —
// mirroring spec.md §4.4's "resumes from the newest message".
func (s *Subscription) Recv(ctx context.Context) (Message, bool, error) {
	select {
	case <-s.sub.done:
		return Message{}, false, nil
	default:
	}
	if n := s.sub.lag.Swap(0); n > 0 {
		return Message{Lagged: n}, true, nil
	}
	select {
	case m, ok := <-s.sub.data:
		return m, ok, nil
	case <-s.sub.done:
		return Message{}, false, nil
	case <-ctx.Done():
		return Message{}, false, ctx.Err()
	}
}

// Unsubscribe removes the subscription from the bus and releases its
// buffer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subs[s.id]; ok {
		delete(s.bus.subs, s.id)
		close(sub.done)
	}
}

// Publish fans pkt out to every current subscriber. It never blocks: a
// subscriber whose buffer is full has its oldest buffered message dropped
// to make room, and its lag counter is incremented so its next Recv
// reports the gap instead of silently reordering. Publish with zero
// subscribers is a no-op, not an error (spec.md §7).
func (b *Bus) Publish(pkt codec.Packet) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		s.trySend(pkt)
	}
}

func (s *subscriber) trySend(pkt codec.Packet) {
	select {
	case s.data <- Message{Packet: pkt}:
		return
	default:
	}

	// Buffer full: drop the oldest queued message to make room, and record
	// the drop so the subscriber's next Recv surfaces it as lag.
	select {
	case <-s.data:
	default:
	}
	s.lag.Add(1)

	select {
	case s.data <- Message{Packet: pkt}:
	default:
		// Not reached while Publish holds b.mu (a concurrent Recv only
		// frees room); counted as a drop rather than blocking.
		s.lag.Add(1)
	}
}

// Close ends the bus: every current and future subscriber observes
// end-of-stream on its next Recv (spec.md §4.4 and §8 property 6, applied
// on the ingest task's exit path).
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		close(s.done)
		delete(b.subs, id)
	}
}

// SubscriberCount reports the current number of live subscriptions. Used
// by the registry for introspection; never gates Publish.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
