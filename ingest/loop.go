// Package ingest implements the per-championship ingest loop: the state
// machine that receives, decodes, samples, deduplicates, publishes and
// persists one listener's UDP stream (spec.md §4.5).
package ingest

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pitwall/telemetry-ingest/broadcast"
	"github.com/pitwall/telemetry-ingest/codec"
	"github.com/pitwall/telemetry-ingest/firewall"
	"github.com/pitwall/telemetry-ingest/store"
)

// maxDatagramSize bounds a single UDP read buffer (spec.md §6: "datagrams
// up to 1460 bytes").
const maxDatagramSize = 1500

// Deps bundles everything a Loop needs beyond the (championship, port)
// pair. The caller (registry/wiring code) owns the lifetime of every
// field here; Loop only uses them.
type Deps struct {
	ChampionshipID uint32
	Port           uint16
	Bus            *broadcast.Bus
	Snapshots      *store.SnapshotStore
	Events         *store.EventStore
	Firewall       firewall.Controller
	Log            zerolog.Logger
}

// Loop is one championship's ingest task. It satisfies registry.Loop.
type Loop struct {
	deps Deps
	log  zerolog.Logger

	decodeErrors atomic.Uint64
}

// New constructs a Loop. Binding the socket happens inside Run, not here,
// matching spec.md §4.6: Start returns once the task is spawned, not once
// it is bound.
func New(deps Deps) *Loop {
	return &Loop{
		deps: deps,
		log: deps.Log.With().
			Str("component", "ingest_loop").
			Uint32("championship_id", deps.ChampionshipID).
			Uint16("port", deps.Port).
			Logger(),
	}
}

// Stats is a snapshot of this loop's counters, exposed for introspection
// (not part of the original service, added per spec.md's invitation to
// supplement dropped features with observability the core didn't have).
type Stats struct {
	DecodeErrors uint64
}

// Stats returns the current counters. Safe to call concurrently with Run.
func (l *Loop) Stats() Stats {
	return Stats{DecodeErrors: l.decodeErrors.Load()}
}

// Run binds the UDP socket, then loops until ctx is cancelled, a
// FinalClassification is received, or a fatal error occurs. It always
// attempts firewall cleanup on the way out, including on panic (spec.md
// §5: "Firewall rules installed for that port MUST be torn down even on
// abnormal exit").
func (l *Loop) Run(ctx context.Context) (err error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: int(l.deps.Port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("ingest: SocketBind on port %d: %w", l.deps.Port, err)
	}

	state := &taskState{}
	var sourceAddr netip.Addr
	var firewallOpened bool

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingest: panic in listener for championship %d: %v", l.deps.ChampionshipID, r)
		}
		_ = conn.Close()
		// Close unconditionally whenever Open succeeded, regardless of
		// whether the listener ever reached [Pinned] (spec.md §5: firewall
		// rules must be torn down even on abnormal exit). Firewall.Close is
		// documented safe to call with a source that was never pinned.
		if firewallOpened {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if cerr := l.deps.Firewall.Close(cleanupCtx, l.deps.Port, sourceAddr); cerr != nil {
				l.log.Warn().Err(cerr).Msg("firewall cleanup failed on listener exit")
			}
		}
	}()

	if err := l.deps.Firewall.Open(ctx, l.deps.Port); err != nil {
		return fmt.Errorf("ingest: FirewallRule opening port %d: %w", l.deps.Port, err)
	}
	firewallOpened = true

	// Close the socket as soon as ctx is cancelled so the blocking
	// ReadFromUDP below wakes up promptly; the loop's other suspension
	// points are store/broadcast writes and the idle sleep (spec.md §5).
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	history := newHistoryTracker()
	buf := make([]byte, maxDatagramSize)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, raddr, readErr := conn.ReadFromUDP(buf)
		if readErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.Warn().Err(readErr).Msg("udp read error")
			continue
		}

		// Pin on the first successfully-received datagram, before even
		// looking at its contents: the game emits session_uid == 0
		// datagrams for an open-ended period while sitting in menus, and
		// the port must not stay open to any source for that whole window
		// (spec.md §1, §4.2: pin to "the first source address observed" /
		// "first legitimate packet", not the first in-session packet).
		if !state.firewallPinned {
			sourceAddr = raddr.AddrPort().Addr()
			if perr := l.deps.Firewall.Pin(ctx, l.deps.Port, sourceAddr); perr != nil {
				return fmt.Errorf("ingest: FirewallRule pinning port %d to %s: %w", l.deps.Port, sourceAddr, perr)
			}
			state.firewallPinned = true
		}

		header, pkt, decErr := codec.Decode(buf[:n])
		if decErr != nil {
			l.decodeErrors.Add(1)
			l.log.Debug().Err(decErr).Msg("dropped malformed datagram")
			continue
		}

		if header.SessionUID == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(idleSleep):
			}
			continue
		}

		if done := l.dispatch(ctx, header, pkt, buf[:n], state, history, time.Now()); done {
			return nil
		}
	}
}

// dispatch applies sampling, dedup, persistence and broadcast for one
// decoded packet. raw is the datagram's original bytes (spec.md §6: a
// snapshot value may be the raw UDP payload or a serialized decoded
// form — this loop always persists the raw payload, so a future reader
// only needs the codec package to interpret it, never this loop's
// in-memory layout). now is passed in rather than read with time.Now()
// so tests can drive the sampling/dedup logic against a simulated clock.
// dispatch returns true when the loop should end (only true after a
// FinalClassification).
func (l *Loop) dispatch(ctx context.Context, header codec.Header, pkt codec.Packet, raw []byte, state *taskState, history *historyTracker, now time.Time) bool {
	switch p := pkt.(type) {
	case codec.Motion:
		if state.motionDue(now) {
			l.deps.Bus.Publish(p)
			state.lastMotionPublish = now
		}

	case codec.Session:
		if state.sessionDue(now) {
			key := store.SessionKey(l.deps.ChampionshipID, header.SessionUID)
			if err := l.deps.Snapshots.Write(ctx, key, raw); err != nil {
				l.log.Warn().Err(err).Msg("SnapshotWrite failed for session")
			}
			l.deps.Bus.Publish(p)
			state.lastSessionPublish = now
		}

	case codec.Participants:
		if state.participantsDue(now) {
			key := store.ParticipantsKey(l.deps.ChampionshipID, header.SessionUID)
			if err := l.deps.Snapshots.Write(ctx, key, raw); err != nil {
				l.log.Warn().Err(err).Msg("SnapshotWrite failed for participants")
			}
			l.deps.Bus.Publish(p)
			state.lastParticipantsPublish = now
		}

	case codec.Event:
		if err := l.deps.Events.Append(ctx, header.SessionUID, p.Code, p.Payload); err != nil {
			l.log.Warn().Err(err).Str("event_code", p.Code).Msg("EventWrite failed")
		}
		l.deps.Bus.Publish(p)

	case codec.SessionHistory:
		lap, ok := p.LastLap()
		if !ok {
			return false
		}
		if history.Accept(p.CarIdx, lap.Sectors, now) {
			key := store.HistoryKey(l.deps.ChampionshipID, header.SessionUID, p.CarIdx)
			if err := l.deps.Snapshots.Write(ctx, key, raw); err != nil {
				l.log.Warn().Err(err).Uint8("car_idx", p.CarIdx).Msg("SnapshotWrite failed for session history")
			}
			l.deps.Bus.Publish(p)
		}

	case codec.FinalClassification:
		l.deps.Bus.Publish(p)
		return true
	}

	return false
}
