package ingest

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pitwall/telemetry-ingest/broadcast"
)

// fakeController is a firewall.Controller double that records every call so
// tests can assert on the Open/Pin/Close sequence without touching iptables.
type fakeController struct {
	mu     sync.Mutex
	opened bool
	pins   []netip.Addr
	closes []netip.Addr
}

func (f *fakeController) Open(ctx context.Context, port uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
	return nil
}

func (f *fakeController) Pin(ctx context.Context, port uint16, source netip.Addr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, source)
	return nil
}

func (f *fakeController) Close(ctx context.Context, port uint16, source netip.Addr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes = append(f.closes, source)
	return nil
}

func (f *fakeController) snapshot() (opened bool, pins, closes []netip.Addr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, append([]netip.Addr(nil), f.pins...), append([]netip.Addr(nil), f.closes...)
}

// freePort asks the kernel for an unused UDP port, releasing it immediately
// so Run can bind it. Racy in theory, standard practice in UDP tests.
func freePort(t *testing.T) uint16 {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("freePort: %v", err)
	}
	defer conn.Close()
	return uint16(conn.LocalAddr().(*net.UDPAddr).Port)
}

// TestRunClosesFirewallWhenCancelledBeforeAnyPacket reproduces a listener
// that reaches [Bound] (Open succeeds) but is stopped before any datagram
// ever arrives, so it never reaches [Pinned]. Firewall.Close must still be
// invoked exactly once, since Open succeeded.
func TestRunClosesFirewallWhenCancelledBeforeAnyPacket(t *testing.T) {
	fw := &fakeController{}
	bus := broadcast.New(8)
	l := New(Deps{
		ChampionshipID: 1,
		Port:           freePort(t),
		Bus:            bus,
		Firewall:       fw,
		Log:            zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Give Run a moment to reach the blocking read, then stop it without
	// ever sending a datagram.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	opened, pins, closes := fw.snapshot()
	if !opened {
		t.Fatal("expected Firewall.Open to have been called")
	}
	if len(pins) != 0 {
		t.Fatalf("expected no Pin calls, got %d", len(pins))
	}
	if len(closes) != 1 {
		t.Fatalf("expected exactly one Firewall.Close call for the successful Open, got %d", len(closes))
	}
}

// TestRunPinsOnFirstDatagramRegardlessOfSessionUID reproduces the
// menu-screen window where the game emits session_uid == 0 datagrams: the
// port must be pinned to the first observed source immediately, not once a
// real session starts.
func TestRunPinsOnFirstDatagramRegardlessOfSessionUID(t *testing.T) {
	fw := &fakeController{}
	bus := broadcast.New(8)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	port := freePort(t)
	l := New(Deps{
		ChampionshipID: 1,
		Port:           port,
		Bus:            bus,
		Firewall:       fw,
		Log:            zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	client, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(port)})
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	defer client.Close()

	// A 4-byte datagram is too short to decode as a header, so it is
	// dropped as malformed and never reaches the session_uid check or
	// dispatch. It must still trigger the pin: pinning happens before
	// decoding, so session_uid (zero while the game sits in menus) cannot
	// gate it.
	garbage := make([]byte, 4)
	if _, err := client.Write(garbage); err != nil {
		t.Fatalf("Write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		_, pins, _ := fw.snapshot()
		if len(pins) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected Pin to be called for the first datagram, session_uid or not")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
