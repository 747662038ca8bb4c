//go:build unix

package firewall

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
)

func newTestController(t *testing.T, calls *[][]string) *iptablesController {
	t.Helper()
	c := &iptablesController{
		log:    zerolog.Nop(),
		pinned: make(map[pinKey]bool),
	}
	c.run = func(ctx context.Context, args ...string) error {
		*calls = append(*calls, append([]string(nil), args...))
		return nil
	}
	return c
}

func TestPinIsIdempotent(t *testing.T) {
	var calls [][]string
	c := newTestController(t, &calls)
	src := netip.MustParseAddr("203.0.113.7")

	if err := c.Pin(context.Background(), 20777, src); err != nil {
		t.Fatalf("first Pin: %v", err)
	}
	firstCallCount := len(calls)
	if firstCallCount == 0 {
		t.Fatal("expected Pin to issue iptables calls")
	}

	if err := c.Pin(context.Background(), 20777, src); err != nil {
		t.Fatalf("second Pin: %v", err)
	}
	if len(calls) != firstCallCount {
		t.Fatalf("second Pin issued %d more iptables calls, want 0 (idempotent)", len(calls)-firstCallCount)
	}
}

func TestPinDifferentSourceReinstalls(t *testing.T) {
	var calls [][]string
	c := newTestController(t, &calls)

	if err := c.Pin(context.Background(), 20777, netip.MustParseAddr("203.0.113.7")); err != nil {
		t.Fatalf("Pin A: %v", err)
	}
	afterFirst := len(calls)

	if err := c.Pin(context.Background(), 20777, netip.MustParseAddr("203.0.113.8")); err != nil {
		t.Fatalf("Pin B: %v", err)
	}
	if len(calls) == afterFirst {
		t.Fatal("expected a second source on the same port to issue new iptables calls")
	}
}

func TestPinPropagatesRuleFailure(t *testing.T) {
	var calls [][]string
	c := newTestController(t, &calls)
	c.run = func(ctx context.Context, args ...string) error {
		calls = append(calls, args)
		return errors.New("iptables: permission denied")
	}

	err := c.Pin(context.Background(), 20777, netip.MustParseAddr("203.0.113.7"))
	if err == nil {
		t.Fatal("expected Pin to propagate a rule-install failure")
	}
}

func TestCloseWithoutPinRemovesAcceptAllRule(t *testing.T) {
	var calls [][]string
	c := newTestController(t, &calls)

	if err := c.Open(context.Background(), 20777); err != nil {
		t.Fatalf("Open: %v", err)
	}
	calls = nil

	if err := c.Close(context.Background(), 20777, netip.Addr{}); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var removedAcceptAll bool
	for _, call := range calls {
		if len(call) >= 2 && call[0] == "-D" && call[len(call)-1] == "ACCEPT" {
			removedAcceptAll = true
		}
	}
	if !removedAcceptAll {
		t.Fatalf("Close with a never-pinned source did not remove the accept-all rule installed by Open: %v", calls)
	}
}

func TestCloseClearsPinnedState(t *testing.T) {
	var calls [][]string
	c := newTestController(t, &calls)
	src := netip.MustParseAddr("203.0.113.7")

	if err := c.Pin(context.Background(), 20777, src); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := c.Close(context.Background(), 20777, src); err != nil {
		t.Fatalf("Close: %v", err)
	}

	beforeReinstall := len(calls)
	if err := c.Pin(context.Background(), 20777, src); err != nil {
		t.Fatalf("re-Pin after Close: %v", err)
	}
	if len(calls) == beforeReinstall {
		t.Fatal("expected Pin after Close to reinstall rules, not treat the pair as idempotent")
	}
}
