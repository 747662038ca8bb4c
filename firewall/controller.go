// Package firewall pins a listener's UDP port to the first source address
// it observes, hardening the socket against spoofed traffic (spec.md §4.2).
// The underlying mechanism is platform-specific (see controller_unix.go and
// controller_other.go); this file holds the shared contract and logging.
package firewall

import (
	"context"
	"net/netip"

	"github.com/rs/zerolog"
)

// Controller manipulates the host's packet filter for a single listening
// UDP port. All three operations are safe to call from one goroutine at a
// time per port — the ingest loop that owns a port is the only caller.
type Controller interface {
	// Open permits inbound UDP on port from any source.
	Open(ctx context.Context, port uint16) error

	// Pin restricts port to source after the first legitimate packet is
	// seen from it. Idempotent: a second call with the same (port, source)
	// is a no-op.
	Pin(ctx context.Context, port uint16, source netip.Addr) error

	// Close removes both the pin rule and any residual accept rule for
	// port. Safe to call even if Pin was never reached.
	Close(ctx context.Context, port uint16, source netip.Addr) error
}

// New returns the platform-appropriate Controller. On non-Unix hosts every
// operation is a no-op; Open and Pin log an informational message and
// Close returns silently (spec.md §4.2: "this is intentional and
// documented as an external-environment assumption").
func New(log zerolog.Logger) Controller {
	return newController(log)
}
