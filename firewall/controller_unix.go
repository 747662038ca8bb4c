//go:build unix

package firewall

import (
	"context"
	"fmt"
	"net/netip"
	"os/exec"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// iptablesController shells out to iptables exactly as the original service
// did (sudo iptables ...), keyed on INPUT/udp/--dport rules. pinned tracks
// which (port, source) pairs have already been installed so Pin stays
// idempotent without re-shelling on every packet.
type iptablesController struct {
	log zerolog.Logger
	run func(ctx context.Context, args ...string) error

	mu     sync.Mutex
	pinned map[pinKey]bool
}

type pinKey struct {
	port   uint16
	source netip.Addr
}

func newController(log zerolog.Logger) Controller {
	c := &iptablesController{
		log:    log.With().Str("component", "firewall").Logger(),
		pinned: make(map[pinKey]bool),
	}
	c.run = c.runIPTables
	return c
}

func (c *iptablesController) Open(ctx context.Context, port uint16) error {
	if err := c.run(ctx, "-A", "INPUT", "-p", "udp", "--dport", portStr(port), "-j", "ACCEPT"); err != nil {
		return fmt.Errorf("firewall: open port %d: %w", port, err)
	}
	c.log.Info().Uint16("port", port).Msg("opened port for all sources")
	return nil
}

func (c *iptablesController) Pin(ctx context.Context, port uint16, source netip.Addr) error {
	key := pinKey{port: port, source: source}

	c.mu.Lock()
	if c.pinned[key] {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ps := portStr(port)
	// Remove any pre-existing accept/drop rule for this port first, so
	// restarts don't accumulate duplicate rules (spec.md §4.2 edge policy).
	_ = c.run(ctx, "-D", "INPUT", "-p", "udp", "--dport", ps, "-j", "ACCEPT")
	_ = c.run(ctx, "-D", "INPUT", "-p", "udp", "--dport", ps, "-j", "DROP")

	if err := c.run(ctx, "-A", "INPUT", "-p", "udp", "--dport", ps, "-j", "DROP"); err != nil {
		return fmt.Errorf("firewall: drop-all for port %d: %w", port, err)
	}
	if err := c.run(ctx, "-I", "INPUT", "1", "-p", "udp", "--dport", ps, "-s", source.String(), "-j", "ACCEPT"); err != nil {
		return fmt.Errorf("firewall: allow %s on port %d: %w", source, port, err)
	}

	c.mu.Lock()
	c.pinned[key] = true
	c.mu.Unlock()

	c.log.Info().Uint16("port", port).Stringer("source", source).Msg("pinned port to source address")
	return nil
}

func (c *iptablesController) Close(ctx context.Context, port uint16, source netip.Addr) error {
	ps := portStr(port)
	// Best-effort: mirror original_source's close_machine_port, which logs
	// but does not fail the caller if a rule is already gone. source may be
	// the zero value when Close is called after Open but before Pin ever
	// ran, so the generic accept-all rule Open installs is removed
	// unconditionally rather than only the source-specific pin rule.
	if source.IsValid() {
		if err := c.run(ctx, "-D", "INPUT", "-p", "udp", "--dport", ps, "-s", source.String(), "-j", "ACCEPT"); err != nil {
			c.log.Warn().Err(err).Uint16("port", port).Msg("failed to remove source-accept rule")
		}
	}
	if err := c.run(ctx, "-D", "INPUT", "-p", "udp", "--dport", ps, "-j", "DROP"); err != nil {
		c.log.Warn().Err(err).Uint16("port", port).Msg("failed to remove drop-all rule")
	}
	if err := c.run(ctx, "-D", "INPUT", "-p", "udp", "--dport", ps, "-j", "ACCEPT"); err != nil {
		c.log.Warn().Err(err).Uint16("port", port).Msg("failed to remove accept-all rule")
	}

	c.mu.Lock()
	delete(c.pinned, pinKey{port: port, source: source})
	c.mu.Unlock()

	return nil
}

func (c *iptablesController) runIPTables(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "sudo", append([]string{"iptables"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %s", err, out)
	}
	return nil
}

func portStr(port uint16) string {
	return strconv.FormatUint(uint64(port), 10)
}
