//go:build !unix

package firewall

import (
	"context"
	"net/netip"

	"github.com/rs/zerolog"
)

// noopController is used on non-Unix hosts: spec.md §4.2 requires the
// controller to be a logged no-op there rather than attempting a platform
// packet-filter call that doesn't exist.
type noopController struct {
	log zerolog.Logger
}

func newController(log zerolog.Logger) Controller {
	return &noopController{log: log.With().Str("component", "firewall").Logger()}
}

func (c *noopController) Open(ctx context.Context, port uint16) error {
	c.log.Info().Uint16("port", port).Msg("non-unix host: port firewall rules are not managed automatically")
	return nil
}

func (c *noopController) Pin(ctx context.Context, port uint16, source netip.Addr) error {
	c.log.Info().Uint16("port", port).Stringer("source", source).Msg("non-unix host: source pinning skipped")
	return nil
}

func (c *noopController) Close(ctx context.Context, port uint16, source netip.Addr) error {
	return nil
}
