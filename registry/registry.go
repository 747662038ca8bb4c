// Package registry maps championship id to (ingest task, broadcast bus)
// and owns the lifecycle transitions that cross that boundary: start,
// stop, subscribe, list (spec.md §4.6).
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pitwall/telemetry-ingest/broadcast"
)

// ErrAlreadyExists is returned by Start when a listener is already
// registered for the given championship id.
var ErrAlreadyExists = errors.New("registry: championship already has an active listener")

// ErrNotFound is returned by Stop/Subscribe when no listener is
// registered for the given championship id.
var ErrNotFound = errors.New("registry: no listener for this championship")

// Loop is the ingest task a listener runs. Run blocks until ctx is
// cancelled or the loop ends on its own (e.g. after a FinalClassification,
// spec.md §4.5); its error is logged by the registry, never returned to
// Start's caller, since Start returns as soon as the task is spawned.
type Loop interface {
	Run(ctx context.Context) error
}

type entry struct {
	cancel context.CancelFunc
	bus    *broadcast.Bus
	port   uint16
}

// Registry is the listener registry. The zero value is not usable; use
// New.
type Registry struct {
	log zerolog.Logger

	mu        sync.RWMutex
	listeners map[uint32]*entry
	group     *errgroup.Group
}

// New creates an empty registry. group is the errgroup all spawned loops
// run under; the caller decides its lifetime and can Wait on it at
// shutdown. A loop's error is logged by the registry and never returned
// to the group, so one failing listener does not cancel the others.
func New(group *errgroup.Group, log zerolog.Logger) *Registry {
	return &Registry{
		log:       log.With().Str("component", "registry").Logger(),
		listeners: make(map[uint32]*entry),
		group:     group,
	}
}

// Start spawns loop under a child context and registers its bus. It
// returns as soon as the task is spawned, not once it is bound — binding
// failures are logged by the registry when the task's Run returns, not
// reported through Start's return value (spec.md §4.6).
func (r *Registry) Start(ctx context.Context, championshipID uint32, port uint16, bus *broadcast.Bus, loop Loop) error {
	r.mu.Lock()
	if _, exists := r.listeners[championshipID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: championship %d", ErrAlreadyExists, championshipID)
	}
	taskCtx, cancel := context.WithCancel(ctx)
	r.listeners[championshipID] = &entry{cancel: cancel, bus: bus, port: port}
	r.mu.Unlock()

	r.group.Go(func() error {
		err := loop.Run(taskCtx)
		r.mu.Lock()
		delete(r.listeners, championshipID)
		r.mu.Unlock()
		bus.Close()
		if err != nil {
			r.log.Error().Err(err).Uint32("championship_id", championshipID).Msg("ingest loop ended with error")
		}
		return nil
	})

	r.log.Info().Uint32("championship_id", championshipID).Uint16("port", port).Msg("listener started")
	return nil
}

// Stop cancels the task for championshipID and removes the registry
// entry. Firewall and socket teardown happen inside the loop's own exit
// path in response to context cancellation, not here (spec.md §5:
// "scoping firewall acquisition to a release guard on the task's exit
// path").
func (r *Registry) Stop(championshipID uint32) error {
	r.mu.Lock()
	e, ok := r.listeners[championshipID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: championship %d", ErrNotFound, championshipID)
	}
	delete(r.listeners, championshipID)
	r.mu.Unlock()

	e.cancel()
	r.log.Info().Uint32("championship_id", championshipID).Msg("listener stop requested")
	return nil
}

// Subscribe hands out a fresh broadcast subscription for championshipID,
// or ErrNotFound if no listener is registered.
func (r *Registry) Subscribe(championshipID uint32) (*broadcast.Subscription, error) {
	r.mu.RLock()
	e, ok := r.listeners[championshipID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: championship %d", ErrNotFound, championshipID)
	}
	return e.bus.Subscribe(), nil
}

// List returns a snapshot of currently registered championship ids.
func (r *Registry) List() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint32, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	return ids
}

// Active reports whether championshipID currently has a registered
// listener.
func (r *Registry) Active(championshipID uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.listeners[championshipID]
	return ok
}

// Len reports the number of currently registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
