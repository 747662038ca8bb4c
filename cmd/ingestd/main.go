// Command ingestd wires the telemetry ingestion engine's components
// together and runs a single demo listener. The HTTP/websocket
// surface that would actually expose start/stop/subscribe to the CRUD
// layer is out of scope for this module (spec.md §1); this binary exists
// to exercise the core end to end.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pitwall/telemetry-ingest/broadcast"
	"github.com/pitwall/telemetry-ingest/firewall"
	"github.com/pitwall/telemetry-ingest/ingest"
	"github.com/pitwall/telemetry-ingest/internal/config"
	"github.com/pitwall/telemetry-ingest/registry"
	"github.com/pitwall/telemetry-ingest/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create postgres pool")
	}
	defer pgPool.Close()

	snapshots := store.NewSnapshotStore(redisClient, log.Logger)
	events := store.NewEventStore(pgPool, log.Logger)

	if err := snapshots.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	if err := events.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	reg := registry.New(group, log.Logger)
	fw := firewall.New(log.Logger)

	// Demo wiring: a single championship listening on the first port in
	// the game's configured range (spec.md §3). In the full system, the
	// CRUD layer drives registry.Start/Stop per championship instead.
	const demoChampionshipID = 1
	const demoPort = 20777

	bus := broadcast.New(broadcast.DefaultCapacity)
	loop := ingest.New(ingest.Deps{
		ChampionshipID: demoChampionshipID,
		Port:           demoPort,
		Bus:            bus,
		Snapshots:      snapshots,
		Events:         events,
		Firewall:       fw,
		Log:            log.Logger,
	})

	if err := reg.Start(groupCtx, demoChampionshipID, demoPort, bus, loop); err != nil {
		log.Fatal().Err(err).Msg("failed to start demo listener")
	}
	log.Info().Uint32("championship_id", demoChampionshipID).Uint16("port", demoPort).Msg("ingestd listening")

	<-groupCtx.Done()
	log.Info().Msg("shutting down")

	if err := reg.Stop(demoChampionshipID); err != nil && !errors.Is(err, registry.ErrNotFound) {
		log.Warn().Err(err).Msg("error stopping demo listener")
	}

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("ingest group exited with error")
	}
}
