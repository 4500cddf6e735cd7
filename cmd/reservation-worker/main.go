package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/estora/estora-api/internal/config"
	"github.com/estora/estora-api/internal/domain/governance"
	"github.com/estora/estora-api/internal/domain/notification"
	"github.com/estora/estora-api/internal/domain/reservation"
	"github.com/estora/estora-api/internal/pkg/database"
	"github.com/estora/estora-api/internal/pkg/logger"
)

const (
	sweepInterval = time.Minute
	pruneInterval = time.Hour
	retentionDays = 90
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Dur("pending_ttl", cfg.PendingReservationTTL).
		Msg("Starting reservation-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	// The worker only sweeps, it never quotes or notifies
	reservationService := reservation.NewService(reservation.NewRepository(db), nil, nil, int64(cfg.PlatformFeeBps))

	governanceService := governance.NewService(governance.NewRepository(db), nil, nil)
	notificationService := notification.NewService(notification.NewRepository(db), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()

	runSweep(ctx, reservationService, governanceService, cfg.PendingReservationTTL)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reservation-worker stopped")
			return

		case <-sweep.C:
			runSweep(ctx, reservationService, governanceService, cfg.PendingReservationTTL)

		case <-prune.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			if n, err := notificationService.PruneRead(ctx, cutoff); err != nil {
				log.Error().Err(err).Msg("Failed to prune read notifications")
			} else if n > 0 {
				log.Info().Int("deleted", n).Msg("Pruned read notifications")
			}
		}
	}
}

func runSweep(ctx context.Context, reservations *reservation.Service, polls *governance.Service, ttl time.Duration) {
	if n, err := reservations.ExpireStale(ctx, ttl); err != nil {
		log.Error().Err(err).Msg("Failed to expire stale reservations")
	} else if n > 0 {
		log.Info().Int("expired", n).Msg("Expired stale reservations")
	}

	if n, err := polls.CloseEnded(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close ended polls")
	} else if n > 0 {
		log.Info().Int("closed", n).Msg("Closed ended polls")
	}
}
