package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/service"
	"github.com/segyhp/library-engine/pkg/logger"
)

// sweeps bound how long a single run may hold the database
const sweepTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	log.Info("starting library scheduler")

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	store := repository.NewStore(db)
	// the sweeps never touch book counters, so no cache is needed here
	loans := service.NewLoanService(store, nil, cfg, log)
	reservations := service.NewReservationService(store, cfg, log)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if err := setupCronJobs(c, cfg, loans, reservations, log); err != nil {
		log.Error("failed to schedule jobs", "err", err)
		os.Exit(1)
	}

	c.Start()
	log.Info("scheduler started",
		"fine_sweep", cfg.Scheduler.FineSweepCron,
		"expiry_sweep", cfg.Scheduler.ExpirySweepCron,
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans *service.LoanService, reservations *service.ReservationService, log *slog.Logger) error {
	// Move overdue loans to late and store their fines
	if _, err := c.AddFunc(cfg.Scheduler.FineSweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := loans.RecomputeFines(ctx); err != nil {
			log.Error("fine sweep failed", "err", err)
		}
	}); err != nil {
		return err
	}

	// Expire reservations past their date
	if _, err := c.AddFunc(cfg.Scheduler.ExpirySweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := reservations.ExpireReservations(ctx); err != nil {
			log.Error("expiry sweep failed", "err", err)
		}
	}); err != nil {
		return err
	}

	return nil
}
