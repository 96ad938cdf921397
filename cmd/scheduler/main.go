package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andescredit/loan-engine/internal/config"
	"github.com/andescredit/loan-engine/internal/repository"
	"github.com/andescredit/loan-engine/pkg/utils"
)

// The scheduler owns the only writer of the OVERDUE installment status: a
// daily sweep that reclassifies past-due pending installments and rolls loan
// statuses up. Read-time status resolution stays a pure view.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	loc := cfg.Location()

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		asOf := utils.StartOfDay(time.Now().In(loc), loc)
		installments, loans, err := loanRepo.MarkOverdue(ctx, asOf)
		if err != nil {
			log.Error().Err(err).Msg("overdue sweep failed")
			return
		}
		log.Info().
			Time("as_of", asOf).
			Int64("installments_marked", installments).
			Int64("loans_marked", loans).
			Msg("overdue sweep completed")
	}

	// Catch up immediately on start, then follow the cron spec.
	sweep()

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Scheduler.OverdueSweepSpec, sweep); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.OverdueSweepSpec).Msg("invalid sweep schedule")
	}

	c.Start()
	log.Info().Str("spec", cfg.Scheduler.OverdueSweepSpec).Str("timezone", cfg.Business.Timezone).Msg("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
}
