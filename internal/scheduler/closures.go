package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/db"
)

// RegisterClosureSweepJob schedules the nightly purge of closures whose end
// date fell out of the retention window. Past closures stop affecting
// availability on their own; the sweep just keeps the table from growing.
func RegisterClosureSweepJob(database *db.DB, cronExpr string, retention time.Duration) error {
	if database == nil {
		return fmt.Errorf("closure sweep job requires database")
	}

	jobName := "closure_sweep"
	jobLogger := log.With().
		Str("component", "closure_sweep_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cutoff := booking.FormatDate(time.Now().Add(-retention))
		removed, err := database.Store.DeleteClosuresEndedBefore(ctx, cutoff)
		if err != nil {
			jobLogger.Error().Err(err).Str("cutoff", cutoff).Msg("Closure sweep failed")
			return
		}
		if removed > 0 {
			jobLogger.Info().Int64("removed", removed).Str("cutoff", cutoff).Msg("Swept expired closures")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add closure sweep job: %w", err)
	}
	return nil
}
