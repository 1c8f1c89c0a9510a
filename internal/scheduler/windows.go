package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/valdraft/transferdesk/internal/config"
	transfersvc "github.com/valdraft/transferdesk/internal/service"
)

const windowJobTimeout = 2 * time.Minute

// RegisterWindowJobs registers one job per league with an open_cron set.
// The job tries to open the window for the league's current gameweek; the
// attempt is idempotent, an already-active window or an unscheduled
// gameweek just logs and moves on. Turn advancement is never scheduled,
// turns move only when a manager acts.
func RegisterWindowJobs(svc *transfersvc.Service, cfg *config.Config) error {
	if svc == nil {
		return fmt.Errorf("window jobs require the transfer service")
	}

	for tag, league := range cfg.Leagues {
		if league.OpenCron == "" {
			continue
		}
		tag, gw := tag, league.CurrentGW
		jobName := "open_window_" + tag
		jobLogger := log.With().
			Str("component", "open_window_job").
			Str("league", tag).
			Str("cron", league.OpenCron).
			Logger()

		_, err := AddJob(jobName, league.OpenCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), windowJobTimeout)
			defer cancel()

			err := svc.OpenWindow(ctx, tag, gw)
			switch {
			case err == nil:
				jobLogger.Info().Int("gw", gw).Msg("Opened transfer window on schedule")
			case errors.Is(err, transfersvc.ErrWindowNotOpened):
				jobLogger.Debug().Int("gw", gw).Msg("No window to open this run")
			default:
				jobLogger.Error().Err(err).Int("gw", gw).Msg("Failed to open transfer window")
			}
		}, gocron.WithSingletonMode(gocron.LimitModeWait))
		if err != nil {
			return fmt.Errorf("add open window job for %s: %w", tag, err)
		}

		jobLogger.Info().Msg("Window opener registered")
	}
	return nil
}
