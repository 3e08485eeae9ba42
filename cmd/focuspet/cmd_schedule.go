package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/friendsincode/focuspet/internal/db"
	"github.com/friendsincode/focuspet/internal/events"
	"github.com/friendsincode/focuspet/internal/history"
	"github.com/friendsincode/focuspet/internal/mailbox"
	"github.com/friendsincode/focuspet/internal/scheduler"
	"github.com/friendsincode/focuspet/internal/scheduler/state"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pomodoro scheduler daemon",
	Long:  "Poll the timetable for the active slot, run work/break cycles against it, prompt for completion, and persist progress after every phase",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Str("timetable", cfg.TimetablePath).Msg("FocusPet scheduler starting")

	bus := events.NewBus()
	svc := scheduler.New(
		cfg.TimetablePath,
		cfg.WorkMinutes,
		cfg.BreakMinutes,
		mailbox.NewWriter(cfg.MessagePath),
		scheduler.NewStdinPrompter(),
		bus,
		state.NewStore(),
		logger,
	)
	svc.SetIntervals(cfg.PollInterval, cfg.Cooldown, cfg.ErrorBackoff)

	// Durable history is best effort; the scheduler works without it.
	if cfg.HistoryDSN != "" {
		database, err := db.Connect(cfg.HistoryDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("history database unavailable, continuing without history")
		} else {
			defer func() { _ = db.Close(database) }()
			historySvc, err := history.New(database, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("history migration failed, continuing without history")
			} else {
				svc.SetPhaseSink(historySvc)
				svc.SetSlotSink(historySvc)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info().Msg("FocusPet scheduler stopped")
	return nil
}
