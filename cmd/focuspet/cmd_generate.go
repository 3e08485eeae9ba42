package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/focuspet/internal/timetable"
)

var (
	generateYear  int
	generateMonth int
	generateForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a month of timetable rows",
	Long:  "Write one timetable row per daily slot per day of the given month, with tracking columns at their defaults",
	RunE:  runGenerate,
}

func init() {
	now := time.Now()
	generateCmd.Flags().IntVar(&generateYear, "year", now.Year(), "calendar year")
	generateCmd.Flags().IntVar(&generateMonth, "month", int(now.Month()), "calendar month (1-12)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "overwrite an existing timetable")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if generateMonth < 1 || generateMonth > 12 {
		return fmt.Errorf("month must be 1-12, got %d", generateMonth)
	}
	if !generateForce {
		if _, err := os.Stat(cfg.TimetablePath); err == nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", cfg.TimetablePath)
		}
	}

	tt, err := timetable.BuildMonth(generateYear, time.Month(generateMonth), timetable.DefaultTemplates)
	if err != nil {
		return fmt.Errorf("build timetable: %w", err)
	}
	if err := timetable.Save(tt, cfg.TimetablePath); err != nil {
		return fmt.Errorf("write timetable: %w", err)
	}

	logger.Info().
		Str("path", cfg.TimetablePath).
		Int("rows", len(tt.Slots)).
		Msgf("timetable created for %d-%02d", generateYear, generateMonth)
	return nil
}
