// Package run implements the CLI actions: aggregation runs and run-history
// queries.
package run

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mdekker/subject-tally/models"
	"github.com/mdekker/subject-tally/pkg/aggregate"
	"github.com/mdekker/subject-tally/pkg/caching"
	"github.com/mdekker/subject-tally/pkg/db"
	"github.com/mdekker/subject-tally/pkg/format"
	"github.com/mdekker/subject-tally/pkg/pipeline"
	"github.com/mdekker/subject-tally/pkg/sink"
	"github.com/mdekker/subject-tally/pkg/source"
	"github.com/urfave/cli/v2"
)

// downloadTTL keeps fetched daily exports around for a day; the upstream
// file for a given date never changes after publication.
const downloadTTL = 24 * time.Hour

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// resolveConfig merges the optional YAML config file with CLI flags; flags
// win. Defaults are filled last.
func resolveConfig(c *cli.Context) (*models.RunConfig, error) {
	cfg := &models.RunConfig{}
	if c.IsSet("config") {
		loaded, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("date") {
		cfg.Date = c.String("date")
	}
	if c.IsSet("input") {
		cfg.Input = c.String("input")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("sample-bound") {
		cfg.SampleBound = c.Int("sample-bound")
	}
	if c.IsSet("strategy") {
		cfg.Strategy = c.String("strategy")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("arena-cap") {
		cfg.ArenaCap = c.Int("arena-cap")
	}
	cfg.ResolveDefaults()
	return cfg, nil
}

// stage pairs a strategy with its report layout and output subdirectory.
type stage struct {
	strategy aggregate.Strategy
	lines    format.Lines
	suffix   string
}

func stagesFor(cfg *models.RunConfig) ([]stage, error) {
	perkey := stage{
		strategy: &aggregate.PerKeyCounter{Workers: cfg.Workers},
		lines:    format.PerKeyLines,
		suffix:   "good",
	}
	grouped := stage{
		strategy: &aggregate.GroupedAggregator{Workers: cfg.Workers, ArenaCap: cfg.ArenaCap},
		lines:    format.GroupedLines,
		suffix:   "bad",
	}
	switch cfg.Strategy {
	case "perkey":
		return []stage{perkey}, nil
	case "grouped":
		return []stage{grouped}, nil
	case "both":
		return []stage{perkey, grouped}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want perkey, grouped, or both)", cfg.Strategy)
	}
}

// AggregateAction runs the sampling + aggregation pipeline for the chosen
// strategy (or both, to compare their aggregation times over one sample).
func AggregateAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	logger.Info("resolved run options",
		"input", cfg.Input, "output", cfg.Output,
		"strategy", cfg.Strategy, "sample_bound", cfg.SampleBound)

	stages, err := stagesFor(cfg)
	if err != nil {
		return err
	}

	database, err := db.Open()
	if err != nil {
		return fmt.Errorf("failed to open run history database: %w", err)
	}
	defer database.Close()

	cache, err := caching.NewCache(filepath.Join(os.TempDir(), "subject-tally-cache"), downloadTTL)
	if err != nil {
		logger.Warn("download cache unavailable, fetching without cache", "error", err)
		cache = nil
	}

	// One sample feeds every stage so a "both" run compares strategies on
	// identical input.
	src := source.New(cfg.Input, cache)
	sampled, read, err := pipeline.Collect(c.Context, src, cfg.SampleBound, time.Now().UnixNano())
	if err != nil {
		return err
	}
	logger.Info("sample collected", "records_read", read, "sampled", len(sampled))

	durations := make(map[string]time.Duration)
	for _, st := range stages {
		reportSink := sink.NewFileSink(filepath.Join(cfg.Output, st.suffix), "part-00000")
		stats, err := pipeline.Execute(c.Context, sampled, st.strategy, st.lines, reportSink)
		if err != nil {
			return err
		}
		stats.RecordsRead = read
		durations[stats.Strategy] = stats.Duration

		logger.Info("aggregation complete",
			"strategy", stats.Strategy,
			"valid_records", stats.ValidRecords,
			"distinct_keys", stats.DistinctKeys,
			"duration_ms", stats.Duration.Milliseconds(),
			"report", reportSink.Path())

		if _, err := database.InsertRun(db.Run{
			Strategy:     stats.Strategy,
			Input:        cfg.Input,
			OutputPath:   reportSink.Path(),
			SampleBound:  cfg.SampleBound,
			RecordsRead:  stats.RecordsRead,
			Sampled:      stats.Sampled,
			ValidRecords: stats.ValidRecords,
			DistinctKeys: stats.DistinctKeys,
			DurationMS:   stats.Duration.Milliseconds(),
		}); err != nil {
			logger.Warn("failed to record run history", "error", err)
		}
	}

	if cfg.Strategy == "both" {
		logger.Info("strategy comparison",
			"perkey_ms", durations["perkey"].Milliseconds(),
			"grouped_ms", durations["grouped"].Milliseconds(),
			"grouped_slower_by_ms", (durations["grouped"] - durations["perkey"]).Milliseconds())
	}
	return nil
}

// RunsAction lists recent runs from the history database.
func RunsAction(c *cli.Context) error {
	database, err := db.Open()
	if err != nil {
		return fmt.Errorf("failed to open run history database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-8s %-10s %-8s %-8s %s\n",
		"ID", "STARTED", "STRATEGY", "KEYS", "VALID", "MS", "INPUT")
	for _, r := range runs {
		fmt.Printf("%-5d %-20s %-8s %-10d %-8d %-8d %s\n",
			r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Strategy, r.DistinctKeys, r.ValidRecords, r.DurationMS, r.Input)
	}
	return nil
}

// ShowRunAction prints one run's full details.
func ShowRunAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: show <run-id>")
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", c.Args().First(), err)
	}

	database, err := db.Open()
	if err != nil {
		return fmt.Errorf("failed to open run history database: %w", err)
	}
	defer database.Close()

	r, err := database.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d\n", r.RunID)
	fmt.Printf("  Started:       %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Printf("  Strategy:      %s\n", r.Strategy)
	fmt.Printf("  Input:         %s\n", r.Input)
	fmt.Printf("  Report:        %s\n", r.OutputPath)
	fmt.Printf("  Sample bound:  %d\n", r.SampleBound)
	fmt.Printf("  Records read:  %d\n", r.RecordsRead)
	fmt.Printf("  Sampled:       %d\n", r.Sampled)
	fmt.Printf("  Valid records: %d\n", r.ValidRecords)
	fmt.Printf("  Distinct keys: %d\n", r.DistinctKeys)
	fmt.Printf("  Duration:      %dms\n", r.DurationMS)
	return nil
}
