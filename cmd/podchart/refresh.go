package main

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/podchart/internal/podcastindex"
	"github.com/franz/podchart/internal/refresh"
	"github.com/franz/podchart/internal/report"
	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild podcast metadata from the chart ledger",
	Long: `Rebuild the podcast metadata snapshot from the accumulated chart titles.

This command:
1. Clears the podcast snapshot and its category links
2. Reads every distinct title ever seen on a chart
3. Resolves each title against the Podcast Index directory
4. Fetches full details, categories and recent-episode stats per match
5. Stores each resolved podcast atomically

Unresolved titles (no confident directory match) are reported and skipped;
their chart history is kept. Requires Podcast Index API credentials via
config file or PODCHART_API_KEY / PODCHART_API_SECRET.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	// Refresh-specific flags
	refreshCmd.Flags().Duration("pause", podcastindex.DefaultPause, "minimum delay between directory API calls")
	refreshCmd.Flags().Bool("cache", false, "reuse previously resolved titles instead of searching again")
	refreshCmd.Flags().String("log-dir", "artifacts", "directory for JSONL event logs")

	viper.BindPFlag("pause", refreshCmd.Flags().Lookup("pause"))
	viper.BindPFlag("cache", refreshCmd.Flags().Lookup("cache"))
	viper.BindPFlag("log_dir", refreshCmd.Flags().Lookup("log-dir"))
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")

	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	total, err := db.ObservationCount()
	if err != nil {
		return fmt.Errorf("failed to read chart ledger: %w", err)
	}
	if total == 0 {
		util.WarnLog("Chart ledger is empty. Run 'podchart scrape apple' or 'podchart scrape spotify' first.")
		return nil
	}

	client, err := podcastindex.New(podcastindex.Config{
		APIKey:    viper.GetString("api_key"),
		APISecret: viper.GetString("api_secret"),
		Pause:     viper.GetDuration("pause"),
	})
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	// Event logger, level matching console verbosity
	logLevel := report.LevelInfo
	if quiet {
		logLevel = report.LevelWarning
	} else if verbose {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(viper.GetString("log_dir"), logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = nil
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}

	var cache *podcastindex.Cache
	if viper.GetBool("cache") {
		cache = podcastindex.NewCache(db.DB())
		if err := cache.EnsureSchema(); err != nil {
			return fmt.Errorf("failed to prepare resolution cache: %w", err)
		}
		util.InfoLog("Resolution cache enabled")
	}

	util.InfoLog("=== Metadata Refresh ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("Chart observations: %d", total)

	coordinator := refresh.New(&refresh.Config{
		Store:     db,
		Directory: client,
		Logger:    logger,
		Cache:     cache,
	})

	rep, err := coordinator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	// Summary
	util.InfoLog("")
	util.SuccessLog("=== Refresh Summary ===")
	util.InfoLog("Total time: %v", rep.Elapsed.Round(time.Millisecond))
	util.InfoLog("Chart titles: %d", rep.Titles)
	util.InfoLog("  Resolved: %d", rep.Resolved)
	if rep.Unresolved > 0 {
		util.WarnLog("  Unresolved: %d", rep.Unresolved)
	}

	if len(rep.Failures) > 0 {
		util.InfoLog("")
		util.WarnLog("Failures encountered:")
		for i, f := range rep.Failures {
			if i >= 10 {
				util.WarnLog("... and %d more failures", len(rep.Failures)-10)
				break
			}
			util.WarnLog("  - %s (%s): %s", f.Title, f.Stage, f.Err)
		}
	}

	return nil
}
