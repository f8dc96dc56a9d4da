package main

import (
	"context"
	"fmt"

	"github.com/franz/podchart/internal/scrape"
	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch a top-100 chart and append it to the ledger",
	Long: `Fetch today's top-podcast chart from a platform and append the
rankings to the chart ledger.

The ledger is append-only: a (platform, rank, date) combination is recorded
once, so re-running a scrape on the same day is a no-op. Run this daily per
platform, then 'podchart refresh' to enrich the titles with metadata.`,
}

var scrapeAppleCmd = &cobra.Command{
	Use:   "apple",
	Short: "Fetch the Apple Podcasts top chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd, scrape.PlatformApple)
	},
}

var scrapeSpotifyCmd = &cobra.Command{
	Use:   "spotify",
	Short: "Fetch the Spotify podcast top chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd, scrape.PlatformSpotify)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.AddCommand(scrapeAppleCmd)
	scrapeCmd.AddCommand(scrapeSpotifyCmd)

	scrapeCmd.PersistentFlags().String("region", scrape.DefaultRegion, "two-letter chart region (e.g. us, gb, de)")
	scrapeAppleCmd.Flags().Int("limit", scrape.DefaultLimit, "chart depth to request")
}

func runScrape(cmd *cobra.Command, platform string) error {
	ctx := context.Background()

	dbPath := viper.GetString("db")
	region, _ := cmd.Flags().GetString("region")

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	client := scrape.New(scrape.Config{})

	var (
		observations []store.ChartObservation
		err          error
	)
	switch platform {
	case scrape.PlatformApple:
		limit, _ := cmd.Flags().GetInt("limit")
		observations, err = client.Apple(ctx, region, limit)
	case scrape.PlatformSpotify:
		observations, err = client.Spotify(ctx, region)
	default:
		return fmt.Errorf("unknown platform %q", platform)
	}
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	inserted, err := db.InsertObservations(observations)
	if err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	ignored := len(observations) - inserted
	util.SuccessLog("%s chart saved: %d inserted, %d ignored (duplicates)", platform, inserted, ignored)
	return nil
}
