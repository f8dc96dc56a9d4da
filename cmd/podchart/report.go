package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/franz/podchart/internal/store"
	"github.com/franz/podchart/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report [view]",
	Short: "Show chart analytics from the database views",
	Long: `Display one of the built-in analytics views as a table.

Available views:
  vw_current_details   latest chart entries joined with podcast metadata
  vw_rank_changes      today's ranks vs. each entry's previous appearance
  vw_time_on_list      distinct days each podcast has charted per platform
  vw_platform_overlap  podcasts on more than one platform's latest chart
  vw_new_entries       titles on the latest chart but not the one before

With no argument, prints a short status summary instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int("limit", 0, "maximum rows to print (0 = all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		return printStatus(db, dbPath)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	return printView(db, args[0], limit)
}

func printStatus(db *store.Store, dbPath string) error {
	total, err := db.ObservationCount()
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	podcasts, err := db.ListPodcasts()
	if err != nil {
		return fmt.Errorf("failed to read podcasts: %w", err)
	}

	util.InfoLog("=== Database Status ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("Chart observations: %d", total)
	util.InfoLog("Resolved podcasts: %d", len(podcasts))

	for _, platform := range []string{"Apple", "Spotify"} {
		date, err := db.LatestChartDate(platform)
		if err != nil {
			return fmt.Errorf("failed to read latest %s date: %w", platform, err)
		}
		if date == "" {
			date = "never"
		}
		util.InfoLog("Latest %s chart: %s", platform, date)
	}

	util.InfoLog("")
	util.InfoLog("Views: %s", strings.Join(store.ViewNames, ", "))
	return nil
}

func printView(db *store.Store, name string, limit int) error {
	columns, rows, err := db.DumpView(name)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		util.WarnLog("View %s is empty. Scrape charts and run 'podchart refresh' first.", name)
		return nil
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
