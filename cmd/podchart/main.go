package main

import (
	"fmt"
	"os"

	"github.com/franz/podchart/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "podchart",
		Short: "Podcast chart tracker - collect top-100 charts and enrich them with directory metadata",
		Long: `podchart collects daily top-100 podcast charts from Apple and Spotify,
reconciles the chart titles against the Podcast Index directory, and keeps
an enriched SQLite database of podcast metadata with longitudinal analytics
(rank changes, list tenure, cross-platform overlap, new entries).`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/podchart.yaml)")
	rootCmd.PersistentFlags().String("db", "podcasts.db", "chart database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("podchart")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match (PODCHART_API_KEY etc.)
	viper.SetEnvPrefix("PODCHART")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
