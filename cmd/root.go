package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "citymap",
	Short: "Serves classified city layers and per-session map state",
	Long: `citymap classifies a static set of city records into ordinary and
capital GeoJSON layers and serves them to a browser map, together with
per-session layer visibility and hover selection.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
