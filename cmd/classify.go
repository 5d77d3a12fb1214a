package cmd

import (
	"encoding/json"
	"fmt"

	"citymap-server/models"
	"citymap-server/services"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [cities.json]",
	Short: "Print the classified GeoJSON layers for a city file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("category", "", "only print this category (ordinary or capital)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	path := "./data/cities.json"
	if len(args) == 1 {
		path = args[0]
	}
	cities, err := services.FileCityRepository{Path: path}.LoadCities(cmd.Context())
	if err != nil {
		return err
	}
	layers := services.Classify(cities)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if name, _ := cmd.Flags().GetString("category"); name != "" {
		category, ok := models.ParseCategory(name)
		if !ok {
			return fmt.Errorf("unknown category %q", name)
		}
		return enc.Encode(layers[category].GeoJSON())
	}

	out := make(map[models.Category]any, len(layers))
	for c, fc := range layers {
		out[c] = fc.GeoJSON()
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "classified %d cities\n", layers.Count())
	return enc.Encode(out)
}
