package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paymap-jp/paymap-cli/internal/aggregate"
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search stores by free text",
	Long:  "Runs a text search against the places directory biased toward a point, then the same payment-method reconciliation as nearby search.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		asJSON, _ := cmd.Flags().GetBool("json")

		// Text search always hits the live directory.
		if err := validateQueryConfig(true); err != nil {
			return err
		}

		directory, tags := newClients(cfg)
		agg := newAggregator(cfg, directory, tags)

		text := strings.Join(args, " ")
		result, err := agg.Search(cmd.Context(), text, aggregate.Query{Lat: lat, Lng: lng})
		if err != nil {
			return err
		}

		if result.Err != "" {
			fmt.Fprintln(os.Stderr, result.Err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Stores)
		}

		formatStores(os.Stdout, result.Stores)
		return nil
	},
}

func init() {
	queryCmd.Flags().Float64("lat", 33.8834, "latitude for location bias")
	queryCmd.Flags().Float64("lng", 130.8751, "longitude for location bias")
	queryCmd.Flags().Bool("json", false, "print full store records as JSON")
	rootCmd.AddCommand(queryCmd)
}
