package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Dumps the merged configuration (defaults, config file, environment) as YAML. The directory API key is redacted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dump := *cfg
		if dump.Places.Key != "" {
			dump.Places.Key = "[redacted]"
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(&dump); err != nil {
			return eris.Wrap(err, "config: encode yaml")
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
