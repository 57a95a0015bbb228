package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "melbourne-properties",
	Short: "Melbourne housing market aggregation and enrichment",
	Long:  "Maintains a suburb dataset enriched from quarterly market reports, geocoding, transit lookups and listing-site scrapes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
