package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapgrind/addresser/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "addresser",
	Short: "Resolve municipal address points against OSM building footprints",
	Long:  "Reads address points from a shapefile, fetches OpenStreetMap buildings and streets per map tile, fuzzy-matches street names, and assigns each address to its nearest building footprint.",
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
