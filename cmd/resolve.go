package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapgrind/addresser/internal/addrsource"
	"github.com/mapgrind/addresser/internal/geodata"
	"github.com/mapgrind/addresser/internal/loader"
	"github.com/mapgrind/addresser/internal/pipeline"
	"github.com/mapgrind/addresser/internal/report"
	"github.com/mapgrind/addresser/internal/resilience"
	"github.com/mapgrind/addresser/internal/tile"
	"github.com/mapgrind/addresser/pkg/overpass"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <shapefile> <city> <state>",
	Short: "Resolve address points in a shapefile",
	Long:  "Resolves every address point in the shapefile against OSM data, printing one line per record: the nearest building id and the canonical address.",
	Args:  cobra.ExactArgs(3),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().Bool("neighborhood", true, "Load the 3x3 tile block around each address")
	resolveCmd.Flags().String("report", "", "Write a YAML run report to this path")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shpPath, city, state := args[0], args[1], args[2]

	neighborhood := cfg.Resolve.Neighborhood
	if cmd.Flags().Changed("neighborhood") {
		neighborhood, _ = cmd.Flags().GetBool("neighborhood")
	}
	reportPath, _ := cmd.Flags().GetString("report")

	reader, err := addrsource.NewReader(
		addrsource.WithEncoding(cfg.Source.Encoding),
		addrsource.WithFields(addrsource.Fields{
			Latitude:  cfg.Source.Latitude,
			Longitude: cfg.Source.Longitude,
			Number:    cfg.Source.Number,
			Street:    cfg.Source.Street,
			Qualifier: cfg.Source.Qualifier,
			Zip:       cfg.Source.Zip,
		}),
	)
	if err != nil {
		return err
	}

	addrs, err := reader.Read(shpPath)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return eris.Errorf("no address records in %s", shpPath)
	}

	index := tile.NewIndex(cfg.Resolve.Zoom)
	store := geodata.NewStore()
	svc := overpass.NewClient(cfg.Overpass.Endpoint,
		overpass.WithRateLimit(cfg.Overpass.RateLimitQPS),
		overpass.WithTimeout(cfg.Overpass.Timeout()),
	)
	ld := loader.New(index, store, svc, resilience.RetryConfig{
		MaxAttempts: cfg.Overpass.RetryAttempts,
	})

	p := pipeline.New(index, store, ld, pipeline.Config{
		City:         city,
		State:        state,
		Neighborhood: neighborhood,
		MatchCutoff:  cfg.Resolve.MatchCutoff,
		MaxMatches:   cfg.Resolve.MaxCandidates,
	})

	var outcomes []pipeline.Outcome
	summary, err := p.Run(ctx, addrs, func(out pipeline.Outcome) {
		if reportPath != "" {
			outcomes = append(outcomes, out)
		}
		if out.Err != nil {
			return
		}
		buildingID := "-"
		if out.Building != nil {
			buildingID = fmt.Sprintf("%d", out.Building.ID)
		}
		cmd.Printf("%s\t%s\n", buildingID, out.Resolved.Format())
	})
	if err != nil {
		return err
	}

	cmd.Printf("resolved %d/%d addresses (%d tiles loaded)\n",
		summary.Resolved, summary.Total, summary.TilesLoaded)
	for kind, count := range summary.Failures {
		cmd.Printf("  %s: %d\n", kind, count)
	}

	if reportPath != "" {
		if err := report.Write(reportPath, report.Build(summary, outcomes)); err != nil {
			return err
		}
		zap.L().Info("run report written", zap.String("path", reportPath))
	}

	return nil
}
