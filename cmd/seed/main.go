package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/imkonsowa/places-chat/config"
	"github.com/imkonsowa/places-chat/maps"
	"github.com/imkonsowa/places-chat/models"
	"github.com/imkonsowa/places-chat/store"
	"github.com/spf13/cobra"
)

type warmer interface {
	FetchPlaceDetails(ctx context.Context, name string) (*models.Place, error)
	FetchVicinityDetails(ctx context.Context, location models.Location, serviceType string, radius, limit int) ([]models.VicinityResult, error)
}

type nearby struct {
	enabled     bool
	location    models.Location
	serviceType string
	radius      int
	limit       int
}

var rootCmd = &cobra.Command{
	Use:   "seed [place name...]",
	Short: "Pre-populate the place store",
	Long: `Fetches details for every named place and, when --lat and --lng are given,
the places around that point, writing each normalized record to postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		path, _ := flags.GetString("config")

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if cfg.Maps.APIKey == "" {
			return fmt.Errorf("%w: MAPS_API_KEY", config.ErrMissingKey)
		}

		around := nearby{}
		if flags.Changed("lat") && flags.Changed("lng") {
			lat, _ := flags.GetFloat64("lat")
			lng, _ := flags.GetFloat64("lng")
			around.enabled = true
			around.location = models.NewLocation(lat, lng)
			around.serviceType, _ = flags.GetString("type")
			around.radius, _ = flags.GetInt("radius")
			around.limit, _ = flags.GetInt("limit")
		}

		if len(args) == 0 && !around.enabled {
			return fmt.Errorf("nothing to seed: pass place names or --lat and --lng")
		}

		db, err := store.NewPg(cfg.Postgres.ConnStr())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}

		gateway := maps.NewGateway(maps.NewClient(cfg.Maps.APIKey, cfg.Maps.BaseURL), db)

		stored, err := seed(cmd.Context(), gateway, args, around)
		if err != nil {
			return err
		}

		slog.Info("seed complete", "places", stored)
		return nil
	},
}

// seed warms the store and returns how many records were written. A name the provider
// does not know is logged and skipped; provider or store failures stop the run.
func seed(ctx context.Context, w warmer, names []string, around nearby) (int, error) {
	stored := 0

	for _, name := range names {
		place, err := w.FetchPlaceDetails(ctx, name)
		if err != nil {
			return stored, fmt.Errorf("failed to seed %q: %w", name, err)
		}
		if place == nil {
			slog.Warn("place not found", "name", name)
			continue
		}

		stored++
		slog.Info("seeded place", "name", place.Name, "place_id", place.PlaceID)
	}

	if around.enabled {
		results, err := w.FetchVicinityDetails(ctx, around.location, around.serviceType, around.radius, around.limit)
		if err != nil {
			return stored, fmt.Errorf("failed to seed nearby places: %w", err)
		}

		stored += len(results)
		slog.Info("seeded nearby places", "location", around.location.String(), "type", around.serviceType, "count", len(results))
	}

	return stored, nil
}

func init() {
	rootCmd.Flags().String("config", config.DefaultConfigFile, "path to the config file")
	rootCmd.Flags().Float64("lat", 0, "latitude of a nearby search")
	rootCmd.Flags().Float64("lng", 0, "longitude of a nearby search")
	rootCmd.Flags().String("type", "", "place type filter for the nearby search")
	rootCmd.Flags().Int("radius", maps.DefaultRadius, "nearby search radius in meters")
	rootCmd.Flags().Int("limit", maps.DefaultLimit, "maximum nearby places to store")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
