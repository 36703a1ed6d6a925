package maps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imkonsowa/places-chat/models"
)

const (
	DefaultRadius = 10000 // meters
	DefaultLimit  = 20
)

type Store interface {
	SaveOrUpdatePlace(ctx context.Context, place *models.Place) error
}

// Gateway resolves names and coordinates through the maps provider and writes every
// normalized place through to the store.
type Gateway struct {
	provider Provider
	store    Store
}

func NewGateway(provider Provider, store Store) *Gateway {
	return &Gateway{
		provider: provider,
		store:    store,
	}
}

// Geocode returns the coordinates of the first geocoding match, or nil when there is none.
func (g *Gateway) Geocode(ctx context.Context, name string) (*models.Location, error) {
	results, err := g.provider.Geocode(ctx, name)
	if err != nil {
		return nil, err
	}

	first := results.Get("0")
	if !first.Exists() {
		return nil, nil
	}

	loc := models.NewLocation(first.Get("geometry.location.lat").Float(), first.Get("geometry.location.lng").Float())

	return &loc, nil
}

// FetchPlaceDetails looks up the top geocoding match for name, normalizes and stores its
// details. A nil place means the provider had no match.
func (g *Gateway) FetchPlaceDetails(ctx context.Context, name string) (*models.Place, error) {
	results, err := g.provider.Geocode(ctx, name)
	if err != nil {
		return nil, err
	}

	placeID := results.Get("0.place_id").String()
	if placeID == "" {
		return nil, nil
	}

	details, err := g.provider.PlaceDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !details.IsObject() {
		return nil, nil
	}

	place := Normalize(details, placeID)
	if err := g.store.SaveOrUpdatePlace(ctx, place); err != nil {
		return nil, err
	}

	return place, nil
}

// FetchVicinityDetails searches places of serviceType around location. Every result up to
// limit is normalized and stored; the trimmed projections are returned.
func (g *Gateway) FetchVicinityDetails(
	ctx context.Context,
	location models.Location,
	serviceType string,
	radius int,
	limit int,
) ([]models.VicinityResult, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	slog.Info("fetching vicinity", "location", location.String(), "service_type", serviceType, "radius", radius)

	results, err := g.provider.NearbySearch(ctx, location, radius, serviceType)
	if err != nil {
		return nil, err
	}

	places := make([]models.VicinityResult, 0, limit)
	for _, raw := range results.Array() {
		place := Normalize(raw, raw.Get("place_id").String())
		if err := g.store.SaveOrUpdatePlace(ctx, place); err != nil {
			return nil, fmt.Errorf("failed to store nearby place: %w", err)
		}

		places = append(places, vicinityResult(raw))
		if len(places) >= limit {
			break
		}
	}

	return places, nil
}
