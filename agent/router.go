package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imkonsowa/places-chat/maps"
	"github.com/imkonsowa/places-chat/models"
	"github.com/imkonsowa/places-chat/retriever"
)

const DefaultLocalServices = 5

type IntentClassifier interface {
	Classify(ctx context.Context, query string) (Intent, error)
}

type PlaceSource interface {
	Geocode(ctx context.Context, name string) (*models.Location, error)
	FetchPlaceDetails(ctx context.Context, name string) (*models.Place, error)
	FetchVicinityDetails(ctx context.Context, location models.Location, serviceType string, radius, limit int) ([]models.VicinityResult, error)
}

type SimilarPlaces interface {
	RetrieveSimilarPlaces(ctx context.Context, query string, k int) ([]string, error)
}

type RouterOption func(*Router)

// WithVicinity overrides the nearby-search radius (meters) and result cap.
func WithVicinity(radius, limit int) RouterOption {
	return func(r *Router) {
		r.radius = radius
		r.limit = limit
	}
}

// Router classifies a chat query, enriches it with place data and asks the completion endpoint for the reply.
type Router struct {
	classifier IntentClassifier
	completer  Completer
	places     PlaceSource
	similar    SimilarPlaces

	radius          int
	limit           int
	recommendations int
	localServices   int
}

func NewRouter(classifier IntentClassifier, completer Completer, places PlaceSource, similar SimilarPlaces, opts ...RouterOption) *Router {
	r := &Router{
		classifier:      classifier,
		completer:       completer,
		places:          places,
		similar:         similar,
		radius:          maps.DefaultRadius,
		limit:           maps.DefaultLimit,
		recommendations: retriever.DefaultK,
		localServices:   DefaultLocalServices,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Router) Respond(ctx context.Context, query, conversation string, lat, lng float64) (string, error) {
	intent, err := r.classifier.Classify(ctx, query)
	if err != nil {
		return "", err
	}

	caller := models.NewLocation(lat, lng)

	prompt, err := r.compose(ctx, intent, query, conversation, caller)
	if err != nil {
		return "", err
	}

	return r.completer.Complete(ctx, prompt)
}

func (r *Router) compose(ctx context.Context, intent Intent, query, conversation string, caller models.Location) (string, error) {
	switch in := intent.(type) {
	case PlaceDetailsIntent:
		place, err := r.places.FetchPlaceDetails(ctx, in.PlaceName)
		if err != nil {
			return "", fmt.Errorf("failed to fetch place details: %w", err)
		}

		return PlaceDetailsPrompt(query, conversation, in.PlaceName, place)

	case RecommendationIntent:
		loc, err := r.resolveLocation(ctx, in.PlaceName, caller)
		if err != nil {
			return "", err
		}

		// Only the write-through matters here: it puts the area's places into the store
		// that the similarity search reads next.
		if _, err := r.places.FetchVicinityDetails(ctx, loc, "", r.radius, r.limit); err != nil {
			return "", fmt.Errorf("failed to load nearby places: %w", err)
		}

		recommendations, err := r.similar.RetrieveSimilarPlaces(ctx, in.Interest+" near "+in.PlaceName, r.recommendations)
		if err != nil {
			return "", fmt.Errorf("failed to retrieve similar places: %w", err)
		}

		return RecommendationPrompt(in.Interest, in.PlaceName, conversation, recommendations)

	case LocalServicesIntent:
		slog.Info("local services", "place_name", in.PlaceName, "service_type", in.ServiceType)

		loc, err := r.resolveLocation(ctx, in.PlaceName, caller)
		if err != nil {
			return "", err
		}

		nearby, err := r.places.FetchVicinityDetails(ctx, loc, in.ServiceType, r.radius, r.limit)
		if err != nil {
			return "", fmt.Errorf("failed to fetch nearby %s: %w", in.ServiceType, err)
		}
		if len(nearby) > r.localServices {
			nearby = nearby[:r.localServices]
		}

		return LocalServicesPrompt(query, conversation, in.ServiceType, nearby)

	default:
		return GeneralPrompt(query, conversation)
	}
}

// resolveLocation maps a classifier place name to coordinates. The current-location sentinel
// and empty names use the caller's coordinates without a geocoding call, as do names the
// provider cannot geocode.
func (r *Router) resolveLocation(ctx context.Context, placeName string, caller models.Location) (models.Location, error) {
	if placeName == "" || placeName == models.CurrentLocation {
		return caller, nil
	}

	loc, err := r.places.Geocode(ctx, placeName)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to geocode %q: %w", placeName, err)
	}
	if loc == nil {
		slog.Warn("place not geocoded, using caller location", "place_name", placeName)
		return caller, nil
	}

	return *loc, nil
}
