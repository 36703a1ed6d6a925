package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedClassification = errors.New("malformed query classification")

type QueryType string

const (
	QueryTypePlaceDetails   QueryType = "place_details"
	QueryTypeRecommendation QueryType = "recommendation"
	QueryTypeLocalServices  QueryType = "local_services"
	QueryTypeGeneral        QueryType = "general"
)

// Intent is one of PlaceDetailsIntent, RecommendationIntent, LocalServicesIntent or GeneralIntent.
type Intent interface {
	Type() QueryType
	intent()
}

type PlaceDetailsIntent struct {
	PlaceName string
}

// RecommendationIntent and LocalServicesIntent keep PlaceName as returned by the classifier;
// an empty name or models.CurrentLocation means the caller's coordinates.
type RecommendationIntent struct {
	Interest  string
	PlaceName string
}

type LocalServicesIntent struct {
	ServiceType string
	PlaceName   string
}

// GeneralIntent also covers labels the classifier is not supposed to emit; Label keeps the raw value.
type GeneralIntent struct {
	Label string
}

func (PlaceDetailsIntent) Type() QueryType   { return QueryTypePlaceDetails }
func (RecommendationIntent) Type() QueryType { return QueryTypeRecommendation }
func (LocalServicesIntent) Type() QueryType  { return QueryTypeLocalServices }
func (GeneralIntent) Type() QueryType        { return QueryTypeGeneral }

func (PlaceDetailsIntent) intent()   {}
func (RecommendationIntent) intent() {}
func (LocalServicesIntent) intent()  {}
func (GeneralIntent) intent()        {}

type classification struct {
	QueryType *string `json:"query_type"`
	Details   struct {
		PlaceName   *string `json:"place_name"`
		Interest    *string `json:"interest"`
		ServiceType *string `json:"service_type"`
	} `json:"details"`
}

// ParseIntent decodes the classifier's JSON answer.
func ParseIntent(raw string) (Intent, error) {
	var c classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}
	if c.QueryType == nil {
		return nil, fmt.Errorf("%w: missing query_type", ErrMalformedClassification)
	}

	switch QueryType(*c.QueryType) {
	case QueryTypePlaceDetails:
		if c.Details.PlaceName == nil {
			return nil, fmt.Errorf("%w: place_details without place_name", ErrMalformedClassification)
		}
		return PlaceDetailsIntent{PlaceName: *c.Details.PlaceName}, nil
	case QueryTypeRecommendation:
		if c.Details.Interest == nil {
			return nil, fmt.Errorf("%w: recommendation without interest", ErrMalformedClassification)
		}
		return RecommendationIntent{Interest: *c.Details.Interest, PlaceName: deref(c.Details.PlaceName)}, nil
	case QueryTypeLocalServices:
		return LocalServicesIntent{ServiceType: deref(c.Details.ServiceType), PlaceName: deref(c.Details.PlaceName)}, nil
	default:
		return GeneralIntent{Label: *c.QueryType}, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

type ChatRequest struct {
	Query     string  `json:"query"`
	Context   string  `json:"context"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	SessionID string  `json:"session_id"`
}

func (c *ChatRequest) Validate() error {
	if strings.TrimSpace(c.Query) == "" {
		return fmt.Errorf("query is required")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("lng must be between -180 and 180")
	}

	return nil
}

type ChatResponse struct {
	Response string `json:"response"`
}

type WebSocketsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
