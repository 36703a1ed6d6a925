package agent

import (
	"testing"

	"github.com/imkonsowa/places-chat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{
			name: "place details",
			raw:  `{"query_type":"place_details","details":{"place_name":"Central Park"}}`,
			want: PlaceDetailsIntent{PlaceName: "Central Park"},
		},
		{
			name: "recommendation at current location",
			raw:  `{"query_type":"recommendation","details":{"interest":"vegan food","place_name":"CURRENT_LOCATION"}}`,
			want: RecommendationIntent{Interest: "vegan food", PlaceName: models.CurrentLocation},
		},
		{
			name: "recommendation without place",
			raw:  `{"query_type":"recommendation","details":{"interest":"jazz bars"}}`,
			want: RecommendationIntent{Interest: "jazz bars"},
		},
		{
			name: "local services",
			raw:  `{"query_type":"local_services","details":{"service_type":"hospital","place_name":"Brooklyn"}}`,
			want: LocalServicesIntent{ServiceType: "hospital", PlaceName: "Brooklyn"},
		},
		{
			name: "local services without details",
			raw:  `{"query_type":"local_services","details":{}}`,
			want: LocalServicesIntent{},
		},
		{
			name: "general",
			raw:  `{"query_type":"general","details":{}}`,
			want: GeneralIntent{Label: "general"},
		},
		{
			name: "unknown label",
			raw:  `{"query_type":"weather","details":{}}`,
			want: GeneralIntent{Label: "weather"},
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  {\"query_type\":\"general\"}\n",
			want: GeneralIntent{Label: "general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntent(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntentMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":                 "Sure! This is a place_details query.",
		"missing query type":       `{"details":{"place_name":"Central Park"}}`,
		"details without place":    `{"query_type":"place_details","details":{}}`,
		"recommendation no intent": `{"query_type":"recommendation","details":{"place_name":"Paris"}}`,
		"empty":                    "",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseIntent(raw)
			assert.ErrorIs(t, err, ErrMalformedClassification)
		})
	}
}

func TestIntentTypes(t *testing.T) {
	assert.Equal(t, QueryTypePlaceDetails, PlaceDetailsIntent{}.Type())
	assert.Equal(t, QueryTypeRecommendation, RecommendationIntent{}.Type())
	assert.Equal(t, QueryTypeLocalServices, LocalServicesIntent{}.Type())
	assert.Equal(t, QueryTypeGeneral, GeneralIntent{Label: "weather"}.Type())
}

func TestChatRequestValidate(t *testing.T) {
	valid := ChatRequest{Query: "hi", Lat: 40.7, Lng: -73.9}
	assert.NoError(t, valid.Validate())

	blank := ChatRequest{Query: "   "}
	assert.Error(t, blank.Validate())

	badLat := ChatRequest{Query: "hi", Lat: 91}
	assert.Error(t, badLat.Validate())

	badLng := ChatRequest{Query: "hi", Lng: -181}
	assert.Error(t, badLng.Validate())
}
