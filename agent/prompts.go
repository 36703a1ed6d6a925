package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imkonsowa/places-chat/models"
	"github.com/tmc/langchaingo/prompts"
)

var classifierPrompt = prompts.NewPromptTemplate(`Analyze the user query and classify it into one of the following categories based on the user's intent:
- 'place_details': Return details about a specific place.
- 'recommendation': Provide suggestions tailored to the user's interests, including requests for places with specific features or attributes, regardless of their proximity.
- 'local_services': Return information about services in vicinity.
- 'general': Handle any other types of inquiries.
Determine the appropriate category and provide relevant details in JSON format as follows:
- For 'place_details': { "query_type": "place_details", "details": { "place_name": "<name of the place>" } }
- For 'local_services': { "query_type": "local_services", "details": { "service_type": "<type of service (one of restaurant, park, parking, or hospital)>", "place_name": "{{.current}}" if referring to the user's current location, otherwise the specific place name. } }
- For 'recommendation': { "query_type": "recommendation", "details": { "interest": "details about user's interest", "place_name": "{{.current}}" if referring to the user's current location, otherwise "<specific location name>" } }
- For 'general': { "query_type": "general", "details": { } }
Respond with the JSON object only.
Based on the user input: '{{.query}}'`, []string{"query", "current"})

var placeDetailsPrompt = prompts.NewPromptTemplate(
	"You are an AI designed to provide detailed information about places. "+
		"User asks: '{{.query}}'. "+
		"Additionally, here's the context of this conversation: '{{.context}}'. "+
		"Additionally, here's the extra information: {{.details}}. "+
		"Please provide detailed information about {{.place_name}} based on the provided information.",
	[]string{"query", "context", "details", "place_name"},
)

var recommendationPrompt = prompts.NewPromptTemplate(
	"You are an AI designed to offer recommendations. "+
		"User is interested in {{.interest}} near {{.place_name}}. "+
		"Based on user preferences, here are some recommendations: {{.recommendations}}. "+
		"Additionally, here's the context of this conversation: '{{.context}}'. "+
		"Please provide recommendations to the users based on the provided context. (Don't list the formatted address)",
	[]string{"interest", "place_name", "recommendations", "context"},
)

var localServicesPrompt = prompts.NewPromptTemplate(
	"You are an AI specialized in providing information about local services. "+
		"User asks: '{{.query}}'. "+
		"Additionally, here's the context of this conversation: '{{.context}}'. "+
		"Additionally, here's the extra information: {{.details}}. "+
		"Please provide information about top (not all) nearby {{.service_type}} services based on the provided context. (Don't list the formatted address)",
	[]string{"query", "context", "details", "service_type"},
)

var generalPrompt = prompts.NewPromptTemplate(
	"You are an AI equipped to handle a wide range of queries. "+
		"User asks: '{{.query}}'. "+
		"Additionally, here's the context of this conversation: '{{.context}}'. "+
		"Give a good and proper response based on the provided context.",
	[]string{"query", "context"},
)

func ClassificationPrompt(query string) (string, error) {
	return classifierPrompt.Format(map[string]any{
		"query":   query,
		"current": models.CurrentLocation,
	})
}

// PlaceDetailsPrompt inlines the place as JSON; a nil place renders as null.
func PlaceDetailsPrompt(query, conversation, placeName string, place *models.Place) (string, error) {
	details, err := json.Marshal(place)
	if err != nil {
		return "", fmt.Errorf("failed to encode place details: %w", err)
	}

	return placeDetailsPrompt.Format(map[string]any{
		"query":      query,
		"context":    conversation,
		"details":    string(details),
		"place_name": placeName,
	})
}

func RecommendationPrompt(interest, placeName, conversation string, recommendations []string) (string, error) {
	return recommendationPrompt.Format(map[string]any{
		"interest":        interest,
		"place_name":      placeName,
		"recommendations": strings.Join(recommendations, ", "),
		"context":         conversation,
	})
}

func LocalServicesPrompt(query, conversation, serviceType string, nearby []models.VicinityResult) (string, error) {
	details, err := json.Marshal(nearby)
	if err != nil {
		return "", fmt.Errorf("failed to encode nearby places: %w", err)
	}

	return localServicesPrompt.Format(map[string]any{
		"query":        query,
		"context":      conversation,
		"details":      string(details),
		"service_type": serviceType,
	})
}

func GeneralPrompt(query, conversation string) (string, error) {
	return generalPrompt.Format(map[string]any{
		"query":   query,
		"context": conversation,
	})
}
