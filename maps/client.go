package maps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/imkonsowa/places-chat/models"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Provider is the subset of the maps web services the gateway relies on.
// Each call returns the raw provider payload; an empty result means no match.
type Provider interface {
	Geocode(ctx context.Context, address string) (gjson.Result, error)
	PlaceDetails(ctx context.Context, placeID string) (gjson.Result, error)
	NearbySearch(ctx context.Context, location models.Location, radius int, placeType string) (gjson.Result, error)
}

// UpstreamError is returned when the provider answers with a non-2xx code or a failure status
// such as OVER_QUERY_LIMIT or REQUEST_DENIED.
type UpstreamError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("maps %s failed: http %d", e.Op, e.StatusCode)
	if e.Status != "" {
		msg += ", status " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

type Client struct {
	HTTP    *http.Client
	APIKey  string
	BaseURL string
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Geocode(ctx context.Context, address string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("address", address)

	return c.get(ctx, "geocode", "/geocode/json", q, "results")
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("place_id", placeID)

	return c.get(ctx, "place details", "/place/details/json", q, "result")
}

func (c *Client) NearbySearch(ctx context.Context, location models.Location, radius int, placeType string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("location", location.String())
	q.Set("radius", strconv.Itoa(radius))
	if placeType != "" {
		q.Set("type", placeType)
	}

	return c.get(ctx, "nearby search", "/place/nearbysearch/json", q, "results")
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, field string) (gjson.Result, error) {
	q.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("maps %s request: %w", op, err)
	}

	slog.Debug("maps request", "op", op, "path", path)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("maps %s http error: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("maps %s read body: %w", op, err)
	}

	payload := gjson.ParseBytes(body)
	status := payload.Get("status").String()

	if resp.StatusCode/100 != 2 {
		return gjson.Result{}, &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     status,
			Message:    payload.Get("error_message").String(),
		}
	}

	switch status {
	case "OK":
		return payload.Get(field), nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return gjson.Result{}, nil
	default:
		return gjson.Result{}, &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     status,
			Message:    payload.Get("error_message").String(),
		}
	}
}
