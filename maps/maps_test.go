package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/imkonsowa/places-chat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeProvider struct {
	geocode      string
	details      string
	nearby       string
	err          error
	geocodeCalls []string
	detailCalls  []string
}

func (f *fakeProvider) Geocode(_ context.Context, address string) (gjson.Result, error) {
	f.geocodeCalls = append(f.geocodeCalls, address)
	if f.err != nil {
		return gjson.Result{}, f.err
	}

	return gjson.Parse(f.geocode), nil
}

func (f *fakeProvider) PlaceDetails(_ context.Context, placeID string) (gjson.Result, error) {
	f.detailCalls = append(f.detailCalls, placeID)

	return gjson.Parse(f.details), nil
}

func (f *fakeProvider) NearbySearch(_ context.Context, _ models.Location, _ int, _ string) (gjson.Result, error) {
	if f.err != nil {
		return gjson.Result{}, f.err
	}

	return gjson.Parse(f.nearby), nil
}

type fakeStore struct {
	saved []*models.Place
	err   error
}

func (f *fakeStore) SaveOrUpdatePlace(_ context.Context, place *models.Place) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, place)

	return nil
}

const centralParkGeocode = `[{"place_id":"cp-1","geometry":{"location":{"lat":40.7829,"lng":-73.9654}}}]`

const centralParkDetails = `{
	"name": "Central Park",
	"formatted_address": "New York, NY, USA",
	"formatted_phone_number": "(212) 310-6600",
	"business_status": "OPERATIONAL",
	"rating": 4.8,
	"reviews": [{"author_name": "Ann", "rating": 5, "time": 1700000000, "text": "Beautiful."}],
	"geometry": {"location": {"lat": 40.7829, "lng": -73.9654}, "location_type": "APPROXIMATE"},
	"types": ["park", "tourist_attraction"],
	"price_level": 0,
	"opening_hours": {"weekday_text": ["Monday: 6:00 AM – 1:00 AM"]},
	"vicinity": "New York",
	"wheelchair_accessible_entrance": true,
	"user_ratings_total": 250000,
	"serves_wine": true,
	"editorial_summary": {"overview": "Sprawling park."}
}`

func TestNormalizeDefaults(t *testing.T) {
	place := Normalize(gjson.Parse(`{}`), "id-1")

	assert.Equal(t, "id-1", place.PlaceID)
	assert.Equal(t, -1.0, place.Rating)
	assert.Equal(t, "", place.PriceLevel)
	assert.Equal(t, "", place.Summary)
	assert.Equal(t, int64(0), place.UserRatingsTotal)
	assert.NotNil(t, place.OpeningHours)
	assert.Empty(t, place.OpeningHours)
	assert.NotNil(t, place.Types)
	assert.Empty(t, place.Types)
	assert.NotNil(t, place.Reviews)
	assert.Empty(t, place.Reviews)
	assert.False(t, place.Reservable)
	assert.False(t, place.ServeAlcohol)
	assert.False(t, place.WheelchairAccessibleEntrance)
}

func TestNormalizeFull(t *testing.T) {
	place := Normalize(gjson.Parse(centralParkDetails), "cp-1")

	assert.Equal(t, "Central Park", place.Name)
	assert.Equal(t, "New York, NY, USA", place.Address)
	assert.Equal(t, "(212) 310-6600", place.PhoneNumber)
	assert.Equal(t, "OPERATIONAL", place.Status)
	assert.Equal(t, 4.8, place.Rating)
	assert.Equal(t, models.NewLocation(40.7829, -73.9654), place.Location)
	assert.Equal(t, "APPROXIMATE", place.GeometryType)
	assert.Equal(t, []string{"park", "tourist_attraction"}, []string(place.Types))
	assert.Equal(t, "0", place.PriceLevel)
	assert.Equal(t, []string{"Monday: 6:00 AM – 1:00 AM"}, []string(place.OpeningHours))
	assert.True(t, place.WheelchairAccessibleEntrance)
	assert.Equal(t, int64(250000), place.UserRatingsTotal)
	assert.True(t, place.ServeAlcohol)
	assert.Equal(t, "Sprawling park.", place.Summary)
	require.Len(t, place.Reviews, 1)
	assert.Equal(t, models.Review{AuthorName: "Ann", Rating: 5, Time: 1700000000, Text: "Beautiful."}, place.Reviews[0])
}

func TestNormalizeAlcoholFromBeer(t *testing.T) {
	assert.True(t, Normalize(gjson.Parse(`{"serves_beer":true}`), "x").ServeAlcohol)
	assert.False(t, Normalize(gjson.Parse(`{"serves_beer":false,"serves_wine":false}`), "x").ServeAlcohol)
}

func TestGatewayGeocode(t *testing.T) {
	provider := &fakeProvider{geocode: centralParkGeocode}
	gw := NewGateway(provider, &fakeStore{})

	loc, err := gw.Geocode(context.Background(), "Central Park")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, models.NewLocation(40.7829, -73.9654), *loc)

	provider.geocode = `[]`
	loc, err = gw.Geocode(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestGatewayFetchPlaceDetails(t *testing.T) {
	provider := &fakeProvider{geocode: centralParkGeocode, details: centralParkDetails}
	store := &fakeStore{}
	gw := NewGateway(provider, store)

	place, err := gw.FetchPlaceDetails(context.Background(), "Central Park")
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "cp-1", place.PlaceID)
	assert.Equal(t, []string{"cp-1"}, provider.detailCalls)
	require.Len(t, store.saved, 1)
	assert.Same(t, place, store.saved[0])
}

func TestGatewayFetchPlaceDetailsNotFound(t *testing.T) {
	provider := &fakeProvider{geocode: ``}
	store := &fakeStore{}
	gw := NewGateway(provider, store)

	place, err := gw.FetchPlaceDetails(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, place)
	assert.Empty(t, provider.detailCalls)
	assert.Empty(t, store.saved)
}

func TestGatewayPropagatesUpstreamErrors(t *testing.T) {
	upstream := &UpstreamError{Op: "geocode", StatusCode: 200, Status: "OVER_QUERY_LIMIT"}
	provider := &fakeProvider{err: upstream}
	gw := NewGateway(provider, &fakeStore{})

	_, err := gw.FetchPlaceDetails(context.Background(), "Central Park")
	assert.ErrorIs(t, err, upstream)
	assert.Len(t, provider.geocodeCalls, 1)

	_, err = gw.FetchVicinityDetails(context.Background(), models.NewLocation(1, 2), "park", 0, 0)
	assert.ErrorIs(t, err, upstream)
}

func nearbyResults(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"place_id":"p-%d","name":"Place %d","vicinity":"Street %d","rating":4.%d,"opening_hours":{"open_now":true},"business_status":"OPERATIONAL"}`, i, i, i, i%10)
	}

	return "[" + strings.Join(items, ",") + "]"
}

func TestFetchVicinityDetailsRespectsLimit(t *testing.T) {
	provider := &fakeProvider{nearby: nearbyResults(20)}
	store := &fakeStore{}
	gw := NewGateway(provider, store)

	results, err := gw.FetchVicinityDetails(context.Background(), models.NewLocation(40.7, -73.9), "restaurant", DefaultRadius, 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Len(t, store.saved, 3)
	assert.Equal(t, models.VicinityResult{
		Name:    "Place 0",
		Address: "Street 0",
		Rating:  4.0,
		PlaceID: "p-0",
		OpenNow: true,
		Status:  "OPERATIONAL",
	}, results[0])
	assert.Equal(t, "p-2", store.saved[2].PlaceID)
}

func TestFetchVicinityDetailsDefaultLimit(t *testing.T) {
	provider := &fakeProvider{nearby: nearbyResults(25)}
	gw := NewGateway(provider, &fakeStore{})

	results, err := gw.FetchVicinityDetails(context.Background(), models.NewLocation(0, 0), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultLimit)
}

func TestFetchVicinityDetailsMissingFields(t *testing.T) {
	provider := &fakeProvider{nearby: `[{"place_id":"bare"}]`}
	gw := NewGateway(provider, &fakeStore{})

	results, err := gw.FetchVicinityDetails(context.Background(), models.NewLocation(0, 0), "park", 0, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, -1.0, results[0].Rating)
	assert.False(t, results[0].OpenNow)
}

func TestFetchVicinityDetailsStoreError(t *testing.T) {
	provider := &fakeProvider{nearby: nearbyResults(2)}
	storeErr := errors.New("db down")
	gw := NewGateway(provider, &fakeStore{err: storeErr})

	_, err := gw.FetchVicinityDetails(context.Background(), models.NewLocation(0, 0), "park", 0, 5)
	assert.ErrorIs(t, err, storeErr)
}

func TestClientRequests(t *testing.T) {
	var lastQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			lastQuery[k] = r.URL.Query().Get(k)
		}

		switch r.URL.Path {
		case "/geocode/json":
			fmt.Fprint(w, `{"status":"OK","results":`+centralParkGeocode+`}`)
		case "/place/details/json":
			fmt.Fprint(w, `{"status":"OK","result":`+centralParkDetails+`}`)
		case "/place/nearbysearch/json":
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL+"/")
	ctx := context.Background()

	res, err := c.Geocode(ctx, "Central Park")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", res.Get("0.place_id").String())
	assert.Equal(t, "Central Park", lastQuery["address"])
	assert.Equal(t, "secret", lastQuery["key"])

	res, err = c.PlaceDetails(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "Central Park", res.Get("name").String())
	assert.Equal(t, "cp-1", lastQuery["place_id"])

	res, err = c.NearbySearch(ctx, models.NewLocation(40.5, -73.5), 500, "park")
	require.NoError(t, err)
	assert.False(t, res.Exists())
	assert.Equal(t, "40.500000,-73.500000", lastQuery["location"])
	assert.Equal(t, "500", lastQuery["radius"])
	assert.Equal(t, "park", lastQuery["type"])

	_, err = c.NearbySearch(ctx, models.NewLocation(0, 0), 500, "")
	require.NoError(t, err)
	_, hasType := lastQuery["type"]
	assert.False(t, hasType)
}

func TestClientFailureStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/geocode/json" {
			fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT","error_message":"quota exceeded"}`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"status":"REQUEST_DENIED"}`)
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL)

	_, err := c.Geocode(context.Background(), "x")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "OVER_QUERY_LIMIT", upstream.Status)
	assert.Equal(t, "quota exceeded", upstream.Message)

	_, err = c.PlaceDetails(context.Background(), "x")
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
