package models

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

func TestDocumentTextEmpty(t *testing.T) {
	assert.Equal(t, "", (&Place{}).DocumentText())
}

func TestDocumentTextSummaryOnly(t *testing.T) {
	p := &Place{Summary: "Iconic urban park."}
	assert.Equal(t, "Iconic urban park.", p.DocumentText())
}

func TestDocumentTextSkipsUnsetRating(t *testing.T) {
	p := &Place{Summary: "Quiet cafe.", Rating: -1, PriceLevel: "0"}
	assert.Equal(t, "Quiet cafe.", p.DocumentText())
}

func TestDocumentTextAllFlags(t *testing.T) {
	p := &Place{
		Summary:                      "Neighborhood bistro.",
		Reviews:                      []Review{{Text: "Great food."}, {Text: "Lovely staff."}},
		WheelchairAccessibleEntrance: true,
		PriceLevel:                   "2",
		Rating:                       4,
		Reservable:                   true,
		Delivery:                     true,
		DineIn:                       true,
		Takeout:                      true,
		ServesBreakfast:              true,
		ServesLunch:                  true,
		ServesDinner:                 true,
		ServesVegetarianFood:         true,
		ServeAlcohol:                 true,
	}

	sentences := []string{
		"This place is wheelchair accessible.",
		"Price level: 2",
		"Rating: 4.0 stars",
		"Reservations are available.",
		"Delivery services are available.",
		"Dine-in is available.",
		"Takeout is available.",
		"Breakfast is served.",
		"Lunch is served.",
		"Dinner is served.",
		"Vegetarian options are available.",
		"Alcoholic beverages are served.",
	}

	want := "Neighborhood bistro. Great food. Lovely staff. " + strings.Join(sentences, " ")
	text := p.DocumentText()
	assert.Equal(t, want, text)

	for _, s := range sentences {
		assert.Equal(t, 1, strings.Count(text, s), s)
	}
}

func TestFormatRating(t *testing.T) {
	assert.Equal(t, "4.0", formatRating(4))
	assert.Equal(t, "4.5", formatRating(4.5))
	assert.Equal(t, "3.75", formatRating(3.75))
}

func TestLocationScan(t *testing.T) {
	point := geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{-73.9654, 40.7829}).SetSRID(4326)
	data, err := ewkb.Marshal(point, binary.LittleEndian)
	require.NoError(t, err)

	var fromBytes Location
	require.NoError(t, fromBytes.Scan(data))
	assert.InDelta(t, 40.7829, fromBytes.Lat, 1e-9)
	assert.InDelta(t, -73.9654, fromBytes.Lng, 1e-9)

	var fromHex Location
	require.NoError(t, fromHex.Scan(hex.EncodeToString(data)))
	assert.Equal(t, fromBytes, fromHex)

	var bad Location
	assert.Error(t, bad.Scan(42))
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "40.782900,-73.965400", NewLocation(40.7829, -73.9654).String())
}
