package maps

import (
	"github.com/imkonsowa/places-chat/models"
	"github.com/tidwall/gjson"
)

// Normalize converts a provider place payload into a Place. Both detail lookups and nearby
// search results go through here; absent fields take their defaults instead of failing.
func Normalize(raw gjson.Result, placeID string) *models.Place {
	place := &models.Place{
		PlaceID:                      placeID,
		Name:                         raw.Get("name").String(),
		Address:                      raw.Get("formatted_address").String(),
		PhoneNumber:                  raw.Get("formatted_phone_number").String(),
		Status:                       raw.Get("business_status").String(),
		Rating:                       floatOr(raw.Get("rating"), -1),
		PriceLevel:                   raw.Get("price_level").String(),
		Reviews:                      []models.Review{},
		Location:                     models.NewLocation(raw.Get("geometry.location.lat").Float(), raw.Get("geometry.location.lng").Float()),
		GeometryType:                 raw.Get("geometry.location_type").String(),
		Types:                        stringsOf(raw.Get("types")),
		OpeningHours:                 stringsOf(raw.Get("opening_hours.weekday_text")),
		Vicinity:                     raw.Get("vicinity").String(),
		WheelchairAccessibleEntrance: raw.Get("wheelchair_accessible_entrance").Bool(),
		UserRatingsTotal:             raw.Get("user_ratings_total").Int(),
		Reservable:                   raw.Get("reservable").Bool(),
		Delivery:                     raw.Get("delivery").Bool(),
		DineIn:                       raw.Get("dine_in").Bool(),
		Takeout:                      raw.Get("takeout").Bool(),
		ServesBreakfast:              raw.Get("serves_breakfast").Bool(),
		ServesLunch:                  raw.Get("serves_lunch").Bool(),
		ServesDinner:                 raw.Get("serves_dinner").Bool(),
		ServesVegetarianFood:         raw.Get("serves_vegetarian_food").Bool(),
		ServeAlcohol:                 raw.Get("serves_beer").Bool() || raw.Get("serves_wine").Bool(),
		Summary:                      raw.Get("editorial_summary.overview").String(),
	}

	for _, review := range raw.Get("reviews").Array() {
		place.Reviews = append(place.Reviews, models.Review{
			AuthorName: review.Get("author_name").String(),
			Rating:     review.Get("rating").Float(),
			Time:       review.Get("time").Int(),
			Text:       review.Get("text").String(),
		})
	}

	return place
}

// vicinityResult projects a nearby-search payload. The address comes from "vicinity",
// which is all nearby search returns.
func vicinityResult(raw gjson.Result) models.VicinityResult {
	return models.VicinityResult{
		Name:                         raw.Get("name").String(),
		Address:                      raw.Get("vicinity").String(),
		Rating:                       floatOr(raw.Get("rating"), -1),
		PlaceID:                      raw.Get("place_id").String(),
		OpenNow:                      raw.Get("opening_hours.open_now").Bool(),
		Status:                       raw.Get("business_status").String(),
		WheelchairAccessibleEntrance: raw.Get("wheelchair_accessible_entrance").Bool(),
	}
}

func floatOr(r gjson.Result, def float64) float64 {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}

	return r.Float()
}

func stringsOf(r gjson.Result) []string {
	values := []string{}
	for _, v := range r.Array() {
		values = append(values, v.String())
	}

	return values
}
