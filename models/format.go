package models

import (
	"strconv"
	"strings"
)

// DocumentText flattens a place into the description that gets embedded for similarity search.
func (p *Place) DocumentText() string {
	descriptions := []string{p.Summary}
	for _, review := range p.Reviews {
		descriptions = append(descriptions, review.Text)
	}

	var attributes []string
	if p.WheelchairAccessibleEntrance {
		attributes = append(attributes, "This place is wheelchair accessible.")
	}
	if p.PriceLevel != "" && p.PriceLevel != "0" {
		attributes = append(attributes, "Price level: "+p.PriceLevel)
	}
	if p.Rating > 0 {
		attributes = append(attributes, "Rating: "+formatRating(p.Rating)+" stars")
	}
	if p.Reservable {
		attributes = append(attributes, "Reservations are available.")
	}
	if p.Delivery {
		attributes = append(attributes, "Delivery services are available.")
	}
	if p.DineIn {
		attributes = append(attributes, "Dine-in is available.")
	}
	if p.Takeout {
		attributes = append(attributes, "Takeout is available.")
	}
	if p.ServesBreakfast {
		attributes = append(attributes, "Breakfast is served.")
	}
	if p.ServesLunch {
		attributes = append(attributes, "Lunch is served.")
	}
	if p.ServesDinner {
		attributes = append(attributes, "Dinner is served.")
	}
	if p.ServesVegetarianFood {
		attributes = append(attributes, "Vegetarian options are available.")
	}
	if p.ServeAlcohol {
		attributes = append(attributes, "Alcoholic beverages are served.")
	}

	return strings.TrimSpace(strings.Join(append(descriptions, attributes...), " "))
}

// formatRating keeps one decimal on whole-star ratings ("4.0"), otherwise the shortest form.
func formatRating(rating float64) string {
	s := strconv.FormatFloat(rating, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
