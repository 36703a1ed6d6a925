package models

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CurrentLocation is the place name the classifier emits when the user refers to where they are.
const CurrentLocation = "CURRENT_LOCATION"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewLocation(lat, lng float64) Location {
	return Location{
		Lat: lat,
		Lng: lng,
	}
}

// String renders the location the way the maps web services expect it: "lat,lng".
func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

func (l *Location) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case string:
		var err error
		data, err = hex.DecodeString(v)
		if err != nil {
			return err
		}
	case []byte:
		data = v
	default:
		return fmt.Errorf("expected string or []byte, got %T", value)
	}

	t, err := ewkb.Unmarshal(data)
	if err != nil {
		return err
	}

	if point, ok := t.(*geom.Point); ok {
		l.Lng = point.X()
		l.Lat = point.Y()

		return nil
	}

	return fmt.Errorf("expected Point, got %T", t)
}

func (l Location) GormDataType() string {
	return "geometry"
}

func (l Location) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "ST_PointFromText(?, 4326)",
		Vars: []interface{}{fmt.Sprintf("POINT(%f %f)", l.Lng, l.Lat)},
	}
}

type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Time       int64   `json:"time"`
	Text       string  `json:"text"`
}

// Place is the normalized record kept for every place the maps provider returns.
type Place struct {
	PlaceID                      string         `gorm:"primaryKey" json:"place_id"`
	Name                         string         `json:"name"`
	Address                      string         `json:"address"`
	PhoneNumber                  string         `json:"phone_number"`
	Status                       string         `json:"status"`
	Rating                       float64        `json:"rating"`
	Reviews                      []Review       `gorm:"serializer:json" json:"reviews"`
	Location                     Location       `json:"location"`
	GeometryType                 string         `json:"geometry_type"`
	Types                        pq.StringArray `gorm:"type:text[]" json:"types"`
	PriceLevel                   string         `json:"price_level"`
	OpeningHours                 pq.StringArray `gorm:"type:text[]" json:"opening_hours"`
	Vicinity                     string         `json:"vicinity"`
	WheelchairAccessibleEntrance bool           `json:"wheelchair_accessible_entrance"`
	UserRatingsTotal             int64          `json:"user_ratings_total"`
	Reservable                   bool           `json:"reservable"`
	Delivery                     bool           `json:"delivery"`
	DineIn                       bool           `json:"dine_in"`
	Takeout                      bool           `json:"takeout"`
	ServesBreakfast              bool           `json:"serves_breakfast"`
	ServesLunch                  bool           `json:"serves_lunch"`
	ServesDinner                 bool           `json:"serves_dinner"`
	ServesVegetarianFood         bool           `json:"serves_vegetarian_food"`
	ServeAlcohol                 bool           `json:"serve_alcohol"`
	Summary                      string         `json:"summary"`
	UpdatedAt                    time.Time      `json:"-"`
}

func (p *Place) TableName() string {
	return "places"
}

// VicinityResult is the trimmed view of a place returned from a nearby search.
type VicinityResult struct {
	Name                         string  `json:"name"`
	Address                      string  `json:"address"`
	Rating                       float64 `json:"rating"`
	PlaceID                      string  `json:"place_id"`
	OpenNow                      bool    `json:"open_now"`
	Status                       string  `json:"status"`
	WheelchairAccessibleEntrance bool    `json:"wheelchair_accessible_entrance"`
}

type QueryLog struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Query     string    `json:"query"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *QueryLog) TableName() string {
	return "query_logs"
}

func (q *QueryLog) Stringify() string {
	return strings.TrimSpace(q.Query)
}
