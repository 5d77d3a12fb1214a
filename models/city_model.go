package models

import "encoding/json"

// Category is one of the two fixed record classes used to partition cities
// into map layers.
type Category string

const (
	CategoryOrdinary Category = "ordinary"
	CategoryCapital  Category = "capital"
)

// Categories lists every known category in rendering order.
var Categories = []Category{CategoryOrdinary, CategoryCapital}

// CategoryOf maps a raw category tag onto the closed enumeration. Anything
// that is not a capital tag falls into the ordinary layer.
func CategoryOf(tag string) Category {
	switch tag {
	case "capital", "capitalCity":
		return CategoryCapital
	default:
		return CategoryOrdinary
	}
}

// ParseCategory is the strict counterpart of CategoryOf used for
// user-supplied layer names.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case string(CategoryCapital), "capitalCity":
		return CategoryCapital, true
	case string(CategoryOrdinary), "ordinaryCity":
		return CategoryOrdinary, true
	}
	return "", false
}

type CityRecord struct {
	Name       string   `json:"name" bson:"name"`
	Population float64  `json:"population" bson:"population"`
	Image      string   `json:"image" bson:"image"`
	State      string   `json:"state" bson:"state"`
	Longitude  *float64 `json:"longitude" bson:"longitude"`
	Latitude   *float64 `json:"latitude" bson:"latitude"`
	Category   string   `json:"category" bson:"category"`
}

// UnmarshalJSON accepts both the current schema and the original data
// file's keys ("city" for the name, "type" for the category).
func (c *CityRecord) UnmarshalJSON(data []byte) error {
	type plain CityRecord
	var doc struct {
		plain
		City string `json:"city"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*c = CityRecord(doc.plain)
	if c.Name == "" {
		c.Name = doc.City
	}
	if c.Category == "" {
		c.Category = doc.Type
	}
	return nil
}
