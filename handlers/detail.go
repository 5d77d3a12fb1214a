package handlers

import (
	"fmt"
	"net/url"

	"citymap-server/models"

	"github.com/paulmach/orb/geojson"
)

// Detail is the popup payload for the active feature.
type Detail struct {
	Name         string          `json:"name"`
	State        string          `json:"state"`
	Population   float64         `json:"population"`
	Category     models.Category `json:"category"`
	Image        string          `json:"image"`
	Longitude    *float64        `json:"longitude"`
	Latitude     *float64        `json:"latitude"`
	WikipediaURL string          `json:"wikipedia_url"`
}

// BuildDetail shapes an active projection for the popup. A nil projection
// has no detail.
func BuildDetail(active geojson.Properties) *Detail {
	if active == nil {
		return nil
	}
	d := &Detail{
		Name:       active.MustString("name", ""),
		State:      active.MustString("state", ""),
		Population: active.MustFloat64("population", 0),
		Category:   models.CategoryOf(active.MustString("category", "")),
		Image:      active.MustString("image", ""),
		Longitude:  optionalFloat(active, "longitude"),
		Latitude:   optionalFloat(active, "latitude"),
	}
	d.WikipediaURL = wikipediaSearchURL(d.Name, d.State)
	return d
}

func wikipediaSearchURL(name, state string) string {
	return "http://en.wikipedia.org/w/index.php?title=Special:Search&search=" + url.QueryEscape(fmt.Sprintf("%s, %s", name, state))
}

func optionalFloat(p geojson.Properties, key string) *float64 {
	switch v := p[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
