package handlers

import "citymap-server/models"

// LayerStyle is the circle layer definition the browser map renders a
// category with.
type LayerStyle struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Type   string         `json:"type"`
	Paint  map[string]any `json:"paint"`
}

var layerStyles = map[models.Category]LayerStyle{
	models.CategoryCapital: {
		ID:     "capitalCityLayer",
		Source: "capitalCityData",
		Type:   "circle",
		Paint:  map[string]any{"circle-radius": 10, "circle-color": "blue"},
	},
	models.CategoryOrdinary: {
		ID:     "ordinaryCityLayer",
		Source: "ordinaryCityData",
		Type:   "circle",
		Paint:  map[string]any{"circle-radius": 10, "circle-color": "red"},
	},
}

func styleFor(c models.Category) LayerStyle {
	if s, ok := layerStyles[c]; ok {
		return s
	}
	return LayerStyle{ID: string(c) + "Layer", Source: string(c) + "Data", Type: "circle"}
}

// interactiveLayerIDs lists the layers the map should report hover
// candidates for.
func interactiveLayerIDs() []string {
	ids := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		ids = append(ids, styleFor(c).ID)
	}
	return ids
}
