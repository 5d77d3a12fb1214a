package services

import (
	"citymap-server/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointFeature is a single city rendered as a GeoJSON point. The geometry is
// derived from the record's coordinates on demand, so the two can never
// disagree.
type PointFeature struct {
	ID     int
	Record models.CityRecord
}

// Category returns the layer the feature was classified into.
func (f PointFeature) Category() models.Category {
	return models.Category(f.Record.Category)
}

// Point returns the feature's coordinates as [longitude, latitude]. ok is
// false when the source record had no coordinates.
func (f PointFeature) Point() (orb.Point, bool) {
	if f.Record.Longitude == nil || f.Record.Latitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*f.Record.Longitude, *f.Record.Latitude}, true
}

// Properties builds a fresh properties map for the feature.
func (f PointFeature) Properties() geojson.Properties {
	props := geojson.Properties{
		"name":       f.Record.Name,
		"population": f.Record.Population,
		"image":      f.Record.Image,
		"state":      f.Record.State,
		"longitude":  nil,
		"latitude":   nil,
		"category":   f.Record.Category,
	}
	if f.Record.Longitude != nil {
		props["longitude"] = *f.Record.Longitude
	}
	if f.Record.Latitude != nil {
		props["latitude"] = *f.Record.Latitude
	}
	return props
}

// GeoJSON renders the feature. Records without coordinates get a null
// geometry.
func (f PointFeature) GeoJSON() *geojson.Feature {
	var geom orb.Geometry
	if p, ok := f.Point(); ok {
		geom = p
	}
	feature := geojson.NewFeature(geom)
	feature.ID = f.ID
	feature.Properties = f.Properties()
	return feature
}

type FeatureCollection struct {
	Category models.Category
	Features []PointFeature
}

func (fc *FeatureCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// GeoJSON renders the collection in feature order.
func (fc *FeatureCollection) GeoJSON() *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		out.Append(f.GeoJSON())
	}
	return out
}

// Layers maps every known category to its feature collection.
type Layers map[models.Category]*FeatureCollection

// Count returns the number of features across all layers.
func (l Layers) Count() int {
	n := 0
	for _, fc := range l {
		n += fc.Len()
	}
	return n
}

// Classify partitions records into per-category collections. Feature ids are
// the records' positions in the input and features keep input order. Every
// known category gets a collection, possibly empty.
func Classify(records []models.CityRecord) Layers {
	layers := make(Layers, len(models.Categories))
	for _, c := range models.Categories {
		layers[c] = &FeatureCollection{Category: c, Features: []PointFeature{}}
	}

	for i, rec := range records {
		category := models.CategoryOf(rec.Category)
		layers[category].Features = append(layers[category].Features, PointFeature{
			ID:     i,
			Record: copyRecord(rec, category),
		})
	}
	return layers
}

// copyRecord detaches the coordinate pointers from the caller's record.
func copyRecord(rec models.CityRecord, category models.Category) models.CityRecord {
	out := rec
	out.Category = string(category)
	if rec.Longitude != nil {
		lon := *rec.Longitude
		out.Longitude = &lon
	}
	if rec.Latitude != nil {
		lat := *rec.Latitude
		out.Latitude = &lat
	}
	return out
}
