package services_test

import (
	"reflect"
	"testing"

	"citymap-server/models"
	"citymap-server/services"

	"github.com/paulmach/orb"
)

func f64(v float64) *float64 { return &v }

func nebraska() []models.CityRecord {
	return []models.CityRecord{
		{Name: "Lincoln", Category: "capital", Longitude: f64(-96.7), Latitude: f64(40.8), Population: 258379, State: "NE", Image: "img1"},
		{Name: "Omaha", Category: "ordinary", Longitude: f64(-95.9), Latitude: f64(41.3), Population: 478192, State: "NE", Image: "img2"},
	}
}

// TestClassify_Scenario verifies the Lincoln/Omaha example: the capital goes
// to the capital layer with id 0 and the other city to the ordinary layer
// with id 1.
func TestClassify_Scenario(t *testing.T) {
	layers := services.Classify(nebraska())

	capital := layers[models.CategoryCapital]
	if capital.Len() != 1 || capital.Features[0].ID != 0 || capital.Features[0].Record.Name != "Lincoln" {
		t.Fatalf("unexpected capital layer: %+v", capital)
	}
	ordinary := layers[models.CategoryOrdinary]
	if ordinary.Len() != 1 || ordinary.Features[0].ID != 1 || ordinary.Features[0].Record.Name != "Omaha" {
		t.Fatalf("unexpected ordinary layer: %+v", ordinary)
	}

	props := ordinary.Features[0].Properties()
	if props["population"] != float64(478192) || props["state"] != "NE" || props["category"] != "ordinary" {
		t.Errorf("unexpected properties: %v", props)
	}
}

// TestClassify_Partition verifies every record lands in exactly one layer and
// that each layer only holds its own category, in input order.
func TestClassify_Partition(t *testing.T) {
	records := []models.CityRecord{
		{Name: "a", Category: "capital"},
		{Name: "b", Category: "ordinary"},
		{Name: "c", Category: "capitalCity"},
		{Name: "d", Category: ""},
		{Name: "e", Category: "town"},
		{Name: "f", Category: "capital"},
	}
	layers := services.Classify(records)

	seen := make(map[int]models.Category)
	for c, fc := range layers {
		if fc.Category != c {
			t.Errorf("collection keyed %s reports category %s", c, fc.Category)
		}
		last := -1
		for _, f := range fc.Features {
			if f.Category() != c {
				t.Errorf("feature %d has category %s in layer %s", f.ID, f.Category(), c)
			}
			if prev, dup := seen[f.ID]; dup {
				t.Errorf("feature %d in both %s and %s", f.ID, prev, c)
			}
			if f.ID <= last {
				t.Errorf("layer %s out of input order at id %d", c, f.ID)
			}
			last = f.ID
			seen[f.ID] = c
			if records[f.ID].Name != f.Record.Name {
				t.Errorf("id %d points at %q, want %q", f.ID, f.Record.Name, records[f.ID].Name)
			}
		}
	}
	if len(seen) != len(records) || layers.Count() != len(records) {
		t.Fatalf("expected %d features, got %d (count %d)", len(records), len(seen), layers.Count())
	}
	if got := layers[models.CategoryCapital].Len(); got != 3 {
		t.Errorf("expected 3 capitals, got %d", got)
	}
}

// TestClassify_UnknownCategoryIsOrdinary verifies the catch-all arm.
func TestClassify_UnknownCategoryIsOrdinary(t *testing.T) {
	for _, tag := range []string{"", "ordinaryCity", "Capital", "metropolis"} {
		if got := models.CategoryOf(tag); got != models.CategoryOrdinary {
			t.Errorf("CategoryOf(%q) = %s, want ordinary", tag, got)
		}
	}
	layers := services.Classify([]models.CityRecord{{Name: "x", Category: "metropolis"}})
	if got := layers[models.CategoryOrdinary].Features[0].Properties()["category"]; got != "ordinary" {
		t.Errorf("expected normalized category, got %v", got)
	}
}

// TestClassify_Idempotent verifies two runs over the same input are equal
// field for field.
func TestClassify_Idempotent(t *testing.T) {
	records := nebraska()
	first := services.Classify(records)
	second := services.Classify(records)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("classification differs between runs")
	}
	for _, c := range models.Categories {
		if !reflect.DeepEqual(first[c].GeoJSON(), second[c].GeoJSON()) {
			t.Errorf("GeoJSON for %s differs between runs", c)
		}
	}
}

// TestClassify_EmptyInput verifies both layers exist even with no records.
func TestClassify_EmptyInput(t *testing.T) {
	layers := services.Classify(nil)
	for _, c := range models.Categories {
		fc, ok := layers[c]
		if !ok || fc.Len() != 0 {
			t.Errorf("expected empty %s layer, got %+v", c, fc)
		}
		if n := len(fc.GeoJSON().Features); n != 0 {
			t.Errorf("expected no GeoJSON features for %s, got %d", c, n)
		}
	}
}

// TestClassify_MissingCoordinates verifies records without coordinates are
// kept and rendered with absent coordinates and no geometry.
func TestClassify_MissingCoordinates(t *testing.T) {
	layers := services.Classify([]models.CityRecord{{Name: "Nowhere", Category: "capital"}})

	f := layers[models.CategoryCapital].Features[0]
	if _, ok := f.Point(); ok {
		t.Error("expected no point for a record without coordinates")
	}
	props := f.Properties()
	if props["longitude"] != nil || props["latitude"] != nil {
		t.Errorf("expected nil coordinates, got %v, %v", props["longitude"], props["latitude"])
	}
	if g := f.GeoJSON().Geometry; g != nil {
		t.Errorf("expected nil geometry, got %v", g)
	}
}

// TestPointFeature_GeometryMatchesProperties verifies the coordinates always
// equal [longitude, latitude] from the properties.
func TestPointFeature_GeometryMatchesProperties(t *testing.T) {
	layers := services.Classify(nebraska())
	for _, c := range models.Categories {
		for _, f := range layers[c].GeoJSON().Features {
			p, ok := f.Geometry.(orb.Point)
			if !ok {
				t.Fatalf("expected orb.Point geometry, got %T", f.Geometry)
			}
			if p.Lon() != f.Properties["longitude"] || p.Lat() != f.Properties["latitude"] {
				t.Errorf("geometry %v does not match properties %v", p, f.Properties)
			}
			if f.ID == nil {
				t.Error("expected feature id to be set")
			}
		}
	}
}

// TestClassify_DetachedFromInput verifies mutating the input afterwards does
// not change the classified features.
func TestClassify_DetachedFromInput(t *testing.T) {
	records := nebraska()
	layers := services.Classify(records)

	*records[0].Longitude = 0
	records[0].Name = "changed"

	f := layers[models.CategoryCapital].Features[0]
	if f.Record.Name != "Lincoln" {
		t.Errorf("name leaked from input: %q", f.Record.Name)
	}
	if p, _ := f.Point(); p.Lon() != -96.7 {
		t.Errorf("longitude leaked from input: %v", p.Lon())
	}
}

// TestParseCategory verifies the strict parser used for layer names.
func TestParseCategory(t *testing.T) {
	cases := map[string]models.Category{
		"capital":      models.CategoryCapital,
		"capitalCity":  models.CategoryCapital,
		"ordinary":     models.CategoryOrdinary,
		"ordinaryCity": models.CategoryOrdinary,
	}
	for in, want := range cases {
		got, ok := models.ParseCategory(in)
		if !ok || got != want {
			t.Errorf("ParseCategory(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := models.ParseCategory("village"); ok {
		t.Error("expected unknown category to be rejected")
	}
}
