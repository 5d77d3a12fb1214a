package services_test

import (
	"encoding/json"
	"testing"

	"citymap-server/models"
	"citymap-server/services"

	"github.com/paulmach/orb/geojson"
)

func renderedFeatures(t *testing.T) (lincoln, omaha *geojson.Feature) {
	t.Helper()
	layers := services.Classify(nebraska())
	return layers[models.CategoryCapital].Features[0].GeoJSON(), layers[models.CategoryOrdinary].Features[0].GeoJSON()
}

// TestResolveHover_FirstCandidateWins verifies the tie-break takes the first
// candidate and ignores the rest.
func TestResolveHover_FirstCandidateWins(t *testing.T) {
	lincoln, omaha := renderedFeatures(t)

	got := services.ResolveHover([]*geojson.Feature{omaha, lincoln})
	if got["name"] != "Omaha" || got["population"] != float64(478192) || got["state"] != "NE" {
		t.Fatalf("unexpected projection: %v", got)
	}

	again := services.ResolveHover([]*geojson.Feature{omaha, lincoln})
	if again["name"] != got["name"] {
		t.Error("resolution is not deterministic")
	}
}

// TestResolveHover_Empty verifies an empty or missing candidate list yields
// no projection.
func TestResolveHover_Empty(t *testing.T) {
	if got := services.ResolveHover(nil); got != nil {
		t.Errorf("expected nil for nil candidates, got %v", got)
	}
	if got := services.ResolveHover([]*geojson.Feature{}); got != nil {
		t.Errorf("expected nil for empty candidates, got %v", got)
	}
}

// TestResolveHover_SkipsMalformed verifies a candidate without properties
// does not blank out a later valid one.
func TestResolveHover_SkipsMalformed(t *testing.T) {
	_, omaha := renderedFeatures(t)
	broken := &geojson.Feature{Type: "Feature"}

	got := services.ResolveHover([]*geojson.Feature{nil, broken, omaha})
	if got["name"] != "Omaha" {
		t.Fatalf("expected Omaha after skipping malformed candidates, got %v", got)
	}
	if got := services.ResolveHover([]*geojson.Feature{nil, broken}); got != nil {
		t.Errorf("expected nil when every candidate is malformed, got %v", got)
	}
}

// TestResolveHover_CopyIsolation verifies the projection is a copy in both
// directions.
func TestResolveHover_CopyIsolation(t *testing.T) {
	_, omaha := renderedFeatures(t)
	candidates := []*geojson.Feature{omaha}

	first := services.ResolveHover(candidates)
	first["name"] = "mutated"
	if second := services.ResolveHover(candidates); second["name"] != "Omaha" {
		t.Errorf("mutating a projection leaked into the next resolution: %v", second)
	}

	projection := services.ResolveHover(candidates)
	omaha.Properties["name"] = "renamed"
	if projection["name"] != "Omaha" {
		t.Errorf("mutating the source feature changed an emitted projection: %v", projection)
	}
}

// TestDecodeCandidates verifies each candidate is decoded on its own.
func TestDecodeCandidates(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"type":"Feature","properties":"oops"}`),
		json.RawMessage(`not json`),
		json.RawMessage(`{"type":"Feature","geometry":{"type":"Point","coordinates":[-95.9,41.3]}}`),
		json.RawMessage(`{"id":1,"type":"Feature","properties":{"name":"Omaha"},"geometry":{"type":"Point","coordinates":[-95.9,41.3]}}`),
	}
	candidates := services.DecodeCandidates(raw)
	if len(candidates) != len(raw) {
		t.Fatalf("expected %d candidates, got %d", len(raw), len(candidates))
	}
	if candidates[0] != nil || candidates[1] != nil {
		t.Error("expected undecodable candidates to be nil")
	}
	if candidates[2] == nil || candidates[2].Properties != nil {
		t.Errorf("expected candidate without properties, got %+v", candidates[2])
	}
	if candidates[3] == nil || candidates[3].Geometry == nil {
		t.Fatalf("expected decoded geometry, got %+v", candidates[3])
	}

	got := services.ResolveHover(candidates)
	if got["name"] != "Omaha" {
		t.Errorf("expected Omaha, got %v", got)
	}
}

// TestDecodeCandidates_BadGeometry verifies a bad geometry does not discard
// the candidate's properties.
func TestDecodeCandidates_BadGeometry(t *testing.T) {
	candidates := services.DecodeCandidates([]json.RawMessage{
		json.RawMessage(`{"type":"Feature","properties":{"name":"Lincoln"},"geometry":{"type":"Blob"}}`),
	})
	if got := services.ResolveHover(candidates); got["name"] != "Lincoln" {
		t.Errorf("expected Lincoln, got %v", got)
	}
}
