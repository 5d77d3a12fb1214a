package services

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"
)

// ResolveHover picks the first usable candidate in the order the map reports
// them and returns a shallow copy of its properties. A nil result means no
// feature is active. Candidates without properties are skipped.
func ResolveHover(candidates []*geojson.Feature) geojson.Properties {
	for _, c := range candidates {
		if c == nil || c.Properties == nil {
			continue
		}
		return c.Properties.Clone()
	}
	return nil
}

type candidateDoc struct {
	ID         interface{}        `json:"id,omitempty"`
	Type       string             `json:"type"`
	Properties geojson.Properties `json:"properties"`
	Geometry   json.RawMessage    `json:"geometry"`
}

// DecodeCandidates decodes hover candidates one by one. An entry that cannot
// be decoded becomes nil so the rest of the list can still resolve.
func DecodeCandidates(raw []json.RawMessage) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(raw))
	for _, r := range raw {
		out = append(out, decodeCandidate(r))
	}
	return out
}

func decodeCandidate(r json.RawMessage) *geojson.Feature {
	var doc candidateDoc
	if err := json.Unmarshal(r, &doc); err != nil {
		return nil
	}
	f := &geojson.Feature{
		ID:         doc.ID,
		Type:       "Feature",
		Properties: doc.Properties,
	}
	// geometry is informational for hover; a bad one does not disqualify
	if len(doc.Geometry) > 0 {
		if g, err := geojson.UnmarshalGeometry(doc.Geometry); err == nil && g != nil {
			f.Geometry = g.Geometry()
		}
	}
	return f
}
