package services

import (
	"context"
	"sync/atomic"
	"time"

	"citymap-server/models"
	"citymap-server/utils/logger"
	"citymap-server/utils/metrics"
)

// Snapshot is one complete classification of the record set.
type Snapshot struct {
	Layers   Layers
	Count    int
	LoadedAt time.Time
}

// LayerService owns the current classification. Readers always see a whole
// snapshot; a reload replaces it in one step.
type LayerService struct {
	repo     CityRepository
	snapshot atomic.Pointer[Snapshot]
}

func NewLayerService(ctx context.Context, repo CityRepository) (*LayerService, error) {
	s := &LayerService{repo: repo}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the repository and publishes a new snapshot. On failure the
// previous snapshot stays in place.
func (s *LayerService) Reload(ctx context.Context) (*Snapshot, error) {
	cities, err := s.repo.LoadCities(ctx)
	if err != nil {
		metrics.LayerReloadsTotal.WithLabelValues("error").Inc()
		logger.L().Error("layer_reload_error", "err", err)
		return nil, err
	}

	layers := Classify(cities)
	snap := &Snapshot{Layers: layers, Count: layers.Count(), LoadedAt: time.Now().UTC()}
	s.snapshot.Store(snap)

	metrics.LayerReloadsTotal.WithLabelValues("ok").Inc()
	for c, fc := range layers {
		metrics.LayerFeatures.WithLabelValues(string(c)).Set(float64(fc.Len()))
	}
	logger.L().Info("layer_reload_ok", "features", snap.Count)
	return snap, nil
}

func (s *LayerService) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Collection returns the current collection for c, or nil for an unknown
// category.
func (s *LayerService) Collection(c models.Category) *FeatureCollection {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.Layers[c]
}
