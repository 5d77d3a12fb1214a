package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"citymap-server/middleware"
	"citymap-server/models"
	"citymap-server/services"
	"citymap-server/utils/config"
	"citymap-server/utils/errors"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"
)

type LayerHandler struct {
	layerService   *services.LayerService
	sessionService *services.SessionService
	mapStyle       string
	mapboxToken    string
	initialView    config.MapView
}

type MapConfigResponse struct {
	InitialView         config.MapView `json:"initial_view"`
	MapStyle            string         `json:"map_style"`
	MapboxToken         string         `json:"mapbox_token,omitempty"`
	InteractiveLayerIDs []string       `json:"interactive_layer_ids"`
}

type LayerResponse struct {
	Category models.Category            `json:"category"`
	Style    LayerStyle                 `json:"style"`
	Layout   map[string]string          `json:"layout"`
	Visible  bool                       `json:"visible"`
	Count    int                        `json:"count"`
	Data     *geojson.FeatureCollection `json:"data"`
}

type LayersResponse struct {
	Layers   []LayerResponse `json:"layers"`
	Count    int             `json:"count"`
	LoadedAt time.Time       `json:"loaded_at"`
}

func NewLayerHandler(layerService *services.LayerService, sessionService *services.SessionService, cfg config.Config) *LayerHandler {
	return &LayerHandler{
		layerService:   layerService,
		sessionService: sessionService,
		mapStyle:       cfg.MapStyle,
		mapboxToken:    cfg.MapboxToken,
		initialView:    cfg.InitialView,
	}
}

func (h *LayerHandler) GetMapConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MapConfigResponse{
		InitialView:         h.initialView,
		MapStyle:            h.mapStyle,
		MapboxToken:         h.mapboxToken,
		InteractiveLayerIDs: interactiveLayerIDs(),
	})
}

// GetLayers returns every category's collection with its style and
// visibility flag. Hidden layers are still returned; the map is expected to
// suppress them.
func (h *LayerHandler) GetLayers(w http.ResponseWriter, r *http.Request) {
	snap := h.layerService.Snapshot()
	if snap == nil {
		middleware.WriteError(w, errors.ErrLayersNotLoaded)
		return
	}

	visibility := services.NewVisibility()
	if sessionID, ok := middleware.SessionIDFromContext(r.Context()); ok {
		session, err := h.sessionService.Get(r.Context(), sessionID)
		if err != nil {
			middleware.WriteError(w, sessionError(err))
			return
		}
		visibility = session.Visibility
	}

	response := LayersResponse{
		Layers:   make([]LayerResponse, 0, len(models.Categories)),
		Count:    snap.Count,
		LoadedAt: snap.LoadedAt,
	}
	for _, c := range models.Categories {
		fc := snap.Layers[c]
		visible := visibility.IsVisible(c)
		response.Layers = append(response.Layers, LayerResponse{
			Category: c,
			Style:    styleFor(c),
			Layout:   map[string]string{"visibility": layoutVisibility(visible)},
			Visible:  visible,
			Count:    fc.Len(),
			Data:     fc.GeoJSON(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// GetLayer returns one category's GeoJSON FeatureCollection.
func (h *LayerHandler) GetLayer(w http.ResponseWriter, r *http.Request) {
	category, ok := models.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		middleware.WriteError(w, errors.ErrUnknownCategory)
		return
	}
	fc := h.layerService.Collection(category)
	if fc == nil {
		middleware.WriteError(w, errors.ErrLayersNotLoaded)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(fc.GeoJSON())
}

func (h *LayerHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.layerService.Snapshot()
	if snap == nil {
		middleware.WriteError(w, errors.ErrLayersNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "features": snap.Count, "loaded_at": snap.LoadedAt})
}

func layoutVisibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "none"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
