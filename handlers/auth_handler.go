package handlers

import (
	"net/http"
	"time"

	"citymap-server/middleware"
	"citymap-server/models"
	"citymap-server/services"
	"citymap-server/utils/errors"
	"citymap-server/utils/logger"
)

type AuthHandler struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	layerService   *services.LayerService
}

type CreateSessionResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

type ReloadResponse struct {
	Count    int                     `json:"count"`
	Layers   map[models.Category]int `json:"layers"`
	LoadedAt time.Time               `json:"loaded_at"`
}

func NewAuthHandler(authService *services.AuthService, sessionService *services.SessionService, layerService *services.LayerService) *AuthHandler {
	return &AuthHandler{authService: authService, sessionService: sessionService, layerService: layerService}
}

// CreateSession starts a map session with every layer visible and nothing
// active, and returns the token that addresses it.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.Create(r.Context())
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	token, err := h.authService.IssueToken(session.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateSessionResponse{Token: token, Session: newSessionResponse(session)})
}

// ReloadLayers re-classifies the record set. Requires X-Admin-Key.
func (h *AuthHandler) ReloadLayers(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.CheckAdminKey(r.Header.Get("X-Admin-Key")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	snap, err := h.layerService.Reload(r.Context())
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "RELOAD_ERROR", "Failed to reload layers", http.StatusInternalServerError))
		return
	}

	counts := make(map[models.Category]int, len(snap.Layers))
	for c, fc := range snap.Layers {
		counts[c] = fc.Len()
	}
	logger.L().Info("admin_reload", "features", snap.Count)
	writeJSON(w, http.StatusOK, ReloadResponse{Count: snap.Count, Layers: counts, LoadedAt: snap.LoadedAt})
}
