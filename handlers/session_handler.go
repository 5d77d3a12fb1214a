package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"citymap-server/middleware"
	"citymap-server/models"
	"citymap-server/services"
	"citymap-server/utils/errors"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"
)

// maxEventBytes caps a hover body and a single WebSocket event.
const maxEventBytes = 1 << 20

type SessionHandler struct {
	sessionService *services.SessionService
}

type SessionResponse struct {
	SessionID  string                   `json:"session_id"`
	Visibility map[models.Category]bool `json:"visibility"`
	Active     geojson.Properties       `json:"active"`
	Detail     *Detail                  `json:"detail,omitempty"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// HoverRequest carries the features the map reports under the pointer, in
// the map's hit-test order.
type HoverRequest struct {
	Features []json.RawMessage `json:"features"`
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func newSessionResponse(s *services.Session) SessionResponse {
	active := s.ActiveProjection()
	return SessionResponse{
		SessionID:  s.ID,
		Visibility: s.Visibility.Flags(),
		Active:     active,
		Detail:     BuildDetail(active),
		UpdatedAt:  s.UpdatedAt,
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if err := h.sessionService.Delete(r.Context(), sessionID); err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) ToggleLayer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	category, ok := models.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		middleware.WriteError(w, errors.ErrUnknownCategory)
		return
	}

	session, err := h.sessionService.Toggle(r.Context(), sessionID, category)
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *SessionHandler) Hover(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)
	var input HoverRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			middleware.WriteError(w, errors.ErrPayloadTooLarge)
			return
		}
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	session, err := h.sessionService.Hover(r.Context(), sessionID, services.DecodeCandidates(input.Features))
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// DismissActive models the user closing the popup.
func (h *SessionHandler) DismissActive(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	session, err := h.sessionService.Dismiss(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// GetDetail returns the popup payload, or 204 when nothing is active.
func (h *SessionHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}
	detail := BuildDetail(session.ActiveProjection())
	if detail == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func sessionError(err error) *errors.APIError {
	if stderrors.Is(err, services.ErrSessionNotFound) {
		return errors.ErrSessionNotFound
	}
	return errors.Wrap(err, "SESSION_STORE_ERROR", "Failed to access session", http.StatusInternalServerError)
}
