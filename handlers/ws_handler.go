package handlers

import (
	"encoding/json"
	"net/http"

	"citymap-server/middleware"
	"citymap-server/models"
	"citymap-server/services"
	"citymap-server/utils/errors"
	"citymap-server/utils/logger"

	"github.com/gorilla/websocket"
)

// Event is one message from the map client. Type is one of "hover",
// "toggle", "clear" or "state".
type Event struct {
	Type     string            `json:"type"`
	Category string            `json:"category,omitempty"`
	Features []json.RawMessage `json:"features,omitempty"`
}

type EventReply struct {
	Type    string           `json:"type"`
	Session *SessionResponse `json:"session,omitempty"`
	Error   *errors.APIError `json:"error,omitempty"`
}

type EventHandler struct {
	sessionService *services.SessionService
	upgrader       websocket.Upgrader
}

func NewEventHandler(sessionService *services.SessionService, allowedOrigins []string) *EventHandler {
	return &EventHandler{
		sessionService: sessionService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Stream processes a session's map events over a WebSocket. Events are
// handled one at a time in arrival order and each gets a reply carrying the
// resulting state.
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if _, err := h.sessionService.Get(r.Context(), sessionID); err != nil {
		middleware.WriteError(w, sessionError(err))
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn("ws_upgrade_error", "err", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxEventBytes)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.L().Debug("ws_read_error", "session", sessionID, "err", err)
			}
			return
		}

		var reply EventReply
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// A malformed event is answered and dropped; the stream stays open.
			reply = EventReply{Type: "error", Error: errors.ErrInvalidInput}
		} else {
			reply = h.apply(r, sessionID, ev)
		}
		if err := ws.WriteJSON(reply); err != nil {
			logger.L().Debug("ws_write_error", "session", sessionID, "err", err)
			return
		}
	}
}

func (h *EventHandler) apply(r *http.Request, sessionID string, ev Event) EventReply {
	ctx := r.Context()
	var (
		session *services.Session
		err     error
	)
	switch ev.Type {
	case "hover":
		session, err = h.sessionService.Hover(ctx, sessionID, services.DecodeCandidates(ev.Features))
	case "toggle":
		category, ok := models.ParseCategory(ev.Category)
		if !ok {
			return EventReply{Type: ev.Type, Error: errors.ErrUnknownCategory}
		}
		session, err = h.sessionService.Toggle(ctx, sessionID, category)
	case "clear":
		session, err = h.sessionService.Dismiss(ctx, sessionID)
	case "state":
		session, err = h.sessionService.Get(ctx, sessionID)
	default:
		return EventReply{Type: ev.Type, Error: errors.ErrInvalidInput}
	}
	if err != nil {
		return EventReply{Type: ev.Type, Error: sessionError(err)}
	}
	resp := newSessionResponse(session)
	return EventReply{Type: ev.Type, Session: &resp}
}
