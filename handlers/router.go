package handlers

import (
	"log/slog"
	"net/http"

	"citymap-server/middleware"
	"citymap-server/services"
	"citymap-server/utils/config"
	"citymap-server/utils/errors"
	"citymap-server/utils/metrics"

	"github.com/gorilla/mux"
)

type Dependencies struct {
	Config   config.Config
	Layers   *services.LayerService
	Sessions *services.SessionService
	Auth     *services.AuthService
	Logger   *slog.Logger
}

func NewRouter(deps Dependencies) *mux.Router {
	layerHandler := NewLayerHandler(deps.Layers, deps.Sessions, deps.Config)
	sessionHandler := NewSessionHandler(deps.Sessions)
	authHandler := NewAuthHandler(deps.Auth, deps.Sessions, deps.Layers)
	eventHandler := NewEventHandler(deps.Sessions, deps.Config.AllowedOrigins)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.AccessMiddleware(deps.Logger))
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, errors.ErrNotFound)
	})

	// OPTIONS on any path ends here, ahead of the handlers below.
	r.Methods(http.MethodOptions).HandlerFunc(preflight)

	r.HandleFunc("/healthz", layerHandler.Health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Map surface routes
	r.HandleFunc("/map", layerHandler.GetMapConfig).Methods("GET")
	layerRouter := r.PathPrefix("/layers").Subrouter()
	layerRouter.Use(middleware.OptionalJWTMiddleware(deps.Auth))
	layerRouter.HandleFunc("", layerHandler.GetLayers).Methods("GET")
	layerRouter.HandleFunc("/{category}", layerHandler.GetLayer).Methods("GET")

	// Session routes
	r.HandleFunc("/session", authHandler.CreateSession).Methods("POST")
	sessionRouter := r.PathPrefix("/session").Subrouter()
	sessionRouter.Use(middleware.JWTMiddleware(deps.Auth))
	sessionRouter.HandleFunc("", sessionHandler.GetSession).Methods("GET")
	sessionRouter.HandleFunc("", sessionHandler.DeleteSession).Methods("DELETE")
	sessionRouter.HandleFunc("/layers/{category}/toggle", sessionHandler.ToggleLayer).Methods("POST")
	sessionRouter.HandleFunc("/hover", sessionHandler.Hover).Methods("POST")
	sessionRouter.HandleFunc("/active", sessionHandler.DismissActive).Methods("DELETE")
	sessionRouter.HandleFunc("/detail", sessionHandler.GetDetail).Methods("GET")
	sessionRouter.HandleFunc("/ws", eventHandler.Stream).Methods("GET")

	// Admin routes
	r.HandleFunc("/admin/reload", authHandler.ReloadLayers).Methods("POST")

	return r
}

// preflight answers OPTIONS requests the CORS middleware let through.
func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
