// Package server provides the HTTP surface of the Taala finger instrument:
// health, calibration, instrument bindings, recorded sessions, the live
// event WebSocket and the MJPEG camera preview.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/ayusman/taala/internal/capture"
	"github.com/ayusman/taala/internal/server/api"
	"github.com/ayusman/taala/internal/store"
)

// Config holds the server configuration. Nil collaborators disable the
// routes that need them.
type Config struct {
	StaticDir      string
	Store          *store.Store
	Camera         capture.Camera
	Calibrator     api.Calibrator
	AllowedOrigins []string
}

// Server represents the HTTP server for the Taala application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	events  *EventsHandler
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		events: NewEventsHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	})
	s.handler = c.Handler(s.mux)

	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/instruments", api.NewInstrumentsHandler())
	s.mux.Handle("/api/events", s.events)

	if s.config.Calibrator != nil {
		s.mux.Handle("/api/calibration", api.NewCalibrationHandler(s.config.Calibrator, s.config.Store))
	}

	if s.config.Store != nil {
		sessionsHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)

		profilesHandler := api.NewProfilesHandler(s.config.Store, s.config.Calibrator)
		s.mux.Handle("/api/profiles", profilesHandler)
		s.mux.Handle("/api/profiles/", profilesHandler)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Events returns the WebSocket broadcaster the frame loop pushes results to.
func (s *Server) Events() *EventsHandler {
	return s.events
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status":  "ok",
		"uptime":  uptime.String(),
		"clients": s.events.ClientCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
