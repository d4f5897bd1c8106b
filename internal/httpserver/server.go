// internal/httpserver/server.go
//
// HTTP wiring for the Love Letter Builder backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game lookup: GET /api/game/{gameID} → existence check.
//   - Letter endpoints: POST /api/loveletter/generate, GET /api/loveletter/letter/{gameID}.
//   - Mounts the realtime gateway at /ws.
//
// Notes:
//   - CORS origins come from CLIENT_ORIGIN (comma-separated); defaults to the
//     local Vite dev server.
//   - All request-scoped failures return JSON error bodies; nothing here can
//     take the process down.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/loveletter-builder/go-server/internal/letter"
	"github.com/loveletter-builder/go-server/internal/session"
	"github.com/loveletter-builder/go-server/internal/wordbank"
)

// Server bundles the router, the session registry, and the letter generator.
type Server struct {
	r        *chi.Mux
	registry *session.Registry
	gen      *letter.Generator
}

// New constructs a Server, installs middleware, and registers routes.
// ws is the realtime gateway handler mounted at /ws; pass nil to skip it
// (tests exercising only the REST surface do).
func New(registry *session.Registry, gen *letter.Generator, ws http.Handler) *Server {
	s := &Server{r: chi.NewRouter(), registry: registry, gen: gen}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(corsFromEnv())

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"loveletter-go","endpoints":["/health","/ws","GET /api/game/{gameId}","POST /api/loveletter/generate","GET /api/loveletter/letter/{gameId}"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/wordbank", func(w http.ResponseWriter, r *http.Request) {
		categories, phrases := wordbank.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"categories": categories, "phrases": phrases})
	})

	// --- REST surface ---
	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(chimw.Timeout(60 * time.Second)) // generation can take a while
		r.Get("/game/{gameID}", s.handleGameExists)
		r.Post("/loveletter/generate", s.handleGenerate)
		r.Get("/loveletter/letter/{gameID}", s.handleLetterLookup)
	})

	// --- realtime gateway ---
	if ws != nil {
		s.r.Get("/ws", ws.ServeHTTP)
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv allows the configured client origins.
// Uses CLIENT_ORIGIN (comma-separated); defaults to http://localhost:5173.
func corsFromEnv() func(http.Handler) http.Handler {
	origins := []string{"http://localhost:5173"}
	if v := os.Getenv("CLIENT_ORIGIN"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler
}

// ------------------------------- handlers ----------------------------------

// handleGameExists reports whether a game id resolves to a live session.
func (s *Server) handleGameExists(w http.ResponseWriter, r *http.Request) {
	_, err := s.registry.Get(chi.URLParam(r, "gameID"))
	writeJSON(w, http.StatusOK, map[string]bool{"exists": err == nil})
}

// generateReq is the payload for POST /api/loveletter/generate.
type generateReq struct {
	Player1Words []string `json:"player1Words"`
	Player2Words []string `json:"player2Words"`
	GameID       string   `json:"gameId"`
}

// handleGenerate produces (or replays) the letter for the given word lists.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid input: player words must be arrays",
		})
		return
	}
	if req.Player1Words == nil || req.Player2Words == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid input: player words must be arrays",
		})
		return
	}

	text, err := s.gen.Generate(r.Context(), req.Player1Words, req.Player2Words, req.GameID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"loveLetter": text})
	case errors.Is(err, letter.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid word counts: Player 1 and Player 2 must each have 5 words",
		})
	default:
		log.Error().Err(err).Str("gameId", req.GameID).Msg("generate letter")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to generate love letter",
			"details": err.Error(),
		})
	}
}

// handleLetterLookup replays a previously generated letter.
func (s *Server) handleLetterLookup(w http.ResponseWriter, r *http.Request) {
	text, err := s.gen.Lookup(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Love letter not found for this game",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loveLetter": text})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
