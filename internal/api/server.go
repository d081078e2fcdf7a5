// Package api serves the destination rankings and run history over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/tourism-cli/internal/model"
	"github.com/sells-group/tourism-cli/internal/store"
)

// maxLimit caps the limit query parameter.
const maxLimit = 500

// Server exposes a read-only view of the snapshot store.
type Server struct {
	store        store.Store
	defaultLimit int
}

// NewServer creates a Server. defaultLimit applies when a request omits ?limit.
func NewServer(st store.Store, defaultLimit int) *Server {
	if defaultLimit <= 0 {
		defaultLimit = store.DefaultRankLimit
	}
	return &Server{store: st, defaultLimit: defaultLimit}
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/destinations/volume", s.handleTopByVolume)
		r.Get("/destinations/per-capita", s.handleTopPerCapita)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Warn("api: health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopByVolume(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	ranks, err := s.store.TopByFlightVolume(r.Context(), limit)
	if err != nil {
		s.internalError(w, "top by volume", err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Ranking: "volume", Destinations: nonNil(ranks)})
}

func (s *Server) handleTopPerCapita(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	ranks, err := s.store.TopByPassengersPerCapita(r.Context(), limit)
	if err != nil {
		s.internalError(w, "top per capita", err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Ranking: "per_capita", Destinations: nonNil(ranks)})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	filter := store.RunFilter{Status: model.RunStatus(r.URL.Query().Get("status")), Limit: limit}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		s.internalError(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "run not found") {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.internalError(w, "get run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type rankResponse struct {
	Ranking      string                  `json:"ranking"`
	Destinations []model.DestinationRank `json:"destinations"`
}

// limit parses ?limit, falling back to the server default.
func (s *Server) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxLimit))
		return 0, false
	}
	return n, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	zap.L().Error("api: request failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func nonNil(ranks []model.DestinationRank) []model.DestinationRank {
	if ranks == nil {
		return []model.DestinationRank{}
	}
	return ranks
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
