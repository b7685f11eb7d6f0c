// Package api exposes the HTTP interface for the place sync service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/placepulse/placesync/internal/metrics"
	"github.com/placepulse/placesync/internal/middleware"
	"github.com/placepulse/placesync/internal/place"
	"github.com/placepulse/placesync/internal/resolver"
	"github.com/placepulse/placesync/internal/syncer"
)

// syncTimeout bounds one background sync run.
const syncTimeout = 60 * time.Second

// Server wires HTTP handlers to the resolver, syncer, and store.
type Server struct {
	router   chi.Router
	resolver *resolver.Resolver
	syncer   *syncer.Syncer
	store    place.Store
	idGen    place.IDGenerator
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewServer constructs a Server with middleware and routes. A nil
// logger is replaced with a no-op.
func NewServer(
	res *resolver.Resolver,
	runner *syncer.Syncer,
	store place.Store,
	idGen place.IDGenerator,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: res,
		syncer:   runner,
		store:    store,
		idGen:    idGen,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Metrics)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1/places", func(r chi.Router) {
		r.Post("/sync", s.submitSync)
		r.Get("/{place_id}", s.getPlace)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Wait blocks until all in-flight background syncs complete. Called
// during graceful shutdown.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type syncRequest struct {
	URL string `json:"url"`
}

type syncAccepted struct {
	RequestID string `json:"request_id"`
	PlaceID   string `json:"place_id"`
	Category  string `json:"category"`
}

// submitSync resolves the identity synchronously so bad input fails
// fast, then runs the sync in the background.
func (s *Server) submitSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	identity, _, err := s.resolver.Resolve(req.URL, nil)
	if err != nil {
		if errors.Is(err, place.ErrIdentityNotFound) {
			s.writeError(w, http.StatusBadRequest, "no place id in url")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "generate request id")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Detached from the request context: the caller already got 202.
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if _, err := s.syncer.Run(ctx, identity); err != nil {
			s.logger.Error("background sync failed",
				zap.String("request_id", requestID),
				zap.String("place_id", identity.ID),
				zap.Error(err))
		}
	}()

	s.writeJSON(w, http.StatusAccepted, syncAccepted{
		RequestID: requestID,
		PlaceID:   identity.ID,
		Category:  identity.Category,
	})
}

func (s *Server) getPlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "place_id")
	rec, found, err := s.store.GetByID(r.Context(), placeID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "place not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
