// Package web serves the suburb dataset read-only and triggers per-listing
// and per-address lookups. It only consumes the enrichment core's outputs;
// all writes happen through the pipeline commands.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/extract"
	"github.com/haihuyentran/melbourne-properties/internal/fetch"
	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

// PageFetcher retrieves a listing page. Block detection happens after the
// fetch, so any status is acceptable here.
type PageFetcher interface {
	GetAny(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// ProfileResolver resolves a free-text address to a transit profile.
type ProfileResolver interface {
	Profile(ctx context.Context, address string) (*model.TransitProfile, error)
}

// Server exposes the dataset and the lookup operations over HTTP.
type Server struct {
	ds      *dataset.Dataset
	fetcher PageFetcher
	transit ProfileResolver
}

// NewServer builds a Server over the loaded dataset.
func NewServer(ds *dataset.Dataset, f PageFetcher, t ProfileResolver) *Server {
	return &Server{ds: ds, fetcher: f, transit: t}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Get("/suburbs", s.handleSuburbs)
		r.Get("/suburbs/{name}", s.handleSuburb)
		r.Post("/listing/lookup", s.handleListingLookup)
		r.Post("/transit/profile", s.handleTransitProfile)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.Meta)
}

func (s *Server) handleSuburbs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.Suburbs)
}

func (s *Server) handleSuburb(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec := s.ds.Get(name)
	if rec == nil {
		writeError(w, http.StatusNotFound, "suburb not known: "+name)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListingLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	resp, err := s.fetcher.GetAny(r.Context(), req.URL)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	listing, err := extract.Extract(resp.Body, resp.FinalURL)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleTransitProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	profile, err := s.transit.Profile(r.Context(), req.Address)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("web: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError maps the error taxonomy onto HTTP statuses. A blocked
// listing page gets a hint about the manual-entry route since retrying will
// hit the same wall.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch upstream.KindOf(err) {
	case upstream.Validation:
		writeError(w, http.StatusBadRequest, err.Error())
	case upstream.NotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case upstream.Blocked:
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": err.Error(),
			"hint":  "the site is challenging automated requests; enter the listing details manually",
		})
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
