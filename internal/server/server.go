// Package server exposes a favicon Resolver over HTTP.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	notefavicon "github.com/dgduncan/go-note-favicon"
)

// FaviconResponse is the JSON body of GET /favicon.
type FaviconResponse struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
	Image string `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves
//
//	GET  /favicon?value=...  resolved image as JSON, 204 when there is none
//	POST /reset              clear the cache, 204
//	GET  /metrics            Prometheus exposition, when a gatherer is set
type Server struct {
	resolver *notefavicon.Resolver
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a Server for resolver. If gatherer is nil, /metrics is not
// registered. If the 'logger' is nil, a no-op logger writing to io.Discard
// will be used.
func New(resolver *notefavicon.Resolver, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		resolver: resolver,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /favicon", s.handleFavicon)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if strings.TrimSpace(value) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing value parameter"})
		return
	}

	image := s.resolver.Resolve(r.Context(), value)
	if image == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, FaviconResponse{
		Value: value,
		Kind:  notefavicon.Classify(value).String(),
		Image: image,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.Store().Clear(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "error clearing cache", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to clear cache"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
