// Package server exposes the summarization service over a small JSON API.
//
// Endpoints:
//
//	POST   /api/summarize  run a summarization; stream=true flushes progress
//	GET    /api/models     list available models
//	GET    /api/history    list recorded runs, newest first
//	DELETE /api/history    clear recorded runs
//	GET    /healthz        liveness probe
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/history"
	"github.com/sweetpotato0/digest/pkg/logging"
	"github.com/sweetpotato0/digest/prompt"
	"github.com/sweetpotato0/digest/summarize"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// ReadTimeout bounds request reading.
	ReadTimeout time.Duration

	// WriteTimeout bounds response writing. Keep it generous: streaming
	// summarization holds the response open for the whole run.
	WriteTimeout time.Duration
}

// DefaultConfig returns server defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
}

// ConfigFromEnv builds config from environment variables.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if addr := os.Getenv("DIGEST_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if timeout := os.Getenv("DIGEST_WRITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.WriteTimeout = d
		}
	}
	return cfg
}

// WithAddr sets the listen address.
func (c *Config) WithAddr(addr string) *Config {
	c.Addr = addr
	return c
}

// Server serves the summarization API.
type Server struct {
	cfg     *Config
	service *summarize.Service
	logger  *slog.Logger
	http    *http.Server
}

// New creates a server around a summarization service.
func New(service *summarize.Service, cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		cfg:     cfg,
		service: service,
		logger:  logging.WithComponent("server"),
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, usable with any http.Server.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/api/summarize", s.handleSummarize).Methods(http.MethodPost)
	r.HandleFunc("/api/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

// ListenAndServe blocks serving requests until the context is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type summarizeRequest struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	Style        string `json:"style,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	WordLimit    int    `json:"word_limit,omitempty"`
	Stream       bool   `json:"stream,omitempty"`
}

type progressEvent struct {
	Summary string `json:"summary"`
	Done    bool   `json:"done"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", digesterrors.ErrInvalidRequest, err))
		return
	}

	svcReq := &summarize.Request{
		Text:         req.Text,
		Model:        req.Model,
		Style:        prompt.Style(req.Style),
		Instructions: req.Instructions,
		WordLimit:    req.WordLimit,
	}

	if req.Stream {
		s.streamSummarize(w, r, svcReq)
		return
	}

	sum, err := s.service.Summarize(r.Context(), svcReq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

// streamSummarize writes one NDJSON progress event per fragment, then a
// final done event carrying the full summary.
func (s *Server) streamSummarize(w http.ResponseWriter, r *http.Request, req *summarize.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: streaming unsupported by connection", digesterrors.ErrInvalidRequest))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)

	req.Stream = true
	req.Observer = func(accumulated string) error {
		if err := enc.Encode(progressEvent{Summary: accumulated}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	sum, err := s.service.Summarize(r.Context(), req)
	if err != nil {
		// Headers are gone; report the failure in-band.
		enc.Encode(map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}
	enc.Encode(progressEvent{Summary: sum.Text, Done: true})
	flusher.Flush()
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := s.service.Models(r.Context())
	s.writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHistory(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, digesterrors.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, digesterrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, digesterrors.ErrTransport):
		status = http.StatusBadGateway
	}
	s.logger.Error("request failed", "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
