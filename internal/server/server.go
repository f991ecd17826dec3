// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes conversion and history over HTTP for a browser
// front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/internal/pack"
	"github.com/pdiddy/design-compiler/pkg/types"
)

// StatusClientClosedRequest reports a conversion cancelled by the client.
const StatusClientClosedRequest = 499

const maxBodyBytes = 1 << 20

// Converter runs one conversion.
type Converter interface {
	Convert(ctx context.Context, sourceURL, credential string, target types.OutputTarget, opts types.Options) (*types.EmitBundle, error)
}

// History is the subset of the history store the API serves.
type History interface {
	List(ctx context.Context) ([]types.HistoryRecord, error)
	Rename(ctx context.Context, id, name string) (types.HistoryRecord, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
}

// Service holds the HTTP handlers.
type Service struct {
	conv   Converter
	hist   History
	token  string
	logger *slog.Logger
}

// New returns a service. token is the credential used when a request
// carries none; it may be empty.
func New(conv Converter, hist History, token string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{conv: conv, hist: hist, token: token, logger: logger}
}

// Handler returns the routed handler with standard middleware.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP registers the endpoints on r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	r.Get("/history", s.handleListHistory)
	r.Delete("/history", s.handleClearHistory)
	r.Patch("/history/{id}", s.handleRenameHistory)
	r.Delete("/history/{id}", s.handleDeleteHistory)
}

// ConvertRequest is the body for POST /convert.
type ConvertRequest struct {
	URL            string `json:"url"`
	Format         string `json:"format"`
	Token          string `json:"token,omitempty"`
	Breakpoints    []int  `json:"breakpoints,omitempty"`
	OptimizeAssets bool   `json:"optimize_assets,omitempty"`
}

// RenameRequest is the body for PATCH /history/{id}.
type RenameRequest struct {
	DisplayName string `json:"display_name"`
}

type errorResponse struct {
	Error     string          `json:"error"`
	Kind      types.ErrorKind `json:"kind"`
	Retryable bool            `json:"retryable"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "design-compiler"})
}

// handleConvert runs a conversion. The bundle is returned as JSON, or as a
// zip archive when ?download=zip is set.
// POST /convert
func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = string(types.TargetMarkupUtility)
	}

	token := req.Token
	if token == "" {
		token = r.Header.Get("X-Figma-Token")
	}
	if token == "" {
		token = s.token
	}

	opts := types.Options{Breakpoints: req.Breakpoints, OptimizeAssets: req.OptimizeAssets}
	bundle, err := s.conv.Convert(r.Context(), req.URL, token, types.OutputTarget(req.Format), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("download") != "zip" {
		writeJSON(w, http.StatusOK, bundle)
		return
	}
	data, err := pack.Pack(bundle)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="design.zip"`)
	w.Write(data)
}

// GET /history
func (s *Service) handleListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.hist.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// PATCH /history/{id}
func (s *Service) handleRenameHistory(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		http.Error(w, "display_name required", http.StatusBadRequest)
		return
	}
	rec, err := s.hist.Rename(r.Context(), chi.URLParam(r, "id"), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /history/{id}
func (s *Service) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.hist.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /history
func (s *Service) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.hist.Clear(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, history.ErrNoRecord) {
		return http.StatusNotFound
	}
	var e *types.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case types.KindInvalidURL, types.KindInvalidOptions:
		return http.StatusBadRequest
	case types.KindAuth:
		return http.StatusUnauthorized
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindRateLimit:
		return http.StatusTooManyRequests
	case types.KindTransport, types.KindParse:
		return http.StatusBadGateway
	case types.KindCancelled:
		return StatusClientClosedRequest
	}
	return http.StatusInternalServerError
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	kind := types.KindOf(err)
	if errors.Is(err, history.ErrNoRecord) {
		kind = types.KindNotFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
	} else {
		s.logger.Info("request rejected", "path", r.URL.Path, "status", status, "kind", kind)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind, Retryable: types.Retryable(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encoding response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
