// Package handlers provides the HTTP API for debate sessions.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/engine"
	"github.com/rhetorlabs/rhetor/internal/export"
	"github.com/rhetorlabs/rhetor/internal/persona"
	"github.com/rhetorlabs/rhetor/internal/provider"
	"github.com/rhetorlabs/rhetor/internal/storage"
)

// sessionRunTimeout bounds a background debate run.
const sessionRunTimeout = 30 * time.Minute

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   *engine.Engine
	registry *provider.Registry
}

// New creates a new Handler.
func New(store storage.Storage, registry *provider.Registry) *Handler {
	return &Handler{
		engine:   engine.New(store, registry),
		registry: registry,
	}
}

// Router builds the chi router with all API routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sessions", h.handleListSessions)
		r.Post("/sessions", h.handleCreateSession)
		r.Get("/sessions/{id}", h.handleGetSession)
		r.Delete("/sessions/{id}", h.handleDeleteSession)
		r.Get("/sessions/{id}/export", h.handleExportSession)
		r.Get("/personas", h.handleListPersonas)
		r.Get("/providers", h.handleListProviders)
	})

	return r
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	sessions, err := h.engine.ListSessions(limit, offset)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sessions == nil {
		sessions = []*core.SessionSummary{}
	}

	h.writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var config core.NewSessionConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	session, err := h.engine.CreateSession(r.Context(), config)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	// Run the debate in the background; clients poll GET /sessions/{id}.
	// The goroutine re-loads the session by ID so it never shares the
	// object being encoded into the response.
	id := session.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sessionRunTimeout)
		defer cancel()

		stored, err := h.engine.GetSession(id)
		if err != nil || stored == nil {
			slog.Error("Failed to load session for background run", "session_id", id, "error", err)
			return
		}
		if err := h.engine.Run(ctx, stored, nil); err != nil {
			slog.Error("Background session run failed", "session_id", id, "error", err)
		}
	}()

	h.writeJSON(w, http.StatusAccepted, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if session == nil {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.engine.GetSession(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if session == nil {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	if err := h.engine.DeleteSession(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if session == nil {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}

	exporter, err := export.GetExporter(format)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	filename := export.GenerateFilename(session, exporter.FileExtension())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	case export.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}

	if err := exporter.Export(session, w); err != nil {
		slog.Error("Export failed", "session_id", session.ID, "format", format, "error", err)
	}
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, persona.Builtin())
}

type providerInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	var infos []providerInfo
	for _, p := range h.registry.List() {
		infos = append(infos, providerInfo{
			Name:        p.Name(),
			DisplayName: p.DisplayName(),
			Available:   p.Available(),
		})
	}
	if infos == nil {
		infos = []providerInfo{}
	}

	h.writeJSON(w, http.StatusOK, infos)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	slog.Debug("Request failed", "status", status, "error", err)
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
