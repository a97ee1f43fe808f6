package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/norland/catena/internal/apperr"
	"github.com/norland/catena/internal/catalogservice"
	"github.com/norland/catena/internal/models"
	"github.com/norland/catena/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *catalogservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil; merge events
// are then not broadcast.
func NewHandler(svc *catalogservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// templateTitle extracts the template title from the URL (everything
// after /api/templates/). Titles may contain spaces and slashes, so
// encoded forms are supported.
func templateTitle(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	category := q.Get("category")

	items, total, err := h.svc.ListTemplates(r.Context(), limit, offset, category)
	if err != nil {
		slog.Error("list templates failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.Template{}
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: items, Total: total})
}

// GetTemplate handles GET /api/templates/*.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	title := templateTitle(r)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	t, err := h.svc.GetTemplate(r.Context(), title)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get template failed", slog.String("title", title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTemplate handles POST /api/templates (manual entry).
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var t models.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.AddManual(r.Context(), &t); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// DeleteTemplate handles DELETE /api/templates/* (manual entries only).
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	title := templateTitle(r)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if err := h.svc.DeleteManual(r.Context(), title); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete template failed", slog.String("title", title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		slog.Error("categories failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// Merge handles POST /api/merge: re-fetches every source and rebuilds
// the catalog. Per-source failures are reported in the response, not
// as an HTTP error.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	if h.broker != nil {
		h.broker.PublishMergeEvent("started", "", nil)
	}
	report, err := h.svc.Refresh(r.Context())
	if err != nil {
		if h.broker != nil {
			h.broker.PublishMergeEvent("failed", "", map[string]any{"error": err.Error()})
		}
		slog.Error("merge failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("merge failed"))
		return
	}
	if h.broker != nil {
		h.broker.PublishMergeEvent("completed", report.RunID, map[string]any{
			"original_count": report.OriginalCount,
			"final_count":    report.FinalCount,
		})
	}
	writeJSON(w, http.StatusOK, report)
}

// Catalog handles GET /api/catalog: serves the persisted collection
// document as-is.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.CollectionDocument(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("no catalog has been generated yet"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
