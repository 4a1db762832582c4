// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API over the category service.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"categoryd/internal/cache"
	"categoryd/internal/category"
)

// retryAfterSeconds is sent with 503 responses for retryable store failures.
const retryAfterSeconds = "1"

// Categories serves the /api/categories routes.
type Categories struct {
	svc   *category.Service
	cache *cache.TreeCache
}

// NewCategories creates the category handlers. tree may be nil.
func NewCategories(svc *category.Service, tree *cache.TreeCache) *Categories {
	return &Categories{svc: svc, cache: tree}
}

// List handles GET /api/categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	if items, ok := h.cache.Get(r.Context()); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, items)
		return
	}

	// The generation is read before the store so that a commit landing
	// between the two makes the Set below a no-op.
	gen, cacheable := h.cache.Generation(r.Context())
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cacheable {
		h.cache.Set(r.Context(), gen, items)
	}
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	dto, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if dto == nil {
		writeError(w, http.StatusNotFound, string(category.KindCategoryNotFound), "category not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Ancestors handles GET /api/categories/{id}/ancestors.
func (h *Categories) Ancestors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	chain, err := h.svc.Ancestors(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chain)
}

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !bindJSON(w, r, &req) {
		return
	}

	dto, err := h.svc.Create(r.Context(), category.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID.ptr(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+dto.ID.String())
	writeJSON(w, http.StatusCreated, dto)
}

// Update handles PATCH /api/categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !bindJSON(w, r, &req) {
		return
	}

	dto, err := h.svc.Update(r.Context(), id, category.UpdateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    category.OptionalID{Set: req.ParentID.Set, Value: req.ParentID.Value},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/categories/{id}.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(category.KindValidation), "category id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(e *category.Error) int {
	switch e.Kind {
	case category.KindValidation, category.KindInvalidParent:
		return http.StatusBadRequest
	case category.KindDuplicateSlug, category.KindHasChildren:
		return http.StatusConflict
	case category.KindParentNotFound, category.KindCategoryNotFound:
		return http.StatusNotFound
	case category.KindPersistence:
		if e.Retryable() {
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError renders an error returned by category.Service.
// Messages of internal failures are not exposed.
func writeServiceError(w http.ResponseWriter, err error) {
	var e *category.Error
	if !errors.As(err, &e) {
		slog.Error("unclassified service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error", nil)
		return
	}

	status := statusFor(e)
	msg := e.Message
	switch {
	case e.Retryable():
		w.Header().Set("Retry-After", retryAfterSeconds)
		msg = "storage temporarily unavailable"
	case e.Kind == category.KindPersistence:
		msg = "internal storage error"
	case e.Kind == category.KindCorruptHierarchy:
		msg = "category hierarchy is inconsistent"
	}
	writeError(w, status, string(e.Kind), msg, nil)
}

// errorBody is the envelope for every non-2xx response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, message string, fields []fieldError) {
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: message, Fields: fields}})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response", "error", err)
	}
}
