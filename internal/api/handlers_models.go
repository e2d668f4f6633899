// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/jobmatch/internal/models"
)

// ModelTypes handles GET /api/v1/models/types.
func (h *Handler) ModelTypes(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.ListTypes()
	NewResponseWriter(w, r).List(defs, len(defs))
}

// Versions handles GET /api/v1/models/{type}/versions.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt, err := modelType(r)
	if err != nil {
		rw.Fail(err)
		return
	}
	vs, err := h.registry.GetVersions(r.Context(), mt)
	if err != nil {
		rw.Fail(err)
		return
	}
	if vs == nil {
		vs = []models.ModelVersion{}
	}
	rw.List(vs, len(vs))
}

// Production handles GET /api/v1/models/{type}/production.
func (h *Handler) Production(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt, err := modelType(r)
	if err != nil {
		rw.Fail(err)
		return
	}
	v, err := h.registry.GetProduction(r.Context(), mt)
	if err != nil {
		rw.Fail(err)
		return
	}
	rw.Success(v)
}

// Promote handles POST /api/v1/models/{type}/promote/{version}.
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt, err := modelType(r)
	if err != nil {
		rw.Fail(err)
		return
	}
	v, err := h.registry.Promote(r.Context(), mt, chi.URLParam(r, "version"))
	if err != nil {
		rw.Fail(err)
		return
	}
	rw.Success(v)
}

// Rollback handles POST /api/v1/models/{type}/rollback.
func (h *Handler) Rollback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt, err := modelType(r)
	if err != nil {
		rw.Fail(err)
		return
	}
	v, err := h.registry.Rollback(r.Context(), mt)
	if err != nil {
		rw.Fail(err)
		return
	}
	rw.Success(v)
}

// InvalidateCache handles POST /api/v1/models/cache/invalidate. Without
// ?type= every cached model is dropped.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt := models.ModelType(r.URL.Query().Get("type"))
	if err := h.registry.InvalidateCache(r.Context(), mt); err != nil {
		rw.Fail(err)
		return
	}
	scope := string(mt)
	if scope == "" {
		scope = "all"
	}
	rw.Success(map[string]string{"invalidated": scope})
}
