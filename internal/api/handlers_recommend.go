// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/jobmatch/internal/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

type recommendFunc func(ctx context.Context, id string, mode models.ScoringMode, limit int) ([]models.RecommendationResult, error)

// RecommendJobs handles GET /api/v1/recommendations/jobs/{studentID}.
func (h *Handler) RecommendJobs(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, chi.URLParam(r, "studentID"), h.recommender.RecommendJobs)
}

// RecommendStudents handles GET /api/v1/recommendations/students/{jobID}.
func (h *Handler) RecommendStudents(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, chi.URLParam(r, "jobID"), h.recommender.RecommendStudents)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, id string, fn recommendFunc) {
	rw := NewResponseWriter(w, r)
	limit, err := limitParam(r)
	if err != nil {
		rw.Fail(err)
		return
	}
	mode := models.ScoringMode(r.URL.Query().Get("mode"))

	results, err := fn(r.Context(), id, mode, limit)
	if err != nil {
		rw.Fail(err)
		return
	}
	rw.List(results, len(results))
}

// PredictPay handles POST /api/v1/predictions/pay/{algorithm}.
func (h *Handler) PredictPay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var in models.PayInput
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return
	}
	if err := json.Unmarshal(body, &in); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}

	pred, err := h.recommender.PredictPay(r.Context(), chi.URLParam(r, "algorithm"), in)
	if err != nil {
		rw.Fail(err)
		return
	}
	rw.Success(pred)
}
