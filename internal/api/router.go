// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("No route for " + r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Route("/training", func(r chi.Router) {
			r.Post("/train-all", router.handler.TrainAll)
			r.Post("/train/{type}", router.handler.TrainOne)
			r.Get("/status", router.handler.TrainingStatus)
		})

		r.Route("/models", func(r chi.Router) {
			r.Get("/types", router.handler.ModelTypes)
			r.Post("/cache/invalidate", router.handler.InvalidateCache)
			r.Get("/{type}/versions", router.handler.Versions)
			r.Get("/{type}/production", router.handler.Production)
			r.Post("/{type}/promote/{version}", router.handler.Promote)
			r.Post("/{type}/rollback", router.handler.Rollback)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/jobs/{studentID}", router.handler.RecommendJobs)
			r.Get("/students/{jobID}", router.handler.RecommendStudents)
		})

		r.Post("/predictions/pay/{algorithm}", router.handler.PredictPay)
	})

	return r
}
