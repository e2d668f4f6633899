// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and caches struct metadata. Two
// custom tags are registered on it:
//
//   - model_type: the value parses with models.ParseModelType
//   - pay_algorithm: the value names a pay prediction algorithm
//
// ValidateStruct returns a *RequestValidationError listing every failed field
// with a readable message. Check wraps the same result as an apperr
// KindInvalidInput error so that it maps to 400 at the HTTP boundary:
//
//	type payRequest struct {
//	    Algorithm string `validate:"required,pay_algorithm"`
//	    Input     models.PayInput
//	}
//
//	if err := validation.Check("api.predictPay", &req); err != nil {
//	    return err
//	}
package validation
