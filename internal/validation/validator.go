// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/models"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// RequestValidationError collects every failed field of one struct.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the failed fields in struct order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, fe := range ve.errors {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// Fields maps each failed field to its message.
func (ve *RequestValidationError) Fields() map[string]string {
	out := make(map[string]string, len(ve.errors))
	for _, fe := range ve.errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// GetValidator returns the singleton validator instance with the custom
// model_type and pay_algorithm tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("model_type", func(fl validator.FieldLevel) bool { //nolint:errcheck // static registration
			_, err := models.ParseModelType(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("pay_algorithm", func(fl validator.FieldLevel) bool { //nolint:errcheck // static registration
			return isPayAlgorithm(fl.Field().String())
		})
	})

	return validate
}

// PayAlgorithms are the accepted values of the pay_algorithm tag.
var PayAlgorithms = []string{"production", "linear", "ridge", "knn", "mean"}

func isPayAlgorithm(s string) bool {
	for _, a := range PayAlgorithms {
		if s == a {
			return true
		}
	}
	return false
}

// ValidateStruct validates s with the singleton validator. It returns nil when
// s is valid.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// InvalidValidationError: s was not a struct.
		return &RequestValidationError{errors: []FieldError{{Field: "request", Tag: "struct", Message: err.Error()}}}
	}

	out := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param(), Message: translateError(fe)}
	}
	return &RequestValidationError{errors: out}
}

// Check validates s and returns an apperr.KindInvalidInput error on failure.
func Check(op string, s any) error {
	if verr := ValidateStruct(s); verr != nil {
		return apperr.Wrap(apperr.KindInvalidInput, op, verr)
	}
	return nil
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":      "%s is required",
	"model_type":    "%s must be a known model type",
	"pay_algorithm": "%s must be one of: " + strings.Join(PayAlgorithms, ", "),
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
