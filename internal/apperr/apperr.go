package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures surfaced to API clients.
type Kind string

const (
	KindValidation Kind = "validation"
	KindGeneration Kind = "generation"
)

// Fixed user-facing messages.
const (
	MsgMissingConstraints = "Missing required constraints: calorieTarget and dailyBudget."
	MsgGenerationFailed   = "Failed to generate meal plan from AI."
)

// AppError is an error with an HTTP mapping.
type AppError struct {
	Kind       Kind
	Message    string
	Detail     string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Body is the JSON error payload of the HTTP API.
type Body struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Body returns the payload for e.
func (e *AppError) Body() Body {
	b := Body{Error: e.Message}
	if e.Kind != KindValidation {
		b.Details = e.Detail
	}
	return b
}

// Validation reports input rejected before any external call.
func Validation(msg string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Generation wraps a failure of the external generator, its transport, or
// the shape of its output. The cause's message becomes the detail.
func Generation(err error) *AppError {
	e := &AppError{
		Kind:       KindGeneration,
		Message:    MsgGenerationFailed,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// From returns the AppError in err's chain or wraps err as a generation
// failure.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Generation(err)
}
