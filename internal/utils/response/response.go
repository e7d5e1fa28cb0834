// Package response provides the single place where handler outcomes are
// turned into HTTP responses.
//
// Handlers in this application never write to the ResponseWriter
// themselves. They return (result, error) and Handle decides:
//
//	error == nil            → 200, result encoded as JSON
//	error is *StatusError   → its Status, error text as a JSON string
//	any other error         → 500, error text as a JSON string
//
// The error body is just the message, e.g.  "niveis: create: NOT NULL constraint failed"
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Message is the body of informational responses such as the welcome
// endpoint and delete confirmations.
type Message struct {
	Message string `json:"message"`
}

// Handler is the shape of every controller operation.
type Handler func(r *http.Request) (any, error)

// StatusError carries a non-500 status for request-shape problems.
// Storage failures are plain errors and always map to 500.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

// BadRequest marks err as the client's fault (400).
func BadRequest(err error) error {
	return &StatusError{Status: http.StatusBadRequest, Err: err}
}

// Handle adapts h to an http.HandlerFunc.
func Handle(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h(r)
		if err != nil {
			status := http.StatusInternalServerError
			var se *StatusError
			if errors.As(err, &se) {
				status = se.Status
			}
			writeOrLog(w, status, GeneralError(err))
			return
		}
		writeOrLog(w, http.StatusOK, result)
	}
}

func writeOrLog(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		slog.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError is the body sent for any failure: the error text alone.
func GeneralError(err error) string {
	return err.Error()
}

// ValidationError converts validator.ValidationErrors into one
// human-readable sentence, e.g.
//
//	"field Nome is required, field Email must be a valid email address"
func ValidationError(errs validator.ValidationErrors) error {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "oneof":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be one of [%s]", e.Field(), e.Param()))
		case "datetime":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a date formatted as %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return BadRequest(errors.New(strings.Join(errMessages, ", ")))
}
