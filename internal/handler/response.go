// Package handler contains the HTTP layer: request parsing, response
// encoding and the translation of domain errors into status codes.
// Business rules live in internal/service; handlers only glue HTTP to it.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmcervs/donatec/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns:
//
//	{"error": "conflict", "message": "ya existe una solicitud tuya para esta donación"}
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a service error into an HTTP response. Typed
// application errors carry a user-facing message; anything else is a
// generic 500 so internal detail never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrDependency):
			status = http.StatusBadGateway
			errorType = "dependency_error"
		}

		writeJSON(w, status, ErrorResponse{Error: errorType, Message: appErr.Message})
		return
	}

	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "ocurrió un error interno",
	})
}

// decodeJSON parses a JSON request body into dst, rejecting unknown
// fields so typos in the frontend surface as 400s instead of silently
// dropped data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "cuerpo JSON inválido")
	}
	return nil
}
