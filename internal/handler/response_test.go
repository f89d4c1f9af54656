package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmcervs/donatec/internal/apperror"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("correo", "correo inválido"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("credenciales inválidas"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("solo el dueño"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("donacion", "abc"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("ya existe"), http.StatusConflict, "conflict"},
		{"dependency", apperror.Dependency("proveedor caído"), http.StatusBadGateway, "dependency_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteError_WrappedErrorStillMaps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("service/donation: fetching: %w", apperror.NotFound("donacion", "abc")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteError_UnknownErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("sql: near \"SELEC\": syntax error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, body.Message, "SELEC")
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"correo":"a@cua.uam.mx","tpyo":"x"}`))

	var dst struct {
		Email string `json:"correo"`
	}
	err := decodeJSON(req, &dst)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
