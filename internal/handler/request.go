package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/auth"
	"github.com/dmcervs/donatec/internal/service"
)

// RequestHandler serves the request lifecycle endpoints.
type RequestHandler struct {
	requests *service.RequestService
	logger   *slog.Logger
}

func NewRequestHandler(requests *service.RequestService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{requests: requests, logger: logger}
}

// HandleCreate files a request for a donation by the authenticated user.
//
// POST /requests/{donationId}, JSON {descripcion, telefono}
func (h *RequestHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	var body struct {
		Justification string `json:"descripcion"`
		Phone         string `json:"telefono"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	request, err := h.requests.Create(
		r.Context(),
		chi.URLParam(r, "donationId"),
		claims.UserID,
		body.Justification,
		body.Phone,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// HandleListForDonation returns the requests targeting a donation.
//
// GET /requests/donacion/{donationId}
func (h *RequestHandler) HandleListForDonation(w http.ResponseWriter, r *http.Request) {
	list, err := h.requests.ListForDonation(r.Context(), chi.URLParam(r, "donationId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleListForUser returns a user's requests with their donations joined.
//
// GET /requests/usuario/{userId}
func (h *RequestHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.requests.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleSetState resolves a pending request. Donation owner only.
//
// PATCH /requests/{id}/estado, JSON {estado}
func (h *RequestHandler) HandleSetState(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	var body struct {
		State string `json:"estado"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	request, err := h.requests.SetState(r.Context(), chi.URLParam(r, "id"), claims.UserID, body.State)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// HandleMarkFulfilled declares an approved request delivered; the donation
// and its remaining requests go away. Donation owner only.
//
// POST /requests/{id}/entregada
func (h *RequestHandler) HandleMarkFulfilled(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	if err := h.requests.MarkFulfilledByRequest(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "entrega registrada"})
}
