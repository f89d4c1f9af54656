package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/auth"
	"github.com/dmcervs/donatec/internal/service"
)

// DonationHandler serves the donation catalog endpoints.
type DonationHandler struct {
	donations *service.DonationService
	logger    *slog.Logger
}

func NewDonationHandler(donations *service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, logger: logger}
}

// donationBody is the JSON shape for create and update.
type donationBody struct {
	Title       string   `json:"nombre"`
	Description string   `json:"descripcion"`
	Category    string   `json:"categoria"`
	Images      []string `json:"imagen"`
}

func (b donationBody) input() service.DonationInput {
	return service.DonationInput{
		Title:       b.Title,
		Description: b.Description,
		Category:    b.Category,
		Images:      b.Images,
	}
}

// HandleCreate publishes a donation owned by the authenticated user.
//
// POST /donations
func (h *DonationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	var body donationBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	donation, err := h.donations.Create(r.Context(), claims.UserID, body.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, donation)
}

// HandleList returns the public catalog: Activo donations, newest first.
//
// GET /donations
func (h *DonationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.donations.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet returns a single donation.
//
// GET /donations/{id}
func (h *DonationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	donation, err := h.donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// HandleListByUser returns every donation a user owns, Inactivo included.
//
// GET /donations/usuario/{userId}
func (h *DonationHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.donations.ListByOwner(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleUpdate overwrites a donation's editable fields. Owner only.
//
// PUT /donations/{id}
func (h *DonationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	var body donationBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	donation, err := h.donations.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), body.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, donation)
}

// HandleSetState toggles a donation between Activo and Inactivo. Owner
// only.
//
// PATCH /donations/{id}/estado, JSON {estado}
func (h *DonationHandler) HandleSetState(w http.ResponseWriter, r *http.Request) {
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

	donation, err := h.donations.SetState(r.Context(), claims.UserID, chi.URLParam(r, "id"), body.State)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, donation)
}

// HandleDelete removes a donation and, via the cascade, its requests.
// Owner only.
//
// DELETE /donations/{id}
func (h *DonationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	if err := h.donations.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "donación eliminada"})
}

// HandleDeleteAll wipes the catalog. Admin only.
//
// DELETE /donations
func (h *DonationHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	n, err := h.donations.DeleteAll(r.Context(), claims.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"eliminadas": n})
}
