package model

import "time"

// Request lifecycle states.
const (
	RequestPending  = "pendiente"
	RequestApproved = "aprobada"
	RequestRejected = "rechazada"
)

// Request is a user's petition for a specific donation.
//
// RequesterName and RequesterEmail are denormalized copies taken from the
// User record at creation time, so the record stays meaningful for the
// donation owner even if the user later changes their profile.
//
// At most one request may exist per (donation, user) pair; enforced by a
// UNIQUE index, not by application-level read-then-write.
type Request struct {
	ID             string    `json:"id"`
	DonationID     string    `json:"donacionId"`
	UserID         string    `json:"usuarioId"`
	RequesterName  string    `json:"nombre"`
	RequesterEmail string    `json:"correo"`
	Justification  string    `json:"descripcion"`
	Phone          string    `json:"telefono"`
	State          string    `json:"estado"`
	CreatedAt      time.Time `json:"fechaCreacion"`

	// Donation is joined in by list-for-user reads so the frontend can
	// render what was requested without a second round trip.
	Donation *Donation `json:"donacion,omitempty"`
}

// ValidRequestState reports whether s is one of the three known states.
func ValidRequestState(s string) bool {
	return s == RequestPending || s == RequestApproved || s == RequestRejected
}
