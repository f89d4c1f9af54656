package model

import "time"

// Donation lifecycle states. Spanish values travel over the wire.
const (
	DonationActive   = "Activo"
	DonationInactive = "Inactivo"
)

// MaxDonationImages caps how many image payloads a donation may carry.
const MaxDonationImages = 3

// Donation represents a listed item available for request.
//
// Title maps to "nombre" on the wire (the frontend labels the field
// "nombre del artículo"). Category is free text from a suggested set, not
// a server-enforced enum. Images are base64 payloads, at most three.
// UserID may be empty; a listing is not required to resolve its owner.
type Donation struct {
	ID          string    `json:"id"`
	Title       string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Category    string    `json:"categoria"`
	Images      []string  `json:"imagen"`
	UserID      string    `json:"usuario,omitempty"`
	OwnerName   string    `json:"nombreUsuario,omitempty"` // joined in on reads
	State       string    `json:"estado"`
	CreatedAt   time.Time `json:"fechaCreacion"`
}

// IsActive reports whether the donation is visible in the public listing.
func (d *Donation) IsActive() bool {
	return d.State == DonationActive
}
