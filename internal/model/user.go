// Package model defines the data structures used throughout the application.
//
// JSON field names are Spanish because the public API (and the frontend
// consuming it) speaks Spanish; nombre, correo, descripcion, estado.
// Go field names stay English.
package model

import "time"

// User represents a registered account.
//
// An account can carry a local credential (PasswordHash), a linked Google
// identity (GoogleID), or both: a user who registered with a password can
// later sign in with Google and the account acquires a GoogleID without
// losing the password. Accounts provisioned by a first Google sign-in get
// PasswordHash = NoPasswordMarker and cannot log in locally.
//
// Email is the unique natural key. It is stored lowercased and guarded by
// a UNIQUE index, so concurrent registration and OAuth provisioning cannot
// produce two rows for the same address.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"correo"`
	PasswordHash string    `json:"-"` // never serialized
	GoogleID     string    `json:"googleId,omitempty"`
	Image        string    `json:"imagen,omitempty"` // base64 payload or URL
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NoPasswordMarker is stored in PasswordHash for accounts created through
// Google sign-in. It is not a valid bcrypt hash, so bcrypt verification
// always fails against it and the account cannot authenticate locally.
const NoPasswordMarker = "!oauth"

// HasUsablePassword reports whether local email/password login is possible
// for this account.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != "" && u.PasswordHash != NoPasswordMarker
}

// Summary is the safe projection of a User returned by auth endpoints.
// It carries what the frontend needs and nothing it must not see.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
	Image string `json:"imagen,omitempty"`
}

// Summary returns the safe projection of u.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}
