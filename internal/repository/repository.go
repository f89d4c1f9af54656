// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage is the concrete implementation;
// services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/dmcervs/donatec/internal/model"
)

// UserRepository stores user accounts.
//
// Create must enforce email uniqueness at write time (unique index, not
// read-then-write) and return an apperror.ErrConflict on violation.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// SetGoogleID links a Google identity to an existing account. It only
	// writes when the stored google_id is empty, so the call is idempotent.
	// A missing user is apperror.ErrNotFound.
	SetGoogleID(ctx context.Context, userID, googleID string) error
}

// DonationRepository stores donation listings.
type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	// GetByID returns the donation with the owner's display name joined in.
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	// ListActive returns Activo donations, newest first.
	ListActive(ctx context.Context) ([]model.Donation, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Donation, error)
	// Update overwrites title, description, category and images.
	Update(ctx context.Context, donation *model.Donation) error
	SetState(ctx context.Context, id, state string) error
	// Delete removes the donation; its requests go with it (FK cascade).
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// RequestRepository stores donation requests.
//
// Create must enforce the one-request-per-(donation,user) rule with a
// compound unique index and return apperror.ErrConflict on violation.
type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	ListForDonation(ctx context.Context, donationID string) ([]model.Request, error)
	// ListForUser returns the user's requests with each target donation
	// joined in.
	ListForUser(ctx context.Context, userID string) ([]model.Request, error)
	SetState(ctx context.Context, id, state string) error
}
