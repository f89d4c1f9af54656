package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "María López",
		Email:        "maria@cua.uam.mx",
		PasswordHash: "$2a$04$xxxxxxxxxxxxxxxxxxxxxx",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "maria@cua.uam.mx")

	dup := &model.User{Name: "Otra María", Email: "maria@cua.uam.mx"}
	err := db.Users().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create(duplicate email) error = %v, want ErrConflict", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "luis@cua.uam.mx")

	got, err := db.Users().GetByEmail(context.Background(), "luis@cua.uam.mx")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() id = %q, want %q", got.ID, created.ID)
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByEmail(context.Background(), "nadie@cua.uam.mx")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserSetGoogleID(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "maria@cua.uam.mx")

	if err := db.Users().SetGoogleID(context.Background(), user.ID, "google-111"); err != nil {
		t.Fatalf("SetGoogleID() error = %v", err)
	}

	got, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.GoogleID != "google-111" {
		t.Errorf("GoogleID = %q, want %q", got.GoogleID, "google-111")
	}
}

func TestUserSetGoogleID_DoesNotOverwrite(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "maria@cua.uam.mx")

	users := db.Users()
	if err := users.SetGoogleID(context.Background(), user.ID, "google-111"); err != nil {
		t.Fatalf("SetGoogleID() error = %v", err)
	}
	// A second link attempt must be a no-op, not a replacement.
	if err := users.SetGoogleID(context.Background(), user.ID, "google-222"); err != nil {
		t.Fatalf("SetGoogleID() second call error = %v", err)
	}

	got, _ := users.GetByID(context.Background(), user.ID)
	if got.GoogleID != "google-111" {
		t.Errorf("GoogleID = %q after second link, want the original %q", got.GoogleID, "google-111")
	}
}

func TestUserSetGoogleID_MissingUser(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().SetGoogleID(context.Background(), "no-such-user", "google-111")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetGoogleID(missing) error = %v, want ErrNotFound", err)
	}
}
