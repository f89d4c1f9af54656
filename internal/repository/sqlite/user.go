package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/repository"
)

// UserRepo implements repository.UserRepository. Obtain one via DB.Users.
type UserRepo struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a new user. The caller's struct is updated in place with
// the generated id and timestamps.
//
// Email uniqueness is the UNIQUE index's job: a duplicate insert comes
// back as apperror.ErrConflict, which closes the race between concurrent
// registration and OAuth provisioning for the same address.
func (db *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, google_id, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.Image,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("el correo %s ya está registrado", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by internal id.
func (db *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a user by normalized email.
// Returns apperror.ErrNotFound if no account exists for the address.
func (db *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *UserRepo) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, google_id, image, created_at, updated_at
		 FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.Image,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("usuario", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}

	return &u, nil
}

// SetGoogleID links a Google identity to an account. The WHERE clause only
// matches rows with an empty google_id, which makes repeated calls no-ops
// and refuses to overwrite an existing link.
func (db *UserRepo) SetGoogleID(ctx context.Context, userID, googleID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET google_id = ?, updated_at = ?
		 WHERE id = ? AND google_id = ''`,
		googleID, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking google id to user %s: %w", userID, err)
	}

	// Zero rows means either the account is already linked (fine) or the
	// user does not exist; only the latter is an error.
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: linking google id to user %s: %w", userID, err)
	}
	if n == 0 {
		if _, err := db.GetByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
