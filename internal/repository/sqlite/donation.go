package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/repository"
)

// DonationRepo implements repository.DonationRepository. Obtain one via
// DB.Donations.
type DonationRepo struct {
	conn *sql.DB
}

var _ repository.DonationRepository = (*DonationRepo)(nil)

// Images are stored as a JSON array in a TEXT column. At most three
// payloads per donation; the service enforces the cap before we get here.

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encoding images: %w", err)
	}
	return string(b), nil
}

func decodeImages(raw string) ([]string, error) {
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	return images, nil
}

// Create inserts a new donation. The caller's struct is updated in place
// with the generated id, creation time, and Activo state if unset.
func (db *DonationRepo) Create(ctx context.Context, d *model.Donation) error {
	d.ID = xid.New().String()
	d.CreatedAt = time.Now()
	if d.State == "" {
		d.State = model.DonationActive
	}

	images, err := encodeImages(d.Images)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	var userID any
	if d.UserID != "" {
		userID = d.UserID
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO donations (id, title, description, category, images, user_id, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Description, d.Category, images, userID, d.State, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting donation %q: %w", d.Title, err)
	}

	return nil
}

const donationColumns = `d.id, d.title, d.description, d.category, d.images,
	COALESCE(d.user_id, ''), COALESCE(u.name, ''), d.state, d.created_at`

func scanDonation(row interface{ Scan(...any) error }) (*model.Donation, error) {
	var d model.Donation
	var images string

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Category,
		&images,
		&d.UserID,
		&d.OwnerName,
		&d.State,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Images, err = decodeImages(images)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a donation with the owner's display name joined in.
func (db *DonationRepo) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+donationColumns+`
		 FROM donations d LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.id = ?`, id,
	)

	d, err := scanDonation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("donacion", id)
		}
		return nil, fmt.Errorf("sqlite: getting donation %s: %w", id, err)
	}
	return d, nil
}

// ListActive returns Activo donations, newest first.
func (db *DonationRepo) ListActive(ctx context.Context) ([]model.Donation, error) {
	return db.listDonations(ctx,
		`WHERE d.state = ? ORDER BY d.created_at DESC`, model.DonationActive)
}

// ListByOwner returns all of a user's donations regardless of state,
// newest first.
func (db *DonationRepo) ListByOwner(ctx context.Context, userID string) ([]model.Donation, error) {
	return db.listDonations(ctx,
		`WHERE d.user_id = ? ORDER BY d.created_at DESC`, userID)
}

func (db *DonationRepo) listDonations(ctx context.Context, tail string, args ...any) ([]model.Donation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+donationColumns+`
		 FROM donations d LEFT JOIN users u ON u.id = d.user_id `+tail, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing donations: %w", err)
	}
	defer rows.Close()

	donations := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning donation: %w", err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating donations: %w", err)
	}

	return donations, nil
}

// Update overwrites title, description, category and images; a full-field
// overwrite, matching the PUT semantics of the API.
func (db *DonationRepo) Update(ctx context.Context, d *model.Donation) error {
	images, err := encodeImages(d.Images)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE donations SET title = ?, description = ?, category = ?, images = ?
		 WHERE id = ?`,
		d.Title, d.Description, d.Category, images, d.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating donation %s: %w", d.ID, err)
	}
	return requireRow(res, "donacion", d.ID)
}

// SetState flips the donation between Activo and Inactivo.
func (db *DonationRepo) SetState(ctx context.Context, id, state string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE donations SET state = ? WHERE id = ?`, state, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting donation %s state: %w", id, err)
	}
	return requireRow(res, "donacion", id)
}

// Delete removes a donation. Its requests are removed by the FK cascade.
func (db *DonationRepo) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting donation %s: %w", id, err)
	}
	return requireRow(res, "donacion", id)
}

// DeleteAll removes every donation (and, via cascade, every request).
// Maintenance primitive; the service layer gates it behind the admin.
func (db *DonationRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM donations`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting all donations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting deleted donations: %w", err)
	}
	return n, nil
}

// requireRow converts a zero-row exec result into a NotFound error.
func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
