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

// RequestRepo implements repository.RequestRepository. Obtain one via
// DB.Requests.
type RequestRepo struct {
	conn *sql.DB
}

var _ repository.RequestRepository = (*RequestRepo)(nil)

// Create inserts a new request in the pendiente state.
//
// The UNIQUE(donation_id, user_id) index turns a second request by the
// same user for the same donation into apperror.ErrConflict; no
// check-then-insert window.
func (db *RequestRepo) Create(ctx context.Context, r *model.Request) error {
	r.ID = xid.New().String()
	r.CreatedAt = time.Now()
	if r.State == "" {
		r.State = model.RequestPending
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO requests (id, donation_id, user_id, requester_name, requester_email,
		                       justification, phone, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DonationID, r.UserID, r.RequesterName, r.RequesterEmail,
		r.Justification, r.Phone, r.State, r.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("ya existe una solicitud tuya para esta donación")
		}
		return fmt.Errorf("sqlite: inserting request (donation=%s, user=%s): %w",
			r.DonationID, r.UserID, err)
	}

	return nil
}

const requestColumns = `r.id, r.donation_id, r.user_id, r.requester_name,
	r.requester_email, r.justification, r.phone, r.state, r.created_at`

func scanRequest(row interface{ Scan(...any) error }) (*model.Request, error) {
	var r model.Request
	err := row.Scan(
		&r.ID,
		&r.DonationID,
		&r.UserID,
		&r.RequesterName,
		&r.RequesterEmail,
		&r.Justification,
		&r.Phone,
		&r.State,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByID retrieves a single request.
func (db *RequestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests r WHERE r.id = ?`, id,
	)

	r, err := scanRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("solicitud", id)
		}
		return nil, fmt.Errorf("sqlite: getting request %s: %w", id, err)
	}
	return r, nil
}

// ListForDonation returns all requests targeting a donation, oldest first,
// so the owner reads them in arrival order. Requester name/email are the
// denormalized copies taken at creation.
func (db *RequestRepo) ListForDonation(ctx context.Context, donationID string) ([]model.Request, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests r
		 WHERE r.donation_id = ? ORDER BY r.created_at ASC`, donationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing requests for donation %s: %w", donationID, err)
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating requests: %w", err)
	}

	return requests, nil
}

// ListForUser returns a user's requests, newest first, with each target
// donation joined in for the frontend's "my requests" view.
func (db *RequestRepo) ListForUser(ctx context.Context, userID string) ([]model.Request, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+requestColumns+`, `+donationColumns+`
		 FROM requests r
		 JOIN donations d ON d.id = r.donation_id
		 LEFT JOIN users u ON u.id = d.user_id
		 WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing requests for user %s: %w", userID, err)
	}
	defer rows.Close()

	requests := []model.Request{}
	for rows.Next() {
		var r model.Request
		var d model.Donation
		var images string
		err := rows.Scan(
			&r.ID, &r.DonationID, &r.UserID, &r.RequesterName, &r.RequesterEmail,
			&r.Justification, &r.Phone, &r.State, &r.CreatedAt,
			&d.ID, &d.Title, &d.Description, &d.Category, &images,
			&d.UserID, &d.OwnerName, &d.State, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning request with donation: %w", err)
		}
		if d.Images, err = decodeImages(images); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		r.Donation = &d
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating requests: %w", err)
	}

	return requests, nil
}

// SetState transitions a request. Validity of the transition (owner-only,
// pendiente-only) is the service's job; this is the raw write.
func (db *RequestRepo) SetState(ctx context.Context, id, state string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE requests SET state = ? WHERE id = ?`, state, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting request %s state: %w", id, err)
	}
	return requireRow(res, "solicitud", id)
}
