package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
)

// In-memory fakes for the repository interfaces. They reproduce the two
// storage-level rules the services lean on: the unique email index and the
// unique (donation, user) pair index.

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict(fmt.Sprintf("el correo %s ya está registrado", user.Email))
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("usuario", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("usuario", email)
}

func (m *mockUserRepo) SetGoogleID(_ context.Context, userID, googleID string) error {
	if u, ok := m.users[userID]; ok && u.GoogleID == "" {
		u.GoogleID = googleID
	}
	return nil
}

type mockDonationRepo struct {
	donations map[string]*model.Donation
	nextID    int
}

func newMockDonationRepo() *mockDonationRepo {
	return &mockDonationRepo{donations: make(map[string]*model.Donation)}
}

func (m *mockDonationRepo) Create(_ context.Context, d *model.Donation) error {
	m.nextID++
	d.ID = fmt.Sprintf("don-%d", m.nextID)
	d.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	if d.State == "" {
		d.State = model.DonationActive
	}
	stored := *d
	m.donations[d.ID] = &stored
	return nil
}

func (m *mockDonationRepo) GetByID(_ context.Context, id string) (*model.Donation, error) {
	d, ok := m.donations[id]
	if !ok {
		return nil, apperror.NotFound("donacion", id)
	}
	result := *d
	return &result, nil
}

func (m *mockDonationRepo) ListActive(_ context.Context) ([]model.Donation, error) {
	list := []model.Donation{}
	for _, d := range m.donations {
		if d.State == model.DonationActive {
			list = append(list, *d)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *mockDonationRepo) ListByOwner(_ context.Context, userID string) ([]model.Donation, error) {
	list := []model.Donation{}
	for _, d := range m.donations {
		if d.UserID == userID {
			list = append(list, *d)
		}
	}
	return list, nil
}

func (m *mockDonationRepo) Update(_ context.Context, d *model.Donation) error {
	if _, ok := m.donations[d.ID]; !ok {
		return apperror.NotFound("donacion", d.ID)
	}
	stored := *d
	m.donations[d.ID] = &stored
	return nil
}

func (m *mockDonationRepo) SetState(_ context.Context, id, state string) error {
	d, ok := m.donations[id]
	if !ok {
		return apperror.NotFound("donacion", id)
	}
	d.State = state
	return nil
}

func (m *mockDonationRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.donations[id]; !ok {
		return apperror.NotFound("donacion", id)
	}
	delete(m.donations, id)
	return nil
}

func (m *mockDonationRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.donations))
	m.donations = make(map[string]*model.Donation)
	return n, nil
}

type mockRequestRepo struct {
	requests map[string]*model.Request
	nextID   int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.Request)}
}

func (m *mockRequestRepo) Create(_ context.Context, r *model.Request) error {
	for _, existing := range m.requests {
		if existing.DonationID == r.DonationID && existing.UserID == r.UserID {
			return apperror.Conflict("ya existe una solicitud tuya para esta donación")
		}
	}
	m.nextID++
	r.ID = fmt.Sprintf("req-%d", m.nextID)
	r.CreatedAt = time.Now()
	if r.State == "" {
		r.State = model.RequestPending
	}
	stored := *r
	m.requests[r.ID] = &stored
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, apperror.NotFound("solicitud", id)
	}
	result := *r
	return &result, nil
}

func (m *mockRequestRepo) ListForDonation(_ context.Context, donationID string) ([]model.Request, error) {
	list := []model.Request{}
	for _, r := range m.requests {
		if r.DonationID == donationID {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (m *mockRequestRepo) ListForUser(_ context.Context, userID string) ([]model.Request, error) {
	list := []model.Request{}
	for _, r := range m.requests {
		if r.UserID == userID {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (m *mockRequestRepo) SetState(_ context.Context, id, state string) error {
	r, ok := m.requests[id]
	if !ok {
		return apperror.NotFound("solicitud", id)
	}
	r.State = state
	return nil
}

// recordingNotifier captures notification calls so tests can assert what
// was (or was not) sent.
type recordingNotifier struct {
	mu        sync.Mutex
	welcomes  []string // recipient emails
	received  []string // "ownerEmail|donationTitle"
	decisions []string // "requesterEmail|state"
}

func (n *recordingNotifier) SendWelcome(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
}

func (n *recordingNotifier) SendRequestReceived(ownerEmail, _, donationTitle, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, ownerEmail+"|"+donationTitle)
}

func (n *recordingNotifier) SendRequestDecision(requesterEmail, _, _, state string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, requesterEmail+"|"+state)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
