package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/repository"
)

const (
	MaxDonationTitleLength       = 100
	MaxDonationDescriptionLength = 1000
)

// DonationService owns the donation catalog: CRUD, the Activo/Inactivo
// toggle, and the ownership rules around every mutation. Only the owner
// recorded on a donation may update it, change its state, or delete it;
// the acting user id always comes from verified token claims.
type DonationService struct {
	donations  repository.DonationRepository
	adminEmail string
	logger     *slog.Logger
}

func NewDonationService(donations repository.DonationRepository, adminEmail string, logger *slog.Logger) *DonationService {
	return &DonationService{
		donations:  donations,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// DonationInput is the caller-supplied portion of a donation.
type DonationInput struct {
	Title       string
	Description string
	Category    string
	Images      []string // base64 payloads
}

func (in *DonationInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperror.ValidationFailed("nombre", "el nombre del artículo es obligatorio")
	}
	if len(in.Title) > MaxDonationTitleLength {
		return apperror.ValidationFailed("nombre",
			fmt.Sprintf("el nombre no debe exceder %d caracteres", MaxDonationTitleLength))
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return apperror.ValidationFailed("descripcion", "la descripción es obligatoria")
	}
	if len(in.Description) > MaxDonationDescriptionLength {
		return apperror.ValidationFailed("descripcion",
			fmt.Sprintf("la descripción no debe exceder %d caracteres", MaxDonationDescriptionLength))
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		return apperror.ValidationFailed("categoria", "la categoría es obligatoria")
	}
	if len(in.Images) > model.MaxDonationImages {
		return apperror.ValidationFailed("imagen",
			fmt.Sprintf("una donación admite máximo %d imágenes", model.MaxDonationImages))
	}
	return nil
}

// Create publishes a new donation owned by the acting user, in the Activo
// state. The image cap is enforced before anything is persisted.
func (s *DonationService) Create(ctx context.Context, actingUserID string, in DonationInput) (*model.Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	donation := &model.Donation{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Images:      in.Images,
		UserID:      actingUserID,
		State:       model.DonationActive,
	}

	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("service/donation: creating donation: %w", err)
	}

	s.logger.Info("donation created",
		slog.String("id", donation.ID),
		slog.String("owner", actingUserID),
		slog.String("title", donation.Title),
	)

	return donation, nil
}

// GetByID returns a donation with the owner name joined in.
func (s *DonationService) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	if id = strings.TrimSpace(id); id == "" {
		return nil, apperror.ValidationFailed("id", "el id de la donación es obligatorio")
	}
	return s.donations.GetByID(ctx, id)
}

// ListActive returns the public listing: Activo donations, newest first.
func (s *DonationService) ListActive(ctx context.Context) ([]model.Donation, error) {
	list, err := s.donations.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/donation: listing active donations: %w", err)
	}
	return list, nil
}

// ListByOwner returns a user's own donations, Inactivo included.
func (s *DonationService) ListByOwner(ctx context.Context, userID string) ([]model.Donation, error) {
	if userID = strings.TrimSpace(userID); userID == "" {
		return nil, apperror.ValidationFailed("usuario", "el id de usuario es obligatorio")
	}
	list, err := s.donations.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/donation: listing donations for user %s: %w", userID, err)
	}
	return list, nil
}

// Update overwrites the donation's editable fields. Full overwrite, not a
// patch; the PUT contract.
func (s *DonationService) Update(ctx context.Context, actingUserID, id string, in DonationInput) (*model.Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	donation, err := s.ownedDonation(ctx, actingUserID, id)
	if err != nil {
		return nil, err
	}

	donation.Title = in.Title
	donation.Description = in.Description
	donation.Category = in.Category
	donation.Images = in.Images

	if err := s.donations.Update(ctx, donation); err != nil {
		return nil, fmt.Errorf("service/donation: updating donation %s: %w", id, err)
	}

	s.logger.Info("donation updated", slog.String("id", id))
	return donation, nil
}

// SetState toggles a donation between Activo and Inactivo.
func (s *DonationService) SetState(ctx context.Context, actingUserID, id, state string) (*model.Donation, error) {
	if state != model.DonationActive && state != model.DonationInactive {
		return nil, apperror.ValidationFailed("estado",
			fmt.Sprintf("estado inválido: %q (se admite %s o %s)", state, model.DonationActive, model.DonationInactive))
	}

	donation, err := s.ownedDonation(ctx, actingUserID, id)
	if err != nil {
		return nil, err
	}

	if err := s.donations.SetState(ctx, id, state); err != nil {
		return nil, fmt.Errorf("service/donation: setting donation %s state: %w", id, err)
	}
	donation.State = state

	s.logger.Info("donation state changed",
		slog.String("id", id),
		slog.String("state", state),
	)
	return donation, nil
}

// Delete removes a donation and, through the storage cascade, every
// request that targeted it.
func (s *DonationService) Delete(ctx context.Context, actingUserID, id string) error {
	if _, err := s.ownedDonation(ctx, actingUserID, id); err != nil {
		return err
	}

	if err := s.donations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/donation: deleting donation %s: %w", id, err)
	}

	s.logger.Info("donation deleted", slog.String("id", id))
	return nil
}

// DeleteAll wipes the catalog. Maintenance primitive: only the configured
// admin account may run it, and with no admin configured it is disabled.
func (s *DonationService) DeleteAll(ctx context.Context, actingEmail string) (int64, error) {
	if s.adminEmail == "" || actingEmail != s.adminEmail {
		return 0, apperror.Forbidden("operación reservada al administrador")
	}

	n, err := s.donations.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/donation: deleting all donations: %w", err)
	}

	s.logger.Warn("all donations deleted",
		slog.String("admin", actingEmail),
		slog.Int64("count", n),
	)
	return n, nil
}

// ownedDonation fetches a donation and checks the acting user owns it.
// Listings without a recorded owner cannot be mutated by anyone.
func (s *DonationService) ownedDonation(ctx context.Context, actingUserID, id string) (*model.Donation, error) {
	donation, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.UserID == "" || donation.UserID != actingUserID {
		return nil, apperror.Forbidden("solo el dueño puede modificar la donación")
	}
	return donation, nil
}
