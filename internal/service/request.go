package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/repository"
	"github.com/dmcervs/donatec/internal/validation"
)

// RequestService owns the request lifecycle: creation against an Activo
// donation, the pendiente→aprobada/rechazada transition (donation owner
// only), and the terminal hand-off that deletes the donation.
//
// Approving one request does not auto-reject its siblings; several
// approved requests may coexist until the owner marks one fulfilled.
type RequestService struct {
	requests  repository.RequestRepository
	donations repository.DonationRepository
	users     repository.UserRepository
	notifier  Notifier
	logger    *slog.Logger
}

func NewRequestService(
	requests repository.RequestRepository,
	donations repository.DonationRepository,
	users repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *RequestService {
	return &RequestService{
		requests:  requests,
		donations: donations,
		users:     users,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create files a request by the acting user for a donation.
//
// Checks, in order: input shape, donation exists, donation is Activo, the
// requester is not the owner, the requester exists. Name and email are
// denormalized from the user record at this moment. The duplicate-pair
// rule is the unique index's call, so two racing submissions still end as
// one row and one Conflict.
func (s *RequestService) Create(ctx context.Context, donationID, actingUserID, justification, phone string) (*model.Request, error) {
	justification = strings.TrimSpace(justification)
	if err := validation.ValidateJustification(justification); err != nil {
		return nil, apperror.ValidationFailed("descripcion", err.Error())
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, apperror.ValidationFailed("telefono", err.Error())
	}

	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !donation.IsActive() {
		return nil, apperror.ValidationFailed("estado", "la donación no está activa")
	}
	if donation.UserID == actingUserID {
		return nil, apperror.Forbidden("no puedes solicitar tu propia donación")
	}

	user, err := s.users.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	request := &model.Request{
		DonationID:     donationID,
		UserID:         user.ID,
		RequesterName:  user.Name,
		RequesterEmail: user.Email,
		Justification:  justification,
		Phone:          phone,
		State:          model.RequestPending,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("request created",
		slog.String("id", request.ID),
		slog.String("donation", donationID),
		slog.String("requester", user.ID),
	)

	s.notifyOwner(ctx, donation, user.Name)

	return request, nil
}

// ListForDonation returns the requests targeting a donation.
func (s *RequestService) ListForDonation(ctx context.Context, donationID string) ([]model.Request, error) {
	if donationID = strings.TrimSpace(donationID); donationID == "" {
		return nil, apperror.ValidationFailed("donacion", "el id de la donación es obligatorio")
	}
	list, err := s.requests.ListForDonation(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("service/request: listing requests for donation %s: %w", donationID, err)
	}
	return list, nil
}

// ListForUser returns a user's requests with their donations joined in.
func (s *RequestService) ListForUser(ctx context.Context, userID string) ([]model.Request, error) {
	if userID = strings.TrimSpace(userID); userID == "" {
		return nil, apperror.ValidationFailed("usuario", "el id de usuario es obligatorio")
	}
	list, err := s.requests.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/request: listing requests for user %s: %w", userID, err)
	}
	return list, nil
}

// SetState transitions a request from pendiente to aprobada or rechazada.
// Only the owner of the referenced donation may do this, and only while
// the request is still pendiente. The requester is notified best-effort.
func (s *RequestService) SetState(ctx context.Context, requestID, actingUserID, newState string) (*model.Request, error) {
	if newState != model.RequestApproved && newState != model.RequestRejected {
		return nil, apperror.ValidationFailed("estado",
			fmt.Sprintf("estado inválido: %q (se admite %s o %s)", newState, model.RequestApproved, model.RequestRejected))
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	donation, err := s.donations.GetByID(ctx, request.DonationID)
	if err != nil {
		return nil, err
	}
	if donation.UserID == "" || donation.UserID != actingUserID {
		return nil, apperror.Forbidden("solo el dueño de la donación puede resolver solicitudes")
	}

	if request.State != model.RequestPending {
		return nil, apperror.Conflict("la solicitud ya fue resuelta")
	}

	if err := s.requests.SetState(ctx, requestID, newState); err != nil {
		return nil, fmt.Errorf("service/request: setting request %s state: %w", requestID, err)
	}
	request.State = newState

	s.logger.Info("request resolved",
		slog.String("id", requestID),
		slog.String("state", newState),
	)

	s.notifier.SendRequestDecision(request.RequesterEmail, request.RequesterName, donation.Title, newState)

	return request, nil
}

// MarkFulfilled closes the loop after a confirmed hand-off: the donation
// owner declares the approved request delivered and the donation is
// deleted, taking its remaining requests with it through the cascade.
// Irreversible; there is no undo path.
func (s *RequestService) MarkFulfilled(ctx context.Context, donationID, requestID, actingUserID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.DonationID != donationID {
		return apperror.NotFound("solicitud", requestID)
	}

	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return err
	}
	if donation.UserID == "" || donation.UserID != actingUserID {
		return apperror.Forbidden("solo el dueño de la donación puede marcar la entrega")
	}

	if request.State != model.RequestApproved {
		return apperror.Conflict("solo una solicitud aprobada puede marcarse como entregada")
	}

	if err := s.donations.Delete(ctx, donationID); err != nil {
		return fmt.Errorf("service/request: deleting fulfilled donation %s: %w", donationID, err)
	}

	s.logger.Info("donation fulfilled",
		slog.String("donation", donationID),
		slog.String("request", requestID),
	)
	return nil
}

// MarkFulfilledByRequest is MarkFulfilled with the donation resolved from
// the request record; the delivery endpoint only carries the request id.
func (s *RequestService) MarkFulfilledByRequest(ctx context.Context, requestID, actingUserID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	return s.MarkFulfilled(ctx, request.DonationID, requestID, actingUserID)
}

// notifyOwner emails the donation owner about a new request. Failures to
// even resolve the owner are logged and dropped; the request stands.
func (s *RequestService) notifyOwner(ctx context.Context, donation *model.Donation, requesterName string) {
	if donation.UserID == "" {
		return
	}
	owner, err := s.users.GetByID(ctx, donation.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("resolving donation owner for notification",
				slog.String("donation", donation.ID),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	s.notifier.SendRequestReceived(owner.Email, owner.Name, donation.Title, requesterName)
}
