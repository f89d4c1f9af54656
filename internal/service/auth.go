// Package service contains the business logic layer: validation, ownership
// rules and orchestration. Handlers parse HTTP and delegate here; services
// talk to repositories and return domain errors from internal/apperror.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/auth"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/repository"
	"github.com/dmcervs/donatec/internal/validation"
)

// ErrDomainRejected marks a federated login whose Google account lies
// outside the institutional domain. It is kept distinct from generic auth
// failures so the OAuth callback can redirect with its own error code.
var ErrDomainRejected = errors.New("service/auth: email outside institutional domain")

// AuthService owns registration, local login, Google federated login and
// token verification.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	notifier  Notifier
	domain    string
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	notifier Notifier,
	domain string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		notifier:  notifier,
		domain:    domain,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a local account.
//
// Validation order matters for the API contract: an off-domain email is a
// validation error regardless of how good the password is. imageBytes is
// the raw upload; it is stored base64-encoded.
//
// The welcome email is best-effort; registration already succeeded by the
// time it is queued.
func (s *AuthService) Register(ctx context.Context, name, email, password string, imageBytes []byte) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("nombre", "el nombre es obligatorio")
	}

	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email, s.domain); err != nil {
		return nil, apperror.ValidationFailed("correo", err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}
	if err := validation.ValidateImage(imageBytes); err != nil {
		return nil, apperror.ValidationFailed("imagen", err.Error())
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Image:        base64.StdEncoding.EncodeToString(imageBytes),
	}

	// The unique index decides the duplicate-email race; a conflict comes
	// back as apperror.ErrConflict and is returned as-is.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	s.notifier.SendWelcome(user.Email, user.Name)

	return user, nil
}

// Login authenticates a local account and issues a 24-hour token.
//
// Every failure path returns the same Unauthorized error so a caller
// cannot probe which addresses are registered. Accounts provisioned by
// Google sign-in carry no usable password and always fail here.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperror.Unauthorized("credenciales inválidas")

	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email, s.domain); err != nil {
		return nil, invalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if !user.HasUsablePassword() {
		return nil, invalid
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, invalid
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// FederatedLogin resolves a Google profile into a local session.
//
// Off-domain accounts are rejected with ErrDomainRejected before any
// record is touched: federated login never provisions a user outside the
// institutional domain. For an in-domain profile: an existing account gets
// the Google identity attached (idempotent) and a token; an unknown email
// gets a fresh account with no usable password.
func (s *AuthService) FederatedLogin(ctx context.Context, profile *auth.GoogleProfile) (*AuthResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/auth: profile must not be nil")
	}

	email := validation.NormalizeEmail(profile.Email)
	if err := validation.ValidateEmail(email, s.domain); err != nil {
		return nil, ErrDomainRejected
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.users.SetGoogleID(ctx, user.ID, profile.ID); err != nil {
				return nil, fmt.Errorf("service/auth: linking google identity: %w", err)
			}
			user.GoogleID = profile.ID
		}

	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Name:         profile.Name,
			Email:        email,
			PasswordHash: model.NoPasswordMarker,
			GoogleID:     profile.ID,
			Image:        profile.Picture,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				// Lost a provisioning race; the account now exists.
				return s.FederatedLogin(ctx, profile)
			}
			return nil, fmt.Errorf("service/auth: provisioning user %s: %w", email, err)
		}
		s.notifier.SendWelcome(user.Email, user.Name)

	default:
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via google", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// ExchangeToken re-validates a token a client received via redirect URL
// and returns it together with the safe user summary. The frontend's
// OAuth landing page calls this to turn a URL parameter into a session.
func (s *AuthService) ExchangeToken(ctx context.Context, tokenStr string) (*AuthResult, error) {
	claims, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return nil, apperror.Unauthorized("token inválido o expirado")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("token inválido o expirado")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", claims.UserID, err)
	}

	return &AuthResult{User: user, Token: tokenStr}, nil
}

// Me returns the account for verified claims; used by GET /auth/me.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("se requiere autenticación")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// OAuth callback error codes carried to the frontend in the redirect URL.
const (
	RedirectErrInvalidDomain = "invalid-domain"
	RedirectErrUnauthorized  = "unauthorized"
	RedirectErrServer        = "server"
)

// CallbackRedirect maps the outcome of the Google callback to the URL the
// browser is sent to. It is a pure function so the whole redirect decision
// is testable without a provider round trip. On success the token rides in
// ?token=; on failure only a short machine-readable code is exposed, never
// internal error detail.
func CallbackRedirect(frontendURL string, result *AuthResult, err error) string {
	base := strings.TrimRight(frontendURL, "/") + "/login"

	if err != nil {
		code := RedirectErrServer
		switch {
		case errors.Is(err, ErrDomainRejected):
			code = RedirectErrInvalidDomain
		case errors.Is(err, apperror.ErrUnauthorized):
			code = RedirectErrUnauthorized
		}
		return base + "?error=" + code
	}

	return base + "?token=" + url.QueryEscape(result.Token)
}
