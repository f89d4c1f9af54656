package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/auth"
	"github.com/dmcervs/donatec/internal/model"
	"github.com/dmcervs/donatec/internal/service"
	"github.com/dmcervs/donatec/internal/validation"
)

// oauthProvider is what the handler needs from the Google integration:
// build the authorization URL and turn a callback code into a profile.
type oauthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

// AuthHandler serves registration, local login and the Google OAuth flow.
type AuthHandler struct {
	auth        *service.AuthService
	provider    oauthProvider
	frontendURL string
	logger      *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, provider oauthProvider, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:        authSvc,
		provider:    provider,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type authResponse struct {
	Token string        `json:"token"`
	User  model.Summary `json:"usuario"`
}

// HandleRegister creates a local account.
//
// POST /auth/register, multipart form: nombre, correo, password and the
// imagen file. The parse limit leaves headroom over the image cap so an
// oversized upload gets the image validation message, not a parse error.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(validation.MaxImageBytes + 1<<20); err != nil {
		writeError(w, apperror.ValidationFailed("body", "formulario multipart inválido"))
		return
	}

	var imageBytes []byte
	file, _, err := r.FormFile("imagen")
	if err == nil {
		defer file.Close()
		imageBytes, err = io.ReadAll(io.LimitReader(file, validation.MaxImageBytes+1))
		if err != nil {
			writeError(w, apperror.ValidationFailed("imagen", "no se pudo leer la imagen"))
			return
		}
	}

	user, err := h.auth.Register(
		r.Context(),
		r.FormValue("nombre"),
		r.FormValue("correo"),
		r.FormValue("password"),
		imageBytes,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]model.Summary{"usuario": user.Summary()})
}

// HandleLogin authenticates a local account.
//
// POST /auth/login, JSON {correo, password}.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"correo"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User.Summary()})
}

// HandleMe returns the authenticated user's profile.
//
// GET /auth/me, Bearer token.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("se requiere autenticación"))
		return
	}

	user, err := h.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.Summary{"usuario": user.Summary()})
}

// HandleGoogleLogin starts the OAuth flow.
//
// GET /auth/google. A random state value goes into a short-lived HttpOnly
// cookie and rides along to Google; the callback checks they match.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow.
//
// GET /auth/google/callback?code=xxx&state=yyy. Whatever happens, the
// browser ends up back on the frontend login page; failures carry a short
// error code in the query string.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	redirect := func(result *service.AuthResult, err error) {
		http.Redirect(w, r, service.CallbackRedirect(h.frontendURL, result, err), http.StatusSeeOther)
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		redirect(nil, apperror.Unauthorized("estado OAuth inválido"))
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: provider returned error", slog.String("error", errParam))
		redirect(nil, apperror.Unauthorized("autorización denegada"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirect(nil, apperror.Unauthorized("falta el código OAuth"))
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: code exchange failed", slog.String("error", err.Error()))
		redirect(nil, apperror.Unauthorized("el intercambio OAuth falló"))
		return
	}

	result, err := h.auth.FederatedLogin(r.Context(), profile)
	if err != nil {
		h.logger.Warn("oauth callback: federated login rejected", slog.String("error", err.Error()))
		redirect(nil, err)
		return
	}

	redirect(result, nil)
}

// HandleGoogleToken turns the token a client picked out of the redirect
// URL into a session payload.
//
// POST /auth/google/token, JSON {token}.
func (h *AuthHandler) HandleGoogleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Token == "" {
		writeError(w, apperror.ValidationFailed("token", "el token es obligatorio"))
		return
	}

	result, err := h.auth.ExchangeToken(r.Context(), body.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User.Summary()})
}
