package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/geo"
	"github.com/laudier3/urlcurt/internal/messaging"
	"github.com/laudier3/urlcurt/internal/notify"
	"github.com/laudier3/urlcurt/internal/user"
	"go.uber.org/zap"
)

// AuthHandler handles registration, login and account operations.
type AuthHandler struct {
	users           user.Repository
	tokens          *auth.TokenService
	notifier        notify.Notifier
	geo             geo.Lookup
	publishRegister messaging.Publish[notify.UserRegisteredEvent]
	frontendBaseURL string
	secureCookies   bool
	logger          *zap.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(
	users user.Repository,
	tokens *auth.TokenService,
	notifier notify.Notifier,
	lookup geo.Lookup,
	publishRegister messaging.Publish[notify.UserRegisteredEvent],
	frontendBaseURL string,
	secureCookies bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:           users,
		tokens:          tokens,
		notifier:        notifier,
		geo:             lookup,
		publishRegister: publishRegister,
		frontendBaseURL: frontendBaseURL,
		secureCookies:   secureCookies,
		logger:          logger,
	}
}

func (h *AuthHandler) authCookie(token string, maxAge time.Duration) http.Cookie {
	return http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) clearedCookie() http.Cookie {
	return http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// Register creates an account and logs the user in.
func (h *AuthHandler) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	hash, err := auth.HashPassword(req.Body.Password)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create account")
	}

	u := &user.User{
		Name:         req.Body.Name,
		Email:        req.Body.Email,
		PasswordHash: hash,
		Phone:        req.Body.Phone,
		Age:          req.Body.Age,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Save(ctx, u); err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return nil, huma.Error409Conflict("a user with this email already exists")
		case errors.Is(err, user.ErrPhoneTaken):
			return nil, huma.Error409Conflict("this phone number is already in use")
		default:
			return nil, huma.Error500InternalServerError("failed to create account")
		}
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to issue token")
	}

	event := &notify.UserRegisteredEvent{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		RegisteredAt: u.CreatedAt,
	}
	if err := h.publishRegister(event); err != nil {
		h.logger.Error("failed to publish registration event",
			zap.Int64("user_id", u.ID),
			zap.Error(err),
		)
	}

	resp := &RegisterResponse{SetCookie: h.authCookie(token, h.tokens.TTL())}
	resp.Body.Token = token

	return resp, nil
}

// Login authenticates a user and sets the HTTP-only auth cookie.
func (h *AuthHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := h.users.GetByEmail(ctx, req.Body.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, huma.Error401Unauthorized("incorrect email or password")
		}

		return nil, huma.Error500InternalServerError("login failed")
	}

	if !auth.CheckPassword(u.PasswordHash, req.Body.Password) {
		return nil, huma.Error401Unauthorized("incorrect email or password")
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to issue token")
	}

	resp := &LoginResponse{SetCookie: h.authCookie(token, h.tokens.TTL())}
	resp.Body.Token = token

	return resp, nil
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(context.Context, *struct{}) (*LogoutResponse, error) {
	return &LogoutResponse{SetCookie: h.clearedCookie()}, nil
}

// Me returns the authenticated caller's id and email.
func (h *AuthHandler) Me(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	u, err := h.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}

		return nil, huma.Error500InternalServerError("failed to load user")
	}

	resp := &MeResponse{}
	resp.Body.ID = u.ID
	resp.Body.Email = u.Email

	return resp, nil
}

// DeleteMe removes the caller's account, cascading to their URLs and visits.
func (h *AuthHandler) DeleteMe(ctx context.Context, _ *struct{}) (*DeleteMeResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	if err := h.users.Delete(ctx, identity.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}

		return nil, huma.Error500InternalServerError("failed to delete account")
	}

	resp := &DeleteMeResponse{SetCookie: h.clearedCookie()}
	resp.Body.Message = "account deleted"

	return resp, nil
}

// RecoverPassword sends a reset link to the user's phone by SMS.
func (h *AuthHandler) RecoverPassword(ctx context.Context, req *RecoverPasswordRequest) (*RecoverPasswordResponse, error) {
	u, err := h.users.GetByPhone(ctx, req.Body.Phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, huma.Error404NotFound("no user with this phone number")
		}

		return nil, huma.Error500InternalServerError("failed to look up user")
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to issue reset token")
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", h.frontendBaseURL, token)

	if err := h.notifier.SendSMS(ctx, u.Phone, "Click the link to reset your password: "+link); err != nil {
		h.logger.Error("failed to send recovery sms", zap.Int64("user_id", u.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to send recovery link")
	}

	resp := &RecoverPasswordResponse{}
	resp.Body.Message = "recovery link sent by sms"

	return resp, nil
}

// IPInfo reports the caller's location based on their IP.
func (h *AuthHandler) IPInfo(ctx context.Context, _ *struct{}) (*IPInfoResponse, error) {
	meta := RequestMetaFromContext(ctx)

	loc, err := h.geo.Locate(ctx, meta.ClientIP)
	if err != nil {
		return nil, huma.Error404NotFound("could not locate this ip")
	}

	resp := &IPInfoResponse{}
	resp.Body.IP = meta.ClientIP
	resp.Body.Country = loc.Country
	resp.Body.Region = loc.Region
	resp.Body.City = loc.City

	return resp, nil
}
