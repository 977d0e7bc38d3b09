package auth

import (
	"context"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/models"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service  *Service
	Config   middleware.SessionConfig
	Verifier TokenVerifier
}

// Register POST /api/v1/auth/register: create the account, then the
// client requests a registration code via send-code.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Register(c.Context(), req)
	if err != nil {
		switch err {
		case ErrFieldsRequired, ErrInvalidEmail, ErrInvalidPhone, ErrWeakPassword:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrEmailTaken:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	return response.SuccessCreated(c, "Account created. Verify your email to continue.", fiber.Map{
		"user": fiber.Map{
			"user_id":   user.UserID.String(),
			"full_name": user.FullName,
			"email":     user.Email,
		},
	}, nil)
}

// SendCodeRequest body for POST /auth/send-code.
type SendCodeRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// SendCode POST /api/v1/auth/send-code: issue and email an OTP.
func (h *Handlers) SendCode(c *fiber.Ctx) error {
	var req SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	if err := h.Service.SendCode(c.Context(), req.Email, req.Purpose); err != nil {
		switch err {
		case ErrFieldsRequired, ErrInvalidEmail, ErrUnknownPurpose:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrAccountNotFound:
			return response.NotFound(c, err.Error())
		default:
			log.Error().Err(err).Str("purpose", req.Purpose).Msg("send-code failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Verification code sent", nil, nil)
}

// VerifyCodeRequest body for POST /auth/verify-code. NewPassword is
// required only for the reset purpose.
type VerifyCodeRequest struct {
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// VerifyCode POST /api/v1/auth/verify-code: consume the OTP.
func (h *Handlers) VerifyCode(c *fiber.Ctx) error {
	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	if err := h.Service.VerifyCode(c.Context(), req.Email, req.Purpose, req.Code, req.NewPassword); err != nil {
		switch err {
		case ErrFieldsRequired, ErrNewPasswordRequired, ErrWeakPassword:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidOTP:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Verification successful", nil, nil)
}

// Login POST /api/v1/auth/login: authenticate by email or phone,
// rotate the session, track it under user_sessions, set the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Login(c.Context(), req)
	if err != nil {
		switch err {
		case ErrFieldsRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidCredentials:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case ErrEmailNotVerified:
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if err := h.establishSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":   user.UserID.String(),
			"full_name": user.FullName,
			"email":     user.Email,
			"phone":     user.Phone,
		},
	}, nil)
}

// GoogleLoginRequest body for POST /auth/google.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// GoogleLogin POST /api/v1/auth/google: verify the ID token with
// Google, find or provision the account, then establish a session the
// same way Login does.
func (h *Handlers) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil || req.IDToken == "" {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	profile, err := h.Verifier.Verify(c.Context(), req.IDToken)
	if err != nil {
		return response.Error(c, ErrInvalidGoogleToken.Error(), fiber.StatusUnauthorized, nil)
	}

	user, err := h.Service.GoogleLogin(c.Context(), profile)
	if err != nil {
		if err == ErrInvalidGoogleToken {
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	if err := h.establishSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":   user.UserID.String(),
			"full_name": user.FullName,
			"email":     user.Email,
		},
	}, nil)
}

// establishSession rotates the session ID, stores the user in it,
// tracks it under user_sessions and sets the cookie.
func (h *Handlers) establishSession(c *fiber.Ctx, user *models.User) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		FullName: user.FullName,
		Email:    user.Email,
	})

	if err := h.Service.Rdb.SAdd(context.Background(), userSessionsPrefix+user.UserID.String(), sessionID).Err(); err != nil {
		return err
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me: current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: drop the session server-side and
// expire the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetUser(c)

	ctx := context.Background()
	if sessionUser != nil && sessionID != "" {
		if m, ok := sessionUser.(map[string]interface{}); ok {
			if userID, _ := m["user_id"].(string); userID != "" {
				_ = h.Service.Rdb.SRem(ctx, userSessionsPrefix+userID, sessionID).Err()
			}
		}
	}
	if sessionID != "" {
		_ = h.Service.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
