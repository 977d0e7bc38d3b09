package users

import (
	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for user endpoints.
type Handlers struct {
	Service *Service
	Config  middleware.SessionConfig
}

// UpdateProfile PUT /api/v1/users/profile: update name/phone and
// refresh the session user so /me reflects the change immediately.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrNothingToUpdate.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		switch err {
		case ErrNothingToUpdate, ErrInvalidFullName, ErrInvalidPhone:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrUserNotFound:
			return response.NotFound(c, err.Error())
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		FullName: user.FullName,
		Email:    user.Email,
	})

	return response.Success(c, "Profile updated", fiber.Map{
		"user": fiber.Map{
			"user_id":   user.UserID.String(),
			"full_name": user.FullName,
			"phone":     user.Phone,
			"email":     user.Email,
		},
	}, nil)
}

// ChangePassword POST /api/v1/users/change-password.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrPasswordsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	if err := h.Service.ChangePassword(c.Context(), userID, req); err != nil {
		switch err {
		case ErrPasswordsRequired, ErrWeakPassword, ErrSamePassword:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case ErrUserNotFound:
			return response.NotFound(c, err.Error())
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Password changed", nil, nil)
}
