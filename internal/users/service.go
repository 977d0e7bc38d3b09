package users

import (
	"context"
	"strings"

	"cattletrack-backend/internal/models"
	"cattletrack-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service implements profile and password updates.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// UpdateProfileInput for PUT /users/profile. Empty fields are left
// unchanged.
type UpdateProfileInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// ChangePasswordInput for POST /users/change-password.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateProfile updates full name and/or phone and returns the fresh
// user for the session refresh.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.FullName == "" && input.Phone == "" {
		return nil, ErrNothingToUpdate
	}

	updates := map[string]interface{}{}
	if input.FullName != "" {
		if !validation.IsValidFullname(input.FullName) {
			return nil, ErrInvalidFullName
		}
		updates["full_name"] = input.FullName
	}
	if input.Phone != "" {
		if !validation.IsValidPhone(input.Phone) {
			return nil, ErrInvalidPhone
		}
		updates["phone"] = input.Phone
	}

	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if input.OldPassword == "" || input.NewPassword == "" {
		return ErrPasswordsRequired
	}
	if input.OldPassword == input.NewPassword {
		return ErrSamePassword
	}
	if !validation.IsValidPassword(input.NewPassword) {
		return ErrWeakPassword
	}

	var u models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.OldPassword)); err != nil {
		return ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&u).Update("password_hash", string(hash)).Error
}
