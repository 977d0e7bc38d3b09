package auth

import (
	"context"
	"strings"

	"cattletrack-backend/internal/emails"
	"cattletrack-backend/internal/models"
	"cattletrack-backend/internal/pkg/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service implements registration, verification and login.
type Service struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Mailer emails.Sender
}

// RegisterInput for the register request body.
type RegisterInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput for the login request body. Identifier is an email address
// or a phone number.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Register validates input, hashes the password and creates the user
// with email_verified=false. The account becomes usable after the
// registration code is verified.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)

	if input.FullName == "" || input.Phone == "" || input.Email == "" || input.Password == "" {
		return nil, ErrFieldsRequired
	}
	if !validation.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPhone(input.Phone) {
		return nil, ErrInvalidPhone
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := models.User{
		FullName:     input.FullName,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Login finds the user by email or phone and verifies the password.
// The same error covers unknown identifier and wrong password.
func (s *Service) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	input.Identifier = strings.TrimSpace(input.Identifier)
	if input.Identifier == "" || input.Password == "" {
		return nil, ErrFieldsRequired
	}

	q := s.DB.WithContext(ctx)
	var u models.User
	var err error
	if strings.Contains(input.Identifier, "@") {
		err = q.Where("email = ?", strings.ToLower(input.Identifier)).First(&u).Error
	} else {
		err = q.Where("phone = ?", input.Identifier).First(&u).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return &u, nil
}

// SendCode issues an OTP for the purpose and emails it. For the reset
// purpose the account must exist; for registration any address is
// accepted so the register+verify flow can run in either order.
func (s *Service) SendCode(ctx context.Context, email, purpose string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrFieldsRequired
	}
	if !validation.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	switch purpose {
	case emails.PurposeRegistration, emails.PurposeReset, emails.PurposePasswordChange, emails.PurposeEmailChange:
	default:
		return ErrUnknownPurpose
	}

	if purpose == emails.PurposeReset {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}
	}

	store := &OTPStore{Rdb: s.Rdb}
	code, err := store.Issue(ctx, purpose, email)
	if err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}
	return s.Mailer.SendOTP(ctx, email, code, purpose)
}

// VerifyCode consumes the OTP. Registration marks the account verified;
// reset additionally sets the new password.
func (s *Service) VerifyCode(ctx context.Context, email, purpose, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return ErrFieldsRequired
	}

	store := &OTPStore{Rdb: s.Rdb}
	if err := store.Verify(ctx, purpose, email, code); err != nil {
		return err
	}

	switch purpose {
	case emails.PurposeRegistration:
		return s.DB.WithContext(ctx).Model(&models.User{}).
			Where("email = ?", email).
			Update("email_verified", true).Error
	case emails.PurposeReset:
		if newPassword == "" {
			return ErrNewPasswordRequired
		}
		if !validation.IsValidPassword(newPassword) {
			return ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
		if err != nil {
			return err
		}
		return s.DB.WithContext(ctx).Model(&models.User{}).
			Where("email = ?", email).
			Update("password_hash", string(hash)).Error
	}
	return nil
}

// VerifyUser validates the session user map and returns the /me shape.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		FullName: str(m["full_name"]),
		Email:    str(m["email"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
