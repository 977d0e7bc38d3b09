package auth

import "errors"

var (
	ErrFieldsRequired      = errors.New("All fields are required")
	ErrInvalidEmail        = errors.New("Invalid email address")
	ErrInvalidPhone        = errors.New("Invalid phone number")
	ErrWeakPassword        = errors.New("Password must be at least 8 characters with a letter, a digit and a special character")
	ErrEmailTaken          = errors.New("An account with this email already exists")
	ErrInvalidCredentials  = errors.New("Invalid email/phone or password")
	ErrEmailNotVerified    = errors.New("Email not verified")
	ErrAccountNotFound     = errors.New("No account found for this email")
	ErrInvalidOTP          = errors.New("Invalid or expired verification code")
	ErrUnknownPurpose      = errors.New("Unknown verification purpose")
	ErrNotAuthenticated    = errors.New("Not authenticated")
	ErrNewPasswordRequired = errors.New("New password is required")
	ErrInvalidGoogleToken  = errors.New("Invalid Google token")
)
