package users

import "errors"

var (
	ErrNothingToUpdate     = errors.New("Nothing to update")
	ErrInvalidFullName     = errors.New("Invalid full name")
	ErrInvalidPhone        = errors.New("Invalid phone number")
	ErrUserNotFound        = errors.New("User not found")
	ErrPasswordsRequired   = errors.New("Old and new passwords are required")
	ErrIncorrectPassword   = errors.New("Incorrect current password")
	ErrWeakPassword        = errors.New("Password must be at least 8 characters with a letter, a digit and a special character")
	ErrSamePassword        = errors.New("New password must differ from the current one")
)
