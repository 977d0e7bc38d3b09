package expenses

import "errors"

var (
	ErrFieldsRequired = errors.New("Date, category and amount are required")
	ErrInvalidAmount  = errors.New("Amount must be positive")
	ErrInvalidDate    = errors.New("Invalid date")
)
