package milk

import "errors"

var (
	ErrCattleRequired   = errors.New("cattle_id and date are required")
	ErrCattleNotFound   = errors.New("Cattle not found")
	ErrRecordNotFound   = errors.New("Milk record not found")
	ErrNegativeLiters   = errors.New("Liters and rate must not be negative")
	ErrInvalidDate      = errors.New("Invalid date")
	ErrInvalidDateRange = errors.New("Invalid date range")
	ErrInvalidFormat    = errors.New("format must be csv or pdf")
)
