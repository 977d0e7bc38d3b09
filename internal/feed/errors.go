package feed

import (
	"errors"
	"fmt"
)

var (
	ErrNameRequired      = errors.New("feed_name is required")
	ErrNegativeQuantity  = errors.New("Quantities must not be negative")
	ErrZeroUsage         = errors.New("quantity_used must be positive")
	ErrStockNotFound     = errors.New("Feed stock not found")
	ErrUsageNotFound     = errors.New("Feed usage not found")
	ErrCattleNotFound    = errors.New("Cattle not found")
	ErrInsufficientStock = errors.New("Insufficient stock")
	ErrInvalidDate       = errors.New("Invalid date")
)

// InsufficientStockError reports a rejected consumption together with the
// quantity still on hand, so the client can show what is left.
type InsufficientStockError struct {
	Available float64
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock: only %.2f kg available", e.Available)
}

func (e InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
