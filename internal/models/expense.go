package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is a farm-wide cost entry, not scoped to a single animal.
type Expense struct {
	ExpenseID   uuid.UUID `gorm:"column:expense_id;type:uuid;primaryKey" json:"expense_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Date        time.Time `gorm:"column:date;type:date;not null;index" json:"date"`
	Category    string    `gorm:"column:category;not null" json:"category"`
	Description string    `gorm:"column:description" json:"description"`
	Amount      float64   `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ExpenseID == uuid.Nil {
		e.ExpenseID = uuid.New()
	}
	return nil
}
