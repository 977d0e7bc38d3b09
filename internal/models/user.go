package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a farm account. Every other row in the schema hangs off user_id.
type User struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName      string    `gorm:"column:full_name;not null" json:"full_name"`
	Phone         string    `gorm:"column:phone;type:varchar(20);not null" json:"phone"`
	Email         string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"column:password_hash;not null" json:"-"`
	EmailVerified bool      `gorm:"column:email_verified;not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
