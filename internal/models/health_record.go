package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HealthRecord is one vet visit or treatment note. NextCheckup drives the
// upcoming-checkup alert (due within the next 7 days).
type HealthRecord struct {
	HealthID    uuid.UUID  `gorm:"column:health_id;type:uuid;primaryKey" json:"health_id"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CattleID    uuid.UUID  `gorm:"column:cattle_id;type:uuid;not null;index" json:"cattle_id"`
	Issue       string     `gorm:"column:issue;not null" json:"issue"`
	Treatment   string     `gorm:"column:treatment" json:"treatment"`
	VetName     string     `gorm:"column:vet_name" json:"vet_name"`
	NextCheckup *time.Time `gorm:"column:next_checkup;type:date" json:"next_checkup"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (HealthRecord) TableName() string {
	return "health_records"
}

func (h *HealthRecord) BeforeCreate(tx *gorm.DB) error {
	if h.HealthID == uuid.Nil {
		h.HealthID = uuid.New()
	}
	return nil
}
