package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Health status values driving the dashboard alert count. Anything outside
// Good/Excellent counts as an alert.
const (
	HealthGood           = "Good"
	HealthExcellent      = "Excellent"
	HealthFair           = "Fair"
	HealthPoor           = "Poor"
	HealthUnderTreatment = "Under Treatment"
)

// ValidHealthStatuses is the closed set accepted on create/update.
var ValidHealthStatuses = []string{HealthGood, HealthExcellent, HealthFair, HealthPoor, HealthUnderTreatment}

func IsValidHealthStatus(s string) bool {
	for _, v := range ValidHealthStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Cattle is one animal in the farm registry. Milk, feed and health history
// reference it but are never cascade-deleted; records outlive the animal for audit.
type Cattle struct {
	CattleID     uuid.UUID `gorm:"column:cattle_id;type:uuid;primaryKey" json:"cattle_id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	TagNo        string    `gorm:"column:tag_no" json:"tag_no"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Breed        string    `gorm:"column:breed;not null" json:"breed"`
	Age          int       `gorm:"column:age;not null" json:"age"`
	Gender       string    `gorm:"column:gender;type:varchar(10)" json:"gender"`
	HealthStatus string    `gorm:"column:health_status;type:varchar(20);not null;default:'Good'" json:"health_status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Cattle) TableName() string {
	return "cattle"
}

func (c *Cattle) BeforeCreate(tx *gorm.DB) error {
	if c.CattleID == uuid.Nil {
		c.CattleID = uuid.New()
	}
	return nil
}
