package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MilkRecord is one milking entry. The schema does not enforce one row per
// cattle per day; aggregation sums rows that land on the same date.
// MilkLiters and Income are derived server-side on every write
// (milk = morning + evening, income = milk * rate).
type MilkRecord struct {
	RecordID      uuid.UUID `gorm:"column:record_id;type:uuid;primaryKey" json:"record_id"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CattleID      uuid.UUID `gorm:"column:cattle_id;type:uuid;not null;index" json:"cattle_id"`
	Date          time.Time `gorm:"column:date;type:date;not null;index" json:"date"`
	MorningLiters float64   `gorm:"column:morning_liters;type:decimal(10,2);not null;default:0" json:"morning_liters"`
	EveningLiters float64   `gorm:"column:evening_liters;type:decimal(10,2);not null;default:0" json:"evening_liters"`
	MilkLiters    float64   `gorm:"column:milk_liters;type:decimal(10,2);not null;default:0" json:"milk_liters"`
	Rate          float64   `gorm:"column:rate;type:decimal(10,2);not null;default:0" json:"rate"`
	Income        float64   `gorm:"column:income;type:decimal(12,2);not null;default:0" json:"income"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (MilkRecord) TableName() string {
	return "milk_records"
}

func (m *MilkRecord) BeforeCreate(tx *gorm.DB) error {
	if m.RecordID == uuid.Nil {
		m.RecordID = uuid.New()
	}
	return nil
}
