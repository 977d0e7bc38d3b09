package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedStock is a farm-wide pool of one feed type, unique per feed_name per
// user. Quantity is decremented by usage and incremented by restocks; the
// service layer guarantees it never goes below zero (conditional update).
type FeedStock struct {
	FeedID      uuid.UUID `gorm:"column:feed_id;type:uuid;primaryKey" json:"feed_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_feed_user_name,unique" json:"user_id"`
	FeedName    string    `gorm:"column:feed_name;not null;index:idx_feed_user_name,unique" json:"feed_name"`
	Quantity    float64   `gorm:"column:quantity;type:decimal(12,2);not null;default:0" json:"quantity"`
	MinQuantity float64   `gorm:"column:min_quantity;type:decimal(12,2);not null;default:0" json:"min_quantity"`
	CostPerKg   float64   `gorm:"column:cost_per_kg;type:decimal(10,2);not null;default:0" json:"cost_per_kg"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (FeedStock) TableName() string {
	return "feed_stock"
}

func (f *FeedStock) BeforeCreate(tx *gorm.DB) error {
	if f.FeedID == uuid.Nil {
		f.FeedID = uuid.New()
	}
	return nil
}

// FeedUsage records feed consumed on a date. A nil CattleID marks general-pool
// usage, split equally across the farm's current cattle when reporting.
type FeedUsage struct {
	UsageID      uuid.UUID  `gorm:"column:usage_id;type:uuid;primaryKey" json:"usage_id"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	FeedID       uuid.UUID  `gorm:"column:feed_id;type:uuid;not null;index" json:"feed_id"`
	CattleID     *uuid.UUID `gorm:"column:cattle_id;type:uuid;index" json:"cattle_id"`
	QuantityUsed float64    `gorm:"column:quantity_used;type:decimal(10,2);not null" json:"quantity_used"`
	UsageDate    time.Time  `gorm:"column:usage_date;type:date;not null;index" json:"usage_date"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (FeedUsage) TableName() string {
	return "feed_usage"
}

func (f *FeedUsage) BeforeCreate(tx *gorm.DB) error {
	if f.UsageID == uuid.Nil {
		f.UsageID = uuid.New()
	}
	return nil
}
