package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity event types written by the mutating services and read by the
// dashboard recent-activity feed.
const (
	EventMilkRecorded   = "MILK_RECORDED"
	EventExpenseAdded   = "EXPENSE_ADDED"
	EventCattleAdded    = "CATTLE_ADDED"
	EventFeedUsed       = "FEED_USED"
	EventStockRestocked = "STOCK_RESTOCKED"
)

// ActivityEvent is an append-only feed of notable farm actions. EventData
// carries a type-specific JSON payload (cattle name, liters, amount, ...).
type ActivityEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}

func (a *ActivityEvent) BeforeCreate(tx *gorm.DB) error {
	if a.EventID == uuid.Nil {
		a.EventID = uuid.New()
	}
	return nil
}
