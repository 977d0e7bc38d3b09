// Package activity appends and reads the dashboard activity feed.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cattletrack-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Log appends one event. Feed writes must never fail the caller's
// operation, so errors are logged and swallowed.
func Log(ctx context.Context, db *gorm.DB, userID uuid.UUID, eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("activity payload marshal failed")
		return
	}
	event := models.ActivityEvent{
		UserID:    userID,
		EventType: eventType,
		EventData: data,
	}
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("activity event write failed")
	}
}

// Recent returns the newest events for the feed.
func Recent(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]models.ActivityEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	var events []models.ActivityEvent
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// TimeAgo humanizes an event timestamp for the feed.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
