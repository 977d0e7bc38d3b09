package feed

import (
	"context"
	"strings"
	"time"

	"cattletrack-backend/internal/activity"
	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service implements feed inventory and usage tracking. All stock
// mutations run inside a transaction with a conditional decrement so
// concurrent usage can never drive a stock negative.
type Service struct {
	DB *gorm.DB
}

const dateLayout = "2006-01-02"

// StockInput for POST /feed/stock. Quantity is added to any existing
// stock of the same name; min and cost replace the stored values.
type StockInput struct {
	FeedName    string  `json:"feed_name"`
	Quantity    float64 `json:"quantity"`
	MinQuantity float64 `json:"min_quantity"`
	CostPerKg   float64 `json:"cost_per_kg"`
}

// UsageInput for POST /feed/usage and PUT /feed/usage/:id. An empty
// CattleID records general-pool usage.
type UsageInput struct {
	FeedID       string  `json:"feed_id"`
	CattleID     string  `json:"cattle_id"`
	QuantityUsed float64 `json:"quantity_used"`
	UsageDate    string  `json:"usage_date"`
}

// InventoryItem is one row of GET /feed/inventory.
type InventoryItem struct {
	models.FeedStock
	AvgDailyUsage float64 `json:"avg_daily_usage"`
	WeeklyUsage   float64 `json:"weekly_usage"`
	StockPercent  float64 `json:"stock_percent"`
	DaysRemaining int     `json:"days_remaining"`
	IsLow         bool    `json:"is_low"`
}

// UsageRow is one row of GET /feed/usage with names joined in.
type UsageRow struct {
	models.FeedUsage
	FeedName   string `json:"feed_name"`
	CattleName string `json:"cattle_name"`
}

// StockValue is the GET /feed/stock-value split.
type StockValue struct {
	Total  float64 `json:"total"`
	Fodder float64 `json:"fodder"`
	Grain  float64 `json:"grain"`
	Other  float64 `json:"other"`
}

// fodder/grain buckets for the stock-value split, matched on name.
var (
	fodderNames = []string{"hay", "silage", "grass", "fodder", "straw", "lucerne", "alfalfa", "napier"}
	grainNames  = []string{"grain", "maize", "corn", "wheat", "barley", "bran", "dairy meal", "concentrate", "pellet"}
)

// UpsertStock creates the stock or tops it up. A restock on an existing
// item adds quantity and overwrites min_quantity and cost_per_kg when
// they are provided.
func (s *Service) UpsertStock(ctx context.Context, userID uuid.UUID, input StockInput) (*models.FeedStock, error) {
	input.FeedName = strings.TrimSpace(input.FeedName)
	if input.FeedName == "" {
		return nil, ErrNameRequired
	}
	if input.Quantity < 0 || input.MinQuantity < 0 || input.CostPerKg < 0 {
		return nil, ErrNegativeQuantity
	}

	var stock models.FeedStock
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND feed_name = ?", userID, input.FeedName).First(&stock).Error
		if err == gorm.ErrRecordNotFound {
			stock = models.FeedStock{
				UserID:      userID,
				FeedName:    input.FeedName,
				Quantity:    input.Quantity,
				MinQuantity: input.MinQuantity,
				CostPerKg:   input.CostPerKg,
			}
			return tx.Create(&stock).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", input.Quantity),
		}
		if input.MinQuantity > 0 {
			updates["min_quantity"] = input.MinQuantity
		}
		if input.CostPerKg > 0 {
			updates["cost_per_kg"] = input.CostPerKg
		}
		if err := tx.Model(&stock).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("feed_id = ?", stock.FeedID).First(&stock).Error
	})
	if err != nil {
		return nil, err
	}

	activity.Log(ctx, s.DB, userID, models.EventStockRestocked, map[string]interface{}{
		"feed_id":   stock.FeedID.String(),
		"feed_name": stock.FeedName,
		"added":     input.Quantity,
		"quantity":  stock.Quantity,
	})
	return &stock, nil
}

// decrementStock is the conditional update guarding every consumption:
// zero rows affected means the stock would go negative, and nothing is
// written.
func decrementStock(tx *gorm.DB, feedID uuid.UUID, qty float64) error {
	res := tx.Model(&models.FeedStock{}).
		Where("feed_id = ? AND quantity >= ?", feedID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var stock models.FeedStock
		if err := tx.Where("feed_id = ?", feedID).First(&stock).Error; err != nil {
			return ErrInsufficientStock
		}
		return InsufficientStockError{Available: stock.Quantity}
	}
	return nil
}

func restoreStock(tx *gorm.DB, feedID uuid.UUID, qty float64) error {
	return tx.Model(&models.FeedStock{}).
		Where("feed_id = ?", feedID).
		Update("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (s *Service) parseUsage(ctx context.Context, userID uuid.UUID, input UsageInput) (*models.FeedUsage, error) {
	if input.QuantityUsed <= 0 {
		return nil, ErrZeroUsage
	}
	feedID, err := uuid.Parse(input.FeedID)
	if err != nil {
		return nil, ErrStockNotFound
	}
	usageDate, err := time.Parse(dateLayout, input.UsageDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.FeedStock{}).
		Where("feed_id = ? AND user_id = ?", feedID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrStockNotFound
	}

	usage := &models.FeedUsage{
		UserID:       userID,
		FeedID:       feedID,
		QuantityUsed: input.QuantityUsed,
		UsageDate:    usageDate,
	}
	if input.CattleID != "" {
		cattleID, err := uuid.Parse(input.CattleID)
		if err != nil {
			return nil, ErrCattleNotFound
		}
		if err := s.DB.WithContext(ctx).Model(&models.Cattle{}).
			Where("cattle_id = ? AND user_id = ?", cattleID, userID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrCattleNotFound
		}
		usage.CattleID = &cattleID
	}
	return usage, nil
}

// AddUsage records consumption and decrements the stock atomically.
// On insufficient stock nothing is written.
func (s *Service) AddUsage(ctx context.Context, userID uuid.UUID, input UsageInput) (*models.FeedUsage, error) {
	usage, err := s.parseUsage(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, usage.FeedID, usage.QuantityUsed); err != nil {
			return err
		}
		return tx.Create(usage).Error
	})
	if err != nil {
		return nil, err
	}

	activity.Log(ctx, s.DB, userID, models.EventFeedUsed, map[string]interface{}{
		"usage_id": usage.UsageID.String(),
		"feed_id":  usage.FeedID.String(),
		"quantity": usage.QuantityUsed,
	})
	return usage, nil
}

// UpdateUsage restores the old quantity, conditionally decrements the
// new one and rewrites the row, all in one transaction. Moving the
// usage to another feed restores the original stock and charges the new.
func (s *Service) UpdateUsage(ctx context.Context, userID, usageID uuid.UUID, input UsageInput) (*models.FeedUsage, error) {
	var existing models.FeedUsage
	err := s.DB.WithContext(ctx).
		Where("usage_id = ? AND user_id = ?", usageID, userID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrUsageNotFound
	}
	if err != nil {
		return nil, err
	}

	if input.FeedID == "" {
		input.FeedID = existing.FeedID.String()
	}
	if input.UsageDate == "" {
		input.UsageDate = existing.UsageDate.Format(dateLayout)
	}
	updated, err := s.parseUsage(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	updated.UsageID = existing.UsageID
	updated.CreatedAt = existing.CreatedAt

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := restoreStock(tx, existing.FeedID, existing.QuantityUsed); err != nil {
			return err
		}
		if err := decrementStock(tx, updated.FeedID, updated.QuantityUsed); err != nil {
			return err
		}
		return tx.Save(updated).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUsage removes the row and restores its quantity to stock.
func (s *Service) DeleteUsage(ctx context.Context, userID, usageID uuid.UUID) error {
	var existing models.FeedUsage
	err := s.DB.WithContext(ctx).
		Where("usage_id = ? AND user_id = ?", usageID, userID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return ErrUsageNotFound
	}
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := restoreStock(tx, existing.FeedID, existing.QuantityUsed); err != nil {
			return err
		}
		return tx.Where("usage_id = ?", existing.UsageID).Delete(&models.FeedUsage{}).Error
	})
}

// Inventory lists every stock with trailing usage stats.
func (s *Service) Inventory(ctx context.Context, userID uuid.UUID, now time.Time) ([]InventoryItem, error) {
	var stocks []models.FeedStock
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("feed_name ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	today := analytics.Day(now)

	items := make([]InventoryItem, 0, len(stocks))
	for _, stock := range stocks {
		item := InventoryItem{FeedStock: stock}

		month := analytics.LastNDays(today, 30)
		monthTotal, err := s.usageTotal(ctx, stock.FeedID, month)
		if err != nil {
			return nil, err
		}
		item.AvgDailyUsage = analytics.Round2(monthTotal / 30)

		week := analytics.LastNDays(today, 7)
		weekTotal, err := s.usageTotal(ctx, stock.FeedID, week)
		if err != nil {
			return nil, err
		}
		item.WeeklyUsage = analytics.Round2(weekTotal)

		if stock.MinQuantity > 0 {
			item.StockPercent = analytics.Round2(stock.Quantity / stock.MinQuantity * 100)
		}
		item.DaysRemaining = analytics.DaysRemainingUnlimited
		if item.AvgDailyUsage > 0 {
			item.DaysRemaining = int(analytics.Round1(stock.Quantity / item.AvgDailyUsage))
		}
		item.IsLow = stock.Quantity < stock.MinQuantity

		items = append(items, item)
	}
	return items, nil
}

func (s *Service) usageTotal(ctx context.Context, feedID uuid.UUID, w analytics.Window) (float64, error) {
	var out struct{ Total float64 }
	err := s.DB.WithContext(ctx).Model(&models.FeedUsage{}).
		Select("COALESCE(SUM(quantity_used), 0) AS total").
		Where("feed_id = ? AND usage_date >= ? AND usage_date <= ?", feedID, w.Start, w.End).
		Scan(&out).Error
	return out.Total, err
}

// ListUsage pages usage rows newest-first with feed and cattle names.
func (s *Service) ListUsage(ctx context.Context, userID uuid.UUID, page, limit int) ([]UsageRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	base := s.DB.WithContext(ctx).Model(&models.FeedUsage{}).
		Where("feed_usage.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []UsageRow
	err := base.
		Joins("LEFT JOIN feed_stock ON feed_stock.feed_id = feed_usage.feed_id").
		Joins("LEFT JOIN cattle ON cattle.cattle_id = feed_usage.cattle_id").
		Select("feed_usage.*, COALESCE(feed_stock.feed_name, '') AS feed_name, COALESCE(cattle.name, '') AS cattle_name").
		Order("feed_usage.usage_date DESC, feed_usage.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// Chart returns 7-day gap-filled daily usage totals for the farm.
func (s *Service) Chart(ctx context.Context, userID uuid.UUID, now time.Time) ([]analytics.Point, error) {
	today := analytics.Day(now)
	w := analytics.LastNDays(today, 7)

	var rows []models.FeedUsage
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND usage_date >= ? AND usage_date <= ?", userID, w.Start, w.End).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]analytics.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, analytics.Record{Date: analytics.Day(r.UsageDate), Quantity: r.QuantityUsed})
	}
	return analytics.DailyBucket(today, 7, records), nil
}

// Alerts returns the low-stock subset of the inventory as alert objects.
func (s *Service) Alerts(ctx context.Context, userID uuid.UUID, now time.Time) ([]analytics.Alert, error) {
	items, err := s.Inventory(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	stocks := make([]analytics.StockInfo, 0, len(items))
	for _, item := range items {
		stocks = append(stocks, analytics.StockInfo{
			ID:            item.FeedID,
			Name:          item.FeedName,
			Quantity:      item.Quantity,
			MinQuantity:   item.MinQuantity,
			AvgDailyUsage: item.AvgDailyUsage,
		})
	}
	return analytics.EvaluateAlerts(analytics.AlertInput{Today: now, Stocks: stocks}), nil
}

// StockValueSplit reports stock value by rough feed class.
func (s *Service) StockValueSplit(ctx context.Context, userID uuid.UUID) (*StockValue, error) {
	var stocks []models.FeedStock
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&stocks).Error; err != nil {
		return nil, err
	}

	out := &StockValue{}
	for _, stock := range stocks {
		value := stock.Quantity * stock.CostPerKg
		out.Total += value
		switch classifyFeed(stock.FeedName) {
		case "fodder":
			out.Fodder += value
		case "grain":
			out.Grain += value
		default:
			out.Other += value
		}
	}
	out.Total = analytics.Round2(out.Total)
	out.Fodder = analytics.Round2(out.Fodder)
	out.Grain = analytics.Round2(out.Grain)
	out.Other = analytics.Round2(out.Other)
	return out, nil
}

func classifyFeed(name string) string {
	lower := strings.ToLower(name)
	for _, n := range fodderNames {
		if strings.Contains(lower, n) {
			return "fodder"
		}
	}
	for _, n := range grainNames {
		if strings.Contains(lower, n) {
			return "grain"
		}
	}
	return "other"
}
