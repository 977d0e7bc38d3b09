package feed

import (
	"context"
	"testing"
	"time"

	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, uuid.UUID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.FeedStock{}, &models.FeedUsage{}, &models.Cattle{}, &models.ActivityEvent{},
	))
	return &Service{DB: db}, uuid.New()
}

func seedStock(t *testing.T, s *Service, userID uuid.UUID, name string, qty, min, cost float64) models.FeedStock {
	t.Helper()
	stock := models.FeedStock{UserID: userID, FeedName: name, Quantity: qty, MinQuantity: min, CostPerKg: cost}
	require.NoError(t, s.DB.Create(&stock).Error)
	return stock
}

func stockQuantity(t *testing.T, s *Service, feedID uuid.UUID) float64 {
	t.Helper()
	var stock models.FeedStock
	require.NoError(t, s.DB.Where("feed_id = ?", feedID).First(&stock).Error)
	return stock.Quantity
}

func TestUpsertStockCreatesThenTopsUp(t *testing.T) {
	s, userID := setupService(t)

	stock, err := s.UpsertStock(context.Background(), userID, StockInput{
		FeedName: "Hay", Quantity: 100, MinQuantity: 20, CostPerKg: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, stock.Quantity)

	stock, err = s.UpsertStock(context.Background(), userID, StockInput{
		FeedName: "Hay", Quantity: 50, CostPerKg: 2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, stock.Quantity)
	assert.Equal(t, 2.5, stock.CostPerKg)
	assert.Equal(t, 20.0, stock.MinQuantity)
}

func TestAddUsageDecrementsStock(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 50, 10, 2)

	usage, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 20, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Nil(t, usage.CattleID)
	assert.Equal(t, 30.0, stockQuantity(t, s, stock.FeedID))
}

func TestAddUsageExactlyToZero(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 20, 10, 2)

	_, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 20, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, stockQuantity(t, s, stock.FeedID))
}

func TestAddUsageInsufficientStockWritesNothing(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 10, 5, 2)

	_, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 15, UsageDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10.0, stockQuantity(t, s, stock.FeedID))
	var usageCount int64
	require.NoError(t, s.DB.Model(&models.FeedUsage{}).Count(&usageCount).Error)
	assert.Zero(t, usageCount)
}

func TestAddUsageInsufficientStockNamesAvailable(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 5, 2, 2)

	_, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 10, UsageDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5.0, stockErr.Available)
	assert.Contains(t, err.Error(), "5.00")
}

func TestAddUsagePerCattle(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 50, 10, 2)
	c := models.Cattle{UserID: userID, Name: "Bella", Breed: "Friesian", Age: 4}
	require.NoError(t, s.DB.Create(&c).Error)

	usage, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), CattleID: c.CattleID.String(),
		QuantityUsed: 5, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)
	require.NotNil(t, usage.CattleID)
	assert.Equal(t, c.CattleID, *usage.CattleID)
}

func TestAddUsageForeignCattleRejected(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 50, 10, 2)
	foreign := models.Cattle{UserID: uuid.New(), Name: "Other", Breed: "Jersey", Age: 2}
	require.NoError(t, s.DB.Create(&foreign).Error)

	_, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), CattleID: foreign.CattleID.String(),
		QuantityUsed: 5, UsageDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrCattleNotFound)
	assert.Equal(t, 50.0, stockQuantity(t, s, stock.FeedID))
}

func TestUpdateUsageRestoresThenDecrements(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 50, 10, 2)

	usage, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 20, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)
	require.Equal(t, 30.0, stockQuantity(t, s, stock.FeedID))

	updated, err := s.UpdateUsage(context.Background(), userID, usage.UsageID, UsageInput{
		QuantityUsed: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.QuantityUsed)
	assert.Equal(t, 45.0, stockQuantity(t, s, stock.FeedID))
}

func TestUpdateUsageInsufficientForNewQuantity(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 30, 10, 2)

	usage, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 20, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)

	// Restore brings it to 30; 40 still exceeds it, so the whole tx rolls back.
	_, err = s.UpdateUsage(context.Background(), userID, usage.UsageID, UsageInput{
		QuantityUsed: 40,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 10.0, stockQuantity(t, s, stock.FeedID))

	var fresh models.FeedUsage
	require.NoError(t, s.DB.Where("usage_id = ?", usage.UsageID).First(&fresh).Error)
	assert.Equal(t, 20.0, fresh.QuantityUsed)
}

func TestDeleteUsageRestoresStock(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 50, 10, 2)

	usage, err := s.AddUsage(context.Background(), userID, UsageInput{
		FeedID: stock.FeedID.String(), QuantityUsed: 20, UsageDate: "2024-03-01",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUsage(context.Background(), userID, usage.UsageID))
	assert.Equal(t, 50.0, stockQuantity(t, s, stock.FeedID))

	var count int64
	require.NoError(t, s.DB.Model(&models.FeedUsage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInventoryStats(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 30, 60, 2)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	// 60 kg over the trailing 30 days -> 2/day average.
	for i := 0; i < 30; i++ {
		usage := models.FeedUsage{
			UserID: userID, FeedID: stock.FeedID, QuantityUsed: 2,
			UsageDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
		}
		require.NoError(t, s.DB.Create(&usage).Error)
	}

	items, err := s.Inventory(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, 2.0, item.AvgDailyUsage)
	assert.Equal(t, 14.0, item.WeeklyUsage)
	assert.Equal(t, 50.0, item.StockPercent)
	assert.Equal(t, 15, item.DaysRemaining)
	assert.True(t, item.IsLow)
}

func TestInventoryNoUsageSentinel(t *testing.T) {
	s, userID := setupService(t)
	seedStock(t, s, userID, "Bran", 5, 50, 3)

	items, err := s.Inventory(context.Background(), userID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, analytics.DaysRemainingUnlimited, items[0].DaysRemaining)
	assert.True(t, items[0].IsLow)
}

func TestChartGapFilled(t *testing.T) {
	s, userID := setupService(t)
	stock := seedStock(t, s, userID, "Hay", 100, 10, 2)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	usage := models.FeedUsage{
		UserID: userID, FeedID: stock.FeedID, QuantityUsed: 4,
		UsageDate: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.DB.Create(&usage).Error)

	points, err := s.Chart(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, points, 7)
	var nonZero int
	for _, p := range points {
		if p.Quantity > 0 {
			nonZero++
			assert.Equal(t, 4.0, p.Quantity)
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestAlertsOnlyLowStocks(t *testing.T) {
	s, userID := setupService(t)
	seedStock(t, s, userID, "Hay", 5, 50, 2)
	seedStock(t, s, userID, "Silage", 100, 50, 2)

	alerts, err := s.Alerts(context.Background(), userID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, analytics.AlertLowStock, alerts[0].Kind)
}

func TestStockValueSplit(t *testing.T) {
	s, userID := setupService(t)
	seedStock(t, s, userID, "Hay", 100, 10, 2)        // 200 fodder
	seedStock(t, s, userID, "Dairy Meal", 50, 10, 4)  // 200 grain
	seedStock(t, s, userID, "Salt Lick", 10, 1, 5)    // 50 other

	out, err := s.StockValueSplit(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 450.0, out.Total)
	assert.Equal(t, 200.0, out.Fodder)
	assert.Equal(t, 200.0, out.Grain)
	assert.Equal(t, 50.0, out.Other)
}
