package dashboard

import (
	"context"
	"testing"
	"time"

	"cattletrack-backend/internal/activity"
	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *miniredis.Miniredis, uuid.UUID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Cattle{}, &models.MilkRecord{}, &models.Expense{},
		&models.FeedStock{}, &models.FeedUsage{}, &models.HealthRecord{},
		&models.ActivityEvent{},
	))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Service{DB: db, Rdb: rdb}, mr, uuid.New()
}

func seedCattle(t *testing.T, s *Service, userID uuid.UUID, name, status string) models.Cattle {
	t.Helper()
	c := models.Cattle{UserID: userID, TagNo: "TAG-" + name, Name: name, HealthStatus: status}
	require.NoError(t, s.DB.Create(&c).Error)
	return c
}

func seedMilk(t *testing.T, s *Service, userID, cattleID uuid.UUID, date time.Time, liters, income float64) {
	t.Helper()
	require.NoError(t, s.DB.Create(&models.MilkRecord{
		UserID: userID, CattleID: cattleID, Date: date, MilkLiters: liters, Income: income,
	}).Error)
}

func TestGetStatsComputesFarmFigures(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	today := analytics.Day(now)
	yesterday := today.AddDate(0, 0, -1)

	bella := seedCattle(t, s, userID, "Bella", models.HealthGood)
	seedCattle(t, s, userID, "Daisy", models.HealthPoor)

	seedMilk(t, s, userID, bella.CattleID, today, 12, 600)
	seedMilk(t, s, userID, bella.CattleID, yesterday, 10, 500)
	require.NoError(t, s.DB.Create(&models.Expense{
		UserID: userID, Date: today, Category: "Feed", Amount: 200,
	}).Error)

	stats, err := s.GetStats(context.Background(), userID, now)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalCattle)
	assert.Equal(t, 12.0, stats.MilkToday)
	assert.Equal(t, 600.0, stats.TodayIncome)
	assert.Equal(t, 200.0, stats.TodayExpense)
	assert.Equal(t, 20.0, stats.MilkChangePercent)
	assert.Equal(t, 22.0, stats.WeeklyMilk)
	assert.Len(t, stats.WeeklyChart, 7)
	assert.Equal(t, 12.0, stats.WeeklyChart[6].Quantity)
	assert.Equal(t, 11.0, stats.MonthlyAverage)
	assert.Equal(t, 900.0, stats.NetProfit)
	assert.Equal(t, 1, stats.HealthAlertCount)
	assert.Len(t, stats.Cattle, 2)
}

func TestGetStatsNoYesterdayBaseline(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := seedCattle(t, s, userID, "Bella", models.HealthGood)
	seedMilk(t, s, userID, c.CattleID, analytics.Day(now), 8, 400)

	stats, err := s.GetStats(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.MilkChangePercent)
}

func TestGetStatsServesFromCacheUntilExpiry(t *testing.T) {
	s, mr, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := seedCattle(t, s, userID, "Bella", models.HealthGood)
	seedMilk(t, s, userID, c.CattleID, analytics.Day(now), 10, 500)

	first, err := s.GetStats(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.MilkToday)

	seedMilk(t, s, userID, c.CattleID, analytics.Day(now), 5, 250)

	cached, err := s.GetStats(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cached.MilkToday)

	mr.FastForward(31 * time.Second)

	fresh, err := s.GetStats(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 15.0, fresh.MilkToday)
}

func TestGetStatsIsolatedPerUser(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := seedCattle(t, s, userID, "Bella", models.HealthGood)
	seedMilk(t, s, userID, c.CattleID, analytics.Day(now), 10, 500)

	other := uuid.New()
	stats, err := s.GetStats(context.Background(), other, now)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCattle)
	assert.Equal(t, 0.0, stats.MilkToday)
}

func TestRecentActivityHumanizesTimestamps(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Now().UTC()

	activity.Log(context.Background(), s.DB, userID, models.EventMilkRecorded,
		map[string]interface{}{"cattle_name": "Bella", "liters": 12.0})

	items, err := s.RecentActivity(context.Background(), userID, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.EventMilkRecorded, items[0].EventType)
	assert.Equal(t, "Bella", items[0].EventData["cattle_name"])
	assert.Equal(t, "2 hours ago", items[0].TimeAgo)
}

func TestGetAlertsLowStockAndCheckup(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	today := analytics.Day(now)

	c := seedCattle(t, s, userID, "Bella", models.HealthGood)
	require.NoError(t, s.DB.Create(&models.FeedStock{
		UserID: userID, FeedName: "Hay", Quantity: 4, MinQuantity: 20,
	}).Error)
	checkup := today.AddDate(0, 0, 3)
	require.NoError(t, s.DB.Create(&models.HealthRecord{
		UserID: userID, CattleID: c.CattleID, Issue: "Routine", NextCheckup: &checkup,
	}).Error)

	out, err := s.GetAlerts(context.Background(), userID, now)
	require.NoError(t, err)

	kinds := make(map[string]analytics.Alert, len(out.Alerts))
	for _, a := range out.Alerts {
		kinds[a.Kind] = a
	}
	require.Contains(t, kinds, analytics.AlertLowStock)
	require.Contains(t, kinds, analytics.AlertCheckupDue)

	stockAlert := kinds[analytics.AlertLowStock]
	assert.Equal(t, analytics.SeverityCritical, stockAlert.Severity)
	require.NotNil(t, stockAlert.DaysRemaining)
	assert.Equal(t, analytics.DaysRemainingUnlimited, *stockAlert.DaysRemaining)

	assert.Equal(t, analytics.TrendInsufficient, out.Trend.Classification)
}

func TestGetAlertsLowYieldUsesGeneralPoolShare(t *testing.T) {
	s, _, userID := setupService(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	today := analytics.Day(now)

	c := seedCattle(t, s, userID, "Bella", models.HealthGood)
	for offset := 29; offset >= 5; offset-- {
		seedMilk(t, s, userID, c.CattleID, today.AddDate(0, 0, -offset), 10, 500)
	}
	for offset := 4; offset >= 0; offset-- {
		seedMilk(t, s, userID, c.CattleID, today.AddDate(0, 0, -offset), 2, 100)
	}

	out, err := s.GetAlerts(context.Background(), userID, now)
	require.NoError(t, err)

	var yieldAlert *analytics.Alert
	for i := range out.Alerts {
		if out.Alerts[i].Kind == analytics.AlertLowMilkYield {
			yieldAlert = &out.Alerts[i]
		}
	}
	require.NotNil(t, yieldAlert)
	assert.Equal(t, c.CattleID, yieldAlert.SubjectID)

	assert.Equal(t, analytics.TrendDeclining, out.Trend.Classification)
}
