package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"cattletrack-backend/internal/activity"
	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service assembles the dashboard views. Stats go through a short-TTL
// Redis cache; writes elsewhere don't invalidate it, staleness is
// bounded by the TTL.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

const (
	cachePrefix = "dashboard:"
	cacheTTL    = 30 * time.Second
)

// Stats is the GET /dashboard response.
type Stats struct {
	TotalCattle       int               `json:"total_cattle"`
	MilkToday         float64           `json:"milk_today"`
	TodayIncome       float64           `json:"today_income"`
	TodayExpense      float64           `json:"today_expense"`
	WeeklyMilk        float64           `json:"weekly_milk"`
	WeeklyChart       []analytics.Point `json:"weekly_chart"`
	MonthlyAverage    float64           `json:"monthly_average"`
	MilkChangePercent float64           `json:"milk_change_percent"`
	NetProfit         float64           `json:"net_profit"`
	HealthAlertCount  int               `json:"health_alert_count"`
	Cattle            []models.Cattle   `json:"cattle"`
}

// ActivityItem is one humanized feed entry.
type ActivityItem struct {
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
	TimeAgo   string                 `json:"time_ago"`
	CreatedAt time.Time              `json:"createdAt"`
}

// AlertsOutput is the GET /dashboard/alerts response.
type AlertsOutput struct {
	Alerts []analytics.Alert     `json:"alerts"`
	Trend  analytics.TrendResult `json:"trend"`
}

// GetStats serves from cache when fresh, otherwise computes and stores.
func (s *Service) GetStats(ctx context.Context, userID uuid.UUID, now time.Time) (*Stats, error) {
	key := cachePrefix + userID.String()
	if s.Rdb != nil {
		if b, err := s.Rdb.Get(ctx, key).Bytes(); err == nil {
			var cached Stats
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.computeStats(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if s.Rdb != nil {
		if b, err := json.Marshal(stats); err == nil {
			if err := s.Rdb.Set(ctx, key, b, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("dashboard cache write failed")
			}
		}
	}
	return stats, nil
}

func (s *Service) computeStats(ctx context.Context, userID uuid.UUID, now time.Time) (*Stats, error) {
	today := analytics.Day(now)
	yesterday := today.AddDate(0, 0, -1)

	stats := &Stats{}

	var herd []models.Cattle
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&herd).Error; err != nil {
		return nil, err
	}
	stats.Cattle = herd
	stats.TotalCattle = len(herd)
	for _, c := range herd {
		if c.HealthStatus != models.HealthGood && c.HealthStatus != models.HealthExcellent {
			stats.HealthAlertCount++
		}
	}

	dayTotal := func(d time.Time) (liters, income float64, err error) {
		var agg struct {
			Liters float64
			Income float64
		}
		err = s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
			Select("COALESCE(SUM(milk_liters), 0) AS liters, COALESCE(SUM(income), 0) AS income").
			Where("user_id = ? AND date = ?", userID, d).
			Scan(&agg).Error
		return agg.Liters, agg.Income, err
	}

	todayLiters, todayIncome, err := dayTotal(today)
	if err != nil {
		return nil, err
	}
	yLiters, _, err := dayTotal(yesterday)
	if err != nil {
		return nil, err
	}
	stats.MilkToday = analytics.Round2(todayLiters)
	stats.TodayIncome = analytics.Round2(todayIncome)
	if yLiters > 0 {
		stats.MilkChangePercent = analytics.Round1((todayLiters - yLiters) / yLiters * 100)
	}

	var todaySpent struct{ Total float64 }
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date = ?", userID, today).
		Scan(&todaySpent).Error; err != nil {
		return nil, err
	}
	stats.TodayExpense = analytics.Round2(todaySpent.Total)

	monthRecords, err := s.milkRecords(ctx, userID, uuid.Nil, analytics.LastNDays(today, 30))
	if err != nil {
		return nil, err
	}
	monthly, err := analytics.Aggregate(monthRecords, analytics.LastNDays(today, 30))
	if err != nil {
		return nil, err
	}
	stats.MonthlyAverage = monthly.Average

	weekRecords, err := s.milkRecords(ctx, userID, uuid.Nil, analytics.LastNDays(today, 7))
	if err != nil {
		return nil, err
	}
	stats.WeeklyChart = analytics.DailyBucket(today, 7, weekRecords)
	for _, p := range stats.WeeklyChart {
		stats.WeeklyMilk += p.Quantity
	}
	stats.WeeklyMilk = analytics.Round2(stats.WeeklyMilk)

	var lifetime struct {
		Income float64
		Spent  float64
	}
	if err := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Select("COALESCE(SUM(income), 0) AS income").
		Where("user_id = ?", userID).
		Scan(&lifetime).Error; err != nil {
		return nil, err
	}
	var spent struct{ Total float64 }
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&spent).Error; err != nil {
		return nil, err
	}
	stats.NetProfit = analytics.Round2(lifetime.Income - spent.Total)

	return stats, nil
}

// milkRecords loads milk rows in a window as analytics records. A nil
// cattleID means the whole farm.
func (s *Service) milkRecords(ctx context.Context, userID, cattleID uuid.UUID, w analytics.Window) ([]analytics.Record, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if cattleID != uuid.Nil {
		q = q.Where("cattle_id = ?", cattleID)
	}
	if !w.Unbounded() {
		q = q.Where("date >= ? AND date <= ?", w.Start, w.End)
	}
	var rows []models.MilkRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]analytics.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, analytics.Record{Date: analytics.Day(r.Date), Quantity: r.MilkLiters})
	}
	return records, nil
}

// RecentActivity humanizes the latest feed events.
func (s *Service) RecentActivity(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]ActivityItem, error) {
	events, err := activity.Recent(ctx, s.DB, userID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ActivityItem, 0, len(events))
	for _, e := range events {
		var payload map[string]interface{}
		_ = json.Unmarshal(e.EventData, &payload)
		items = append(items, ActivityItem{
			EventType: e.EventType,
			EventData: payload,
			TimeAgo:   activity.TimeAgo(e.CreatedAt, now),
			CreatedAt: e.CreatedAt,
		})
	}
	return items, nil
}

// GetAlerts runs the full alert evaluation plus the 30-day farm trend.
func (s *Service) GetAlerts(ctx context.Context, userID uuid.UUID, now time.Time) (*AlertsOutput, error) {
	today := analytics.Day(now)
	month := analytics.LastNDays(today, 30)

	var herd []models.Cattle
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&herd).Error; err != nil {
		return nil, err
	}

	in := analytics.AlertInput{
		Today:        today,
		Cattle:       make([]analytics.CattleInfo, 0, len(herd)),
		YieldHistory: make(map[uuid.UUID][]analytics.Record, len(herd)),
		FeedHistory:  make(map[uuid.UUID][]analytics.Record, len(herd)),
	}

	generalShare, err := s.generalPoolShare(ctx, userID, month, len(herd))
	if err != nil {
		return nil, err
	}
	for _, c := range herd {
		in.Cattle = append(in.Cattle, analytics.CattleInfo{ID: c.CattleID, Name: c.Name})

		yield, err := s.milkRecords(ctx, userID, c.CattleID, month)
		if err != nil {
			return nil, err
		}
		in.YieldHistory[c.CattleID] = yield

		personal, err := s.feedRecords(ctx, userID, &c.CattleID, month)
		if err != nil {
			return nil, err
		}
		in.FeedHistory[c.CattleID] = append(personal, generalShare...)
	}

	stocks, err := s.stockInfo(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	in.Stocks = stocks

	checkups, err := s.upcomingCheckups(ctx, userID, herd)
	if err != nil {
		return nil, err
	}
	in.Checkups = checkups

	farmRecords, err := s.milkRecords(ctx, userID, uuid.Nil, month)
	if err != nil {
		return nil, err
	}
	trendSeries, err := analytics.Aggregate(farmRecords, month)
	if err != nil {
		return nil, err
	}

	return &AlertsOutput{
		Alerts: analytics.EvaluateAlerts(in),
		Trend:  analytics.Trend(trendSeries.History),
	}, nil
}

// generalPoolShare converts pool usage into one animal's share.
func (s *Service) generalPoolShare(ctx context.Context, userID uuid.UUID, w analytics.Window, cattleCount int) ([]analytics.Record, error) {
	general, err := s.feedRecords(ctx, userID, nil, w)
	if err != nil {
		return nil, err
	}
	divisor := float64(cattleCount)
	if divisor < 1 {
		divisor = 1
	}
	share := make([]analytics.Record, 0, len(general))
	for _, r := range general {
		share = append(share, analytics.Record{Date: r.Date, Quantity: r.Quantity / divisor})
	}
	return share, nil
}

func (s *Service) feedRecords(ctx context.Context, userID uuid.UUID, cattleID *uuid.UUID, w analytics.Window) ([]analytics.Record, error) {
	q := s.DB.WithContext(ctx).
		Where("user_id = ? AND usage_date >= ? AND usage_date <= ?", userID, w.Start, w.End)
	if cattleID != nil {
		q = q.Where("cattle_id = ?", *cattleID)
	} else {
		q = q.Where("cattle_id IS NULL")
	}
	var rows []models.FeedUsage
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]analytics.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, analytics.Record{Date: analytics.Day(r.UsageDate), Quantity: r.QuantityUsed})
	}
	return records, nil
}

func (s *Service) stockInfo(ctx context.Context, userID uuid.UUID, today time.Time) ([]analytics.StockInfo, error) {
	var stocks []models.FeedStock
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&stocks).Error; err != nil {
		return nil, err
	}
	month := analytics.LastNDays(today, 30)

	out := make([]analytics.StockInfo, 0, len(stocks))
	for _, stock := range stocks {
		var agg struct{ Total float64 }
		if err := s.DB.WithContext(ctx).Model(&models.FeedUsage{}).
			Select("COALESCE(SUM(quantity_used), 0) AS total").
			Where("feed_id = ? AND usage_date >= ? AND usage_date <= ?", stock.FeedID, month.Start, month.End).
			Scan(&agg).Error; err != nil {
			return nil, err
		}
		out = append(out, analytics.StockInfo{
			ID:            stock.FeedID,
			Name:          stock.FeedName,
			Quantity:      stock.Quantity,
			MinQuantity:   stock.MinQuantity,
			AvgDailyUsage: analytics.Round2(agg.Total / 30),
		})
	}
	return out, nil
}

func (s *Service) upcomingCheckups(ctx context.Context, userID uuid.UUID, herd []models.Cattle) ([]analytics.CheckupInfo, error) {
	names := make(map[uuid.UUID]string, len(herd))
	for _, c := range herd {
		names[c.CattleID] = c.Name
	}

	var rows []models.HealthRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND next_checkup IS NOT NULL", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]analytics.CheckupInfo, 0, len(rows))
	for _, r := range rows {
		name, ok := names[r.CattleID]
		if !ok {
			continue
		}
		out = append(out, analytics.CheckupInfo{
			CattleID:    r.CattleID,
			CattleName:  name,
			NextCheckup: *r.NextCheckup,
		})
	}
	return out, nil
}
