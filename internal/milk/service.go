package milk

import (
	"context"
	"strings"
	"time"

	"cattletrack-backend/internal/activity"
	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"
	"cattletrack-backend/internal/reports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service implements milk record CRUD and production summaries.
type Service struct {
	DB *gorm.DB
}

const dateLayout = "2006-01-02"

// RecordInput for POST /milk and PUT /milk/:id. MilkLiters and Income
// are always recomputed server-side.
type RecordInput struct {
	CattleID      string  `json:"cattle_id"`
	Date          string  `json:"date"`
	MorningLiters float64 `json:"morning_liters"`
	EveningLiters float64 `json:"evening_liters"`
	Rate          float64 `json:"rate"`
}

// TodaySummary is the GET /milk/summary response.
type TodaySummary struct {
	Morning       float64 `json:"morning_liters"`
	Evening       float64 `json:"evening_liters"`
	Total         float64 `json:"total_liters"`
	ChangePercent float64 `json:"change_percent"`
	AveragePerCow float64 `json:"average_per_cow"`
	CattleMilked  int     `json:"cattle_milked"`
}

// ListRow is one paginated row with the cattle's identity joined in.
// Name and tag are empty when the animal has been removed.
type ListRow struct {
	models.MilkRecord
	CattleName string `json:"cattle_name"`
	TagNo      string `json:"tag_no"`
}

// ListQuery for GET /milk.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	StartDate string
	EndDate   string
}

// ChartQuery for GET /milk/chart. Days wins when both are given.
type ChartQuery struct {
	CattleID  string
	Days      int
	StartDate string
	EndDate   string
}

// ReportInput for POST /milk/report.
type ReportInput struct {
	Format    string `json:"format"`
	CattleID  string `json:"cattle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Service) ownCattle(ctx context.Context, userID, cattleID uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Cattle{}).
		Where("cattle_id = ? AND user_id = ?", cattleID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCattleNotFound
	}
	return nil
}

// Add creates a record with derived liters and income.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, input RecordInput) (*models.MilkRecord, error) {
	if input.CattleID == "" || input.Date == "" {
		return nil, ErrCattleRequired
	}
	cattleID, err := uuid.Parse(input.CattleID)
	if err != nil {
		return nil, ErrCattleNotFound
	}
	if input.MorningLiters < 0 || input.EveningLiters < 0 || input.Rate < 0 {
		return nil, ErrNegativeLiters
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if err := s.ownCattle(ctx, userID, cattleID); err != nil {
		return nil, err
	}

	total := analytics.Round2(input.MorningLiters + input.EveningLiters)
	rec := models.MilkRecord{
		UserID:        userID,
		CattleID:      cattleID,
		Date:          date,
		MorningLiters: input.MorningLiters,
		EveningLiters: input.EveningLiters,
		MilkLiters:    total,
		Rate:          input.Rate,
		Income:        analytics.Round2(total * input.Rate),
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}

	activity.Log(ctx, s.DB, userID, models.EventMilkRecorded, map[string]interface{}{
		"record_id": rec.RecordID.String(),
		"cattle_id": cattleID.String(),
		"liters":    total,
		"income":    rec.Income,
	})
	return &rec, nil
}

// Update edits a record, recomputing the derived fields. Changing the
// cattle re-checks ownership.
func (s *Service) Update(ctx context.Context, userID, recordID uuid.UUID, input RecordInput) (*models.MilkRecord, error) {
	var rec models.MilkRecord
	err := s.DB.WithContext(ctx).
		Where("record_id = ? AND user_id = ?", recordID, userID).
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if input.MorningLiters < 0 || input.EveningLiters < 0 || input.Rate < 0 {
		return nil, ErrNegativeLiters
	}

	if input.CattleID != "" {
		cattleID, err := uuid.Parse(input.CattleID)
		if err != nil {
			return nil, ErrCattleNotFound
		}
		if err := s.ownCattle(ctx, userID, cattleID); err != nil {
			return nil, err
		}
		rec.CattleID = cattleID
	}
	if input.Date != "" {
		date, err := time.Parse(dateLayout, input.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		rec.Date = date
	}
	rec.MorningLiters = input.MorningLiters
	rec.EveningLiters = input.EveningLiters
	rec.Rate = input.Rate
	rec.MilkLiters = analytics.Round2(input.MorningLiters + input.EveningLiters)
	rec.Income = analytics.Round2(rec.MilkLiters * input.Rate)

	if err := s.DB.WithContext(ctx).Save(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, userID, recordID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("record_id = ? AND user_id = ?", recordID, userID).
		Delete(&models.MilkRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Summary reports today against yesterday.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, now time.Time) (*TodaySummary, error) {
	today := analytics.Day(now)
	yesterday := today.AddDate(0, 0, -1)

	type agg struct {
		Morning float64
		Evening float64
		Total   float64
		Cattle  int64
	}
	dayAgg := func(d time.Time) (agg, error) {
		var a agg
		err := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
			Select("COALESCE(SUM(morning_liters), 0) AS morning, COALESCE(SUM(evening_liters), 0) AS evening, COALESCE(SUM(milk_liters), 0) AS total, COUNT(DISTINCT cattle_id) AS cattle").
			Where("user_id = ? AND date = ?", userID, d).
			Scan(&a).Error
		return a, err
	}

	t, err := dayAgg(today)
	if err != nil {
		return nil, err
	}
	y, err := dayAgg(yesterday)
	if err != nil {
		return nil, err
	}

	out := &TodaySummary{
		Morning:      analytics.Round2(t.Morning),
		Evening:      analytics.Round2(t.Evening),
		Total:        analytics.Round2(t.Total),
		CattleMilked: int(t.Cattle),
	}
	if y.Total > 0 {
		out.ChangePercent = analytics.Round1((t.Total - y.Total) / y.Total * 100)
	}
	if t.Cattle > 0 {
		out.AveragePerCow = analytics.Round2(t.Total / float64(t.Cattle))
	}
	return out, nil
}

// List pages records newest-first with cattle identity joined, optional
// tag/name search and date range.
func (s *Service) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]ListRow, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	base := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Joins("LEFT JOIN cattle ON cattle.cattle_id = milk_records.cattle_id").
		Where("milk_records.user_id = ?", userID)

	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		base = base.Where("LOWER(cattle.name) LIKE ? OR LOWER(cattle.tag_no) LIKE ?", like, like)
	}
	if q.StartDate != "" {
		start, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		base = base.Where("milk_records.date >= ?", start)
	}
	if q.EndDate != "" {
		end, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		base = base.Where("milk_records.date <= ?", end)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ListRow
	err := base.
		Select("milk_records.*, COALESCE(cattle.name, '') AS cattle_name, COALESCE(cattle.tag_no, '') AS tag_no").
		Order("milk_records.date DESC, milk_records.created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Scan(&rows).Error
	return rows, total, err
}

// Chart aggregates a production series, farm-wide or for one animal.
func (s *Service) Chart(ctx context.Context, userID uuid.UUID, q ChartQuery) (*analytics.Summary, error) {
	today := analytics.Day(time.Now().UTC())
	var w analytics.Window
	switch {
	case q.Days > 0:
		w = analytics.LastNDays(today, q.Days)
	case q.StartDate != "" && q.EndDate != "":
		start, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		end, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		w = analytics.Between(start, end)
		if err := w.Validate(); err != nil {
			return nil, ErrInvalidDateRange
		}
	default:
		w = analytics.LastNDays(today, 7)
	}

	db := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if q.CattleID != "" {
		cattleID, err := uuid.Parse(q.CattleID)
		if err != nil {
			return nil, ErrCattleNotFound
		}
		db = db.Where("cattle_id = ?", cattleID)
	}
	var recs []models.MilkRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, err
	}

	records := make([]analytics.Record, 0, len(recs))
	for _, r := range recs {
		records = append(records, analytics.Record{Date: analytics.Day(r.Date), Quantity: r.MilkLiters})
	}
	summary, err := analytics.Aggregate(records, w)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// BuildReport renders the milk report as CSV or PDF.
func (s *Service) BuildReport(ctx context.Context, userID uuid.UUID, input ReportInput, farmName string) ([]byte, string, error) {
	format := strings.ToLower(input.Format)
	if format != "csv" && format != "pdf" {
		return nil, "", ErrInvalidFormat
	}
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	end, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	w := analytics.Between(start, end)
	if err := w.Validate(); err != nil {
		return nil, "", ErrInvalidDateRange
	}

	base := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Joins("LEFT JOIN cattle ON cattle.cattle_id = milk_records.cattle_id").
		Where("milk_records.user_id = ? AND milk_records.date >= ? AND milk_records.date <= ?", userID, w.Start, w.End)
	if input.CattleID != "" {
		cattleID, err := uuid.Parse(input.CattleID)
		if err != nil {
			return nil, "", ErrCattleNotFound
		}
		base = base.Where("milk_records.cattle_id = ?", cattleID)
	}

	var rows []ListRow
	if err := base.
		Select("milk_records.*, COALESCE(cattle.name, '') AS cattle_name, COALESCE(cattle.tag_no, '') AS tag_no").
		Order("milk_records.date ASC").
		Scan(&rows).Error; err != nil {
		return nil, "", err
	}

	data := reports.MilkReportData{FarmName: farmName, Start: w.Start, End: w.End}
	for _, r := range rows {
		data.TotalLiters += r.MilkLiters
		data.TotalIncome += r.Income
		data.Rows = append(data.Rows, reports.MilkRow{
			Date:    r.Date,
			TagNo:   r.TagNo,
			Name:    r.CattleName,
			Morning: r.MorningLiters,
			Evening: r.EveningLiters,
			Total:   r.MilkLiters,
			Income:  r.Income,
		})
	}
	data.TotalLiters = analytics.Round2(data.TotalLiters)
	data.TotalIncome = analytics.Round2(data.TotalIncome)

	if format == "csv" {
		out, err := reports.BuildMilkCSV(data)
		return out, "csv", err
	}
	out, err := reports.BuildMilkPDF(data)
	return out, "pdf", err
}
