package cattle

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

// Service implements the cattle registry and per-animal analytics.
type Service struct {
	DB *gorm.DB
}

// CreateInput for POST /cattle and PUT /cattle/:id.
type CreateInput struct {
	TagNo        string `json:"tag_no"`
	Name         string `json:"name"`
	Breed        string `json:"breed"`
	Age          *int   `json:"age"`
	Gender       string `json:"gender"`
	HealthStatus string `json:"health_status"`
}

// ListItem is one row of GET /cattle.
type ListItem struct {
	models.Cattle
	TotalMilk      float64    `json:"total_milk"`
	LastMilkDate   *time.Time `json:"last_milk_date"`
	LastMilkLiters float64    `json:"last_milk_liters"`
}

// Detail is the GET /cattle/:id response.
type Detail struct {
	Cattle    models.Cattle     `json:"cattle"`
	LastWeek  analytics.Summary `json:"last_week"`
	AllTime   analytics.Summary `json:"all_time"`
}

// FilterInput for POST /cattle/:id/filter.
type FilterInput struct {
	ViewType  string `json:"view_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SummaryOutput is the GET /cattle/:id/summary response. FeedNote
// records that pool shares divide by the cattle count at query time.
type SummaryOutput struct {
	MilkLiters float64 `json:"milk_liters"`
	MilkIncome float64 `json:"milk_income"`
	FeedKg     float64 `json:"feed_kg"`
	FeedCost   float64 `json:"feed_cost"`
	FeedNote   string  `json:"feed_note"`
}

// HealthInput for POST /cattle/:id/health.
type HealthInput struct {
	Issue       string `json:"issue"`
	Treatment   string `json:"treatment"`
	VetName     string `json:"vet_name"`
	NextCheckup string `json:"next_checkup"`
}

const dateLayout = "2006-01-02"

func validateInput(input *CreateInput) error {
	input.TagNo = strings.TrimSpace(input.TagNo)
	input.Name = strings.TrimSpace(input.Name)
	input.Breed = strings.TrimSpace(input.Breed)

	if input.Name == "" || input.Breed == "" || input.Age == nil {
		return ErrFieldsRequired
	}
	if *input.Age < 0 || *input.Age > 40 {
		return ErrInvalidAge
	}
	if input.Gender != "" && input.Gender != "Male" && input.Gender != "Female" {
		return ErrInvalidGender
	}
	if input.HealthStatus == "" {
		input.HealthStatus = models.HealthGood
	}
	if !models.IsValidHealthStatus(input.HealthStatus) {
		return ErrInvalidHealthStatus
	}
	return nil
}

// Create registers a new animal and logs the activity event.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Cattle, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.TagNo != "" {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Cattle{}).
			Where("user_id = ? AND tag_no = ?", userID, input.TagNo).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrTagTaken
		}
	}

	c := models.Cattle{
		UserID:       userID,
		TagNo:        input.TagNo,
		Name:         input.Name,
		Breed:        input.Breed,
		Age:          *input.Age,
		Gender:       input.Gender,
		HealthStatus: input.HealthStatus,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}

	activity.Log(ctx, s.DB, userID, models.EventCattleAdded, map[string]interface{}{
		"cattle_id": c.CattleID.String(),
		"name":      c.Name,
		"tag_no":    c.TagNo,
	})
	return &c, nil
}

// List returns every animal with lifetime milk totals and the most
// recent milking.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]ListItem, error) {
	var herd []models.Cattle
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&herd).Error; err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(herd))
	for _, c := range herd {
		item := ListItem{Cattle: c}

		type milkAgg struct {
			Total float64
		}
		var agg milkAgg
		if err := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
			Select("COALESCE(SUM(milk_liters), 0) AS total").
			Where("cattle_id = ?", c.CattleID).
			Scan(&agg).Error; err != nil {
			return nil, err
		}
		item.TotalMilk = analytics.Round2(agg.Total)

		var latest models.MilkRecord
		err := s.DB.WithContext(ctx).
			Where("cattle_id = ?", c.CattleID).
			Order("date DESC").
			First(&latest).Error
		if err == nil {
			d := latest.Date
			item.LastMilkDate = &d
			item.LastMilkLiters = latest.MilkLiters
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		items = append(items, item)
	}
	return items, nil
}

func (s *Service) find(ctx context.Context, userID, cattleID uuid.UUID) (*models.Cattle, error) {
	var c models.Cattle
	err := s.DB.WithContext(ctx).
		Where("cattle_id = ? AND user_id = ?", cattleID, userID).
		First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrCattleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) milkRecords(ctx context.Context, cattleID uuid.UUID) ([]analytics.Record, error) {
	var rows []models.MilkRecord
	if err := s.DB.WithContext(ctx).
		Where("cattle_id = ?", cattleID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]analytics.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, analytics.Record{Date: analytics.Day(r.Date), Quantity: r.MilkLiters})
	}
	return records, nil
}

// Get returns the animal, its last-7-day production and lifetime stats.
func (s *Service) Get(ctx context.Context, userID, cattleID uuid.UUID) (*Detail, error) {
	c, err := s.find(ctx, userID, cattleID)
	if err != nil {
		return nil, err
	}
	records, err := s.milkRecords(ctx, cattleID)
	if err != nil {
		return nil, err
	}

	today := analytics.Day(time.Now().UTC())
	lastWeek, err := analytics.Aggregate(records, analytics.LastNDays(today, 7))
	if err != nil {
		return nil, err
	}
	allTime, err := analytics.Aggregate(records, analytics.AllTime())
	if err != nil {
		return nil, err
	}
	return &Detail{Cattle: *c, LastWeek: lastWeek, AllTime: allTime}, nil
}

// Update edits the animal.
func (s *Service) Update(ctx context.Context, userID, cattleID uuid.UUID, input CreateInput) (*models.Cattle, error) {
	c, err := s.find(ctx, userID, cattleID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.TagNo != "" && input.TagNo != c.TagNo {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Cattle{}).
			Where("user_id = ? AND tag_no = ? AND cattle_id <> ?", userID, input.TagNo, cattleID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrTagTaken
		}
	}

	updates := map[string]interface{}{
		"tag_no":        input.TagNo,
		"name":          input.Name,
		"breed":         input.Breed,
		"age":           *input.Age,
		"gender":        input.Gender,
		"health_status": input.HealthStatus,
	}
	if err := s.DB.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the animal from the registry. Milk, feed and health
// history stay behind for reports.
func (s *Service) Delete(ctx context.Context, userID, cattleID uuid.UUID) error {
	if _, err := s.find(ctx, userID, cattleID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).
		Where("cattle_id = ? AND user_id = ?", cattleID, userID).
		Delete(&models.Cattle{}).Error
}

// Filter aggregates the animal's production over the requested window.
func (s *Service) Filter(ctx context.Context, userID, cattleID uuid.UUID, input FilterInput) (*analytics.Summary, error) {
	if _, err := s.find(ctx, userID, cattleID); err != nil {
		return nil, err
	}

	var w analytics.Window
	today := analytics.Day(time.Now().UTC())
	switch input.ViewType {
	case "last_7":
		w = analytics.LastNDays(today, 7)
	case "all_time":
		w = analytics.AllTime()
	case "custom":
		start, err := time.Parse(dateLayout, input.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		end, err := time.Parse(dateLayout, input.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		w = analytics.Between(start, end)
		if err := w.Validate(); err != nil {
			return nil, ErrInvalidDateRange
		}
	default:
		return nil, ErrInvalidViewType
	}

	records, err := s.milkRecords(ctx, cattleID)
	if err != nil {
		return nil, err
	}
	summary, err := analytics.Aggregate(records, w)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Summary reports milk income and allocated feed for the trailing days
// (0 = all time). General-pool usage is split per feed type across the
// farm's current cattle count.
func (s *Service) Summary(ctx context.Context, userID, cattleID uuid.UUID, days int) (*SummaryOutput, error) {
	if _, err := s.find(ctx, userID, cattleID); err != nil {
		return nil, err
	}

	today := analytics.Day(time.Now().UTC())
	w := analytics.AllTime()
	if days > 0 {
		w = analytics.LastNDays(today, days)
	}

	out := &SummaryOutput{
		FeedNote: "General-pool feed is divided by the current cattle count; shares shift as the herd changes.",
	}

	milkQ := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Select("COALESCE(SUM(milk_liters), 0) AS liters, COALESCE(SUM(income), 0) AS income").
		Where("cattle_id = ?", cattleID)
	if days > 0 {
		milkQ = milkQ.Where("date >= ? AND date <= ?", w.Start, w.End)
	}
	var milkAgg struct {
		Liters float64
		Income float64
	}
	if err := milkQ.Scan(&milkAgg).Error; err != nil {
		return nil, err
	}
	out.MilkLiters = analytics.Round2(milkAgg.Liters)
	out.MilkIncome = analytics.Round2(milkAgg.Income)

	var cattleCount int64
	if err := s.DB.WithContext(ctx).Model(&models.Cattle{}).
		Where("user_id = ?", userID).
		Count(&cattleCount).Error; err != nil {
		return nil, err
	}

	var stocks []models.FeedStock
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&stocks).Error; err != nil {
		return nil, err
	}

	for _, stock := range stocks {
		personal, err := s.usageRecords(ctx, stock.FeedID, &cattleID, w, days > 0)
		if err != nil {
			return nil, err
		}
		general, err := s.usageRecords(ctx, stock.FeedID, nil, w, days > 0)
		if err != nil {
			return nil, err
		}
		if len(personal) == 0 && len(general) == 0 {
			continue
		}
		alloc := analytics.Allocate(personal, general, int(cattleCount), stock.CostPerKg)
		out.FeedKg += alloc.TotalQuantity
		out.FeedCost += alloc.TotalCost
	}
	out.FeedKg = analytics.Round2(out.FeedKg)
	out.FeedCost = analytics.Round2(out.FeedCost)
	return out, nil
}

// usageRecords loads usage rows for one feed, either for one animal or
// the general pool (nil cattleID).
func (s *Service) usageRecords(ctx context.Context, feedID uuid.UUID, cattleID *uuid.UUID, w analytics.Window, bounded bool) ([]analytics.Record, error) {
	q := s.DB.WithContext(ctx).Where("feed_id = ?", feedID)
	if cattleID != nil {
		q = q.Where("cattle_id = ?", *cattleID)
	} else {
		q = q.Where("cattle_id IS NULL")
	}
	if bounded {
		q = q.Where("usage_date >= ? AND usage_date <= ?", w.Start, w.End)
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

// AddHealthRecord appends a vet visit note.
func (s *Service) AddHealthRecord(ctx context.Context, userID, cattleID uuid.UUID, input HealthInput) (*models.HealthRecord, error) {
	if _, err := s.find(ctx, userID, cattleID); err != nil {
		return nil, err
	}
	input.Issue = strings.TrimSpace(input.Issue)
	if input.Issue == "" {
		return nil, ErrHealthIssueRequired
	}

	rec := models.HealthRecord{
		UserID:    userID,
		CattleID:  cattleID,
		Issue:     input.Issue,
		Treatment: strings.TrimSpace(input.Treatment),
		VetName:   strings.TrimSpace(input.VetName),
	}
	if input.NextCheckup != "" {
		next, err := time.Parse(dateLayout, input.NextCheckup)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		rec.NextCheckup = &next
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListHealthRecords pages newest-first.
func (s *Service) ListHealthRecords(ctx context.Context, userID, cattleID uuid.UUID, page, limit int) ([]models.HealthRecord, int64, error) {
	if _, err := s.find(ctx, userID, cattleID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.HealthRecord{}).
		Where("cattle_id = ?", cattleID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.HealthRecord
	err := s.DB.WithContext(ctx).
		Where("cattle_id = ?", cattleID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

// BuildReport assembles the per-animal PDF for the date range.
func (s *Service) BuildReport(ctx context.Context, userID, cattleID uuid.UUID, start, end time.Time, farmName string) ([]byte, error) {
	c, err := s.find(ctx, userID, cattleID)
	if err != nil {
		return nil, err
	}
	w := analytics.Between(start, end)
	if err := w.Validate(); err != nil {
		return nil, ErrInvalidDateRange
	}

	var milkRows []models.MilkRecord
	if err := s.DB.WithContext(ctx).
		Where("cattle_id = ? AND date >= ? AND date <= ?", cattleID, w.Start, w.End).
		Order("date ASC").
		Find(&milkRows).Error; err != nil {
		return nil, err
	}

	records := make([]analytics.Record, 0, len(milkRows))
	data := reports.CattleReportData{
		FarmName:     farmName,
		TagNo:        c.TagNo,
		Name:         c.Name,
		Breed:        c.Breed,
		Age:          c.Age,
		Gender:       c.Gender,
		HealthStatus: c.HealthStatus,
		Start:        w.Start,
		End:          w.End,
	}
	for _, r := range milkRows {
		records = append(records, analytics.Record{Date: analytics.Day(r.Date), Quantity: r.MilkLiters})
		data.TotalIncome += r.Income
		data.MilkRows = append(data.MilkRows, reports.MilkRow{
			Date:    r.Date,
			Morning: r.MorningLiters,
			Evening: r.EveningLiters,
			Total:   r.MilkLiters,
			Income:  r.Income,
		})
	}
	summary, err := analytics.Aggregate(records, w)
	if err != nil {
		return nil, err
	}
	data.TotalMilk = summary.Total
	data.AverageMilk = summary.Average
	data.PeakMilk = summary.Peak.Quantity
	data.TotalIncome = analytics.Round2(data.TotalIncome)

	var usageRows []models.FeedUsage
	if err := s.DB.WithContext(ctx).
		Where("cattle_id = ? AND usage_date >= ? AND usage_date <= ?", cattleID, w.Start, w.End).
		Order("usage_date ASC").
		Find(&usageRows).Error; err != nil {
		return nil, err
	}
	feedNames, err := s.feedNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, u := range usageRows {
		data.FeedRows = append(data.FeedRows, reports.FeedRow{
			Date:     u.UsageDate,
			FeedName: feedNames[u.FeedID],
			Quantity: u.QuantityUsed,
		})
	}

	var healthRows []models.HealthRecord
	if err := s.DB.WithContext(ctx).
		Where("cattle_id = ? AND created_at >= ? AND created_at <= ?", cattleID, w.Start, w.End.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Find(&healthRows).Error; err != nil {
		return nil, err
	}
	for _, hr := range healthRows {
		data.HealthRows = append(data.HealthRows, reports.HealthRow{
			Date:        hr.CreatedAt,
			Issue:       hr.Issue,
			Treatment:   hr.Treatment,
			VetName:     hr.VetName,
			NextCheckup: hr.NextCheckup,
		})
	}

	return reports.BuildCattlePDF(data)
}

func (s *Service) feedNames(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	var stocks []models.FeedStock
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&stocks).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(stocks))
	for _, st := range stocks {
		names[st.FeedID] = st.FeedName
	}
	return names, nil
}
