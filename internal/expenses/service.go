package expenses

import (
	"context"
	"sort"
	"strings"
	"time"

	"cattletrack-backend/internal/activity"
	"cattletrack-backend/internal/analytics"
	"cattletrack-backend/internal/models"
	"cattletrack-backend/internal/reports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service implements expense tracking and farm cashflow views.
type Service struct {
	DB *gorm.DB
}

const dateLayout = "2006-01-02"

// AddInput for POST /expenses.
type AddInput struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Metrics is the GET /expenses/metrics response. Pending counts
// expenses dated in the future (scheduled, not yet incurred).
type Metrics struct {
	Revenue       float64 `json:"revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	PendingCount  int     `json:"pending_count"`
}

// MonthBucket is one month of GET /expenses/cashflow.
type MonthBucket struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// Transaction is one merged row of GET /expenses/transactions.
type Transaction struct {
	Kind        string    `json:"kind"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// Breakdown is the GET /expenses/breakdown response.
type Breakdown struct {
	MilkSales  float64            `json:"milk_sales"`
	ByCategory map[string]float64 `json:"by_category"`
}

// Add records an expense and logs the activity event.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*models.Expense, error) {
	input.Category = strings.TrimSpace(input.Category)
	if input.Date == "" || input.Category == "" {
		return nil, ErrFieldsRequired
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	e := models.Expense{
		UserID:      userID,
		Date:        date,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
	}
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, err
	}

	activity.Log(ctx, s.DB, userID, models.EventExpenseAdded, map[string]interface{}{
		"expense_id": e.ExpenseID.String(),
		"category":   e.Category,
		"amount":     e.Amount,
	})
	return &e, nil
}

// GetMetrics reports lifetime revenue, expenses and net profit.
func (s *Service) GetMetrics(ctx context.Context, userID uuid.UUID, now time.Time) (*Metrics, error) {
	var revenue struct{ Total float64 }
	if err := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Select("COALESCE(SUM(income), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}

	var spent struct{ Total float64 }
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&spent).Error; err != nil {
		return nil, err
	}

	var pending int64
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Where("user_id = ? AND date > ?", userID, analytics.Day(now)).
		Count(&pending).Error; err != nil {
		return nil, err
	}

	return &Metrics{
		Revenue:       analytics.Round2(revenue.Total),
		TotalExpenses: analytics.Round2(spent.Total),
		NetProfit:     analytics.Round2(revenue.Total - spent.Total),
		PendingCount:  int(pending),
	}, nil
}

// Cashflow buckets the trailing six calendar months, oldest first.
func (s *Service) Cashflow(ctx context.Context, userID uuid.UUID, now time.Time) ([]MonthBucket, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	var milkRows []models.MilkRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, first).
		Find(&milkRows).Error; err != nil {
		return nil, err
	}
	var expenseRows []models.Expense
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, first).
		Find(&expenseRows).Error; err != nil {
		return nil, err
	}

	buckets := make([]MonthBucket, 6)
	index := make(map[string]int, 6)
	for i := 0; i < 6; i++ {
		m := first.AddDate(0, i, 0)
		key := m.Format("2006-01")
		buckets[i] = MonthBucket{Month: key}
		index[key] = i
	}
	for _, r := range milkRows {
		if i, ok := index[r.Date.Format("2006-01")]; ok {
			buckets[i].Revenue += r.Income
		}
	}
	for _, e := range expenseRows {
		if i, ok := index[e.Date.Format("2006-01")]; ok {
			buckets[i].Expenses += e.Amount
		}
	}
	for i := range buckets {
		buckets[i].Revenue = analytics.Round2(buckets[i].Revenue)
		buckets[i].Expenses = analytics.Round2(buckets[i].Expenses)
	}
	return buckets, nil
}

// Transactions merges the latest expense and milk-income rows, newest
// first, capped at ten.
func (s *Service) Transactions(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	var expenseRows []models.Expense
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(10).
		Find(&expenseRows).Error; err != nil {
		return nil, err
	}
	var milkRows []models.MilkRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(10).
		Find(&milkRows).Error; err != nil {
		return nil, err
	}

	merged := make([]Transaction, 0, len(expenseRows)+len(milkRows))
	for _, e := range expenseRows {
		merged = append(merged, Transaction{
			Kind:        "expense",
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	for _, m := range milkRows {
		merged = append(merged, Transaction{
			Kind:        "income",
			Date:        m.Date,
			Category:    "Milk Sales",
			Description: "Milk production",
			Amount:      m.Income,
		})
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date.After(merged[j].Date) })
	if len(merged) > 10 {
		merged = merged[:10]
	}
	return merged, nil
}

// GetBreakdown reports milk sales against per-category expense totals.
func (s *Service) GetBreakdown(ctx context.Context, userID uuid.UUID) (*Breakdown, error) {
	var revenue struct{ Total float64 }
	if err := s.DB.WithContext(ctx).Model(&models.MilkRecord{}).
		Select("COALESCE(SUM(income), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}

	type catAgg struct {
		Category string
		Total    float64
	}
	var cats []catAgg
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&cats).Error; err != nil {
		return nil, err
	}

	out := &Breakdown{
		MilkSales:  analytics.Round2(revenue.Total),
		ByCategory: make(map[string]float64, len(cats)),
	}
	for _, c := range cats {
		out.ByCategory[c.Category] = analytics.Round2(c.Total)
	}
	return out, nil
}

// BuildCSV exports every expense, oldest first.
func (s *Service) BuildCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var rows []models.Expense
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]reports.ExpenseRow, 0, len(rows))
	for _, e := range rows {
		out = append(out, reports.ExpenseRow{
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	return reports.BuildExpensesCSV(out)
}
