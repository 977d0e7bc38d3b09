package expenses

import (
	"context"
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&models.Expense{}, &models.MilkRecord{}, &models.ActivityEvent{}))
	return &Service{DB: db}, uuid.New()
}

func seedMilkIncome(t *testing.T, s *Service, userID uuid.UUID, date time.Time, income float64) {
	t.Helper()
	rec := models.MilkRecord{
		UserID: userID, CattleID: uuid.New(), Date: date,
		MilkLiters: income / 50, Rate: 50, Income: income,
	}
	require.NoError(t, s.DB.Create(&rec).Error)
}

func TestAddValidations(t *testing.T) {
	s, userID := setupService(t)

	_, err := s.Add(context.Background(), userID, AddInput{Category: "Feed"})
	assert.ErrorIs(t, err, ErrFieldsRequired)

	_, err = s.Add(context.Background(), userID, AddInput{Date: "2024-03-01", Category: "Feed", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Add(context.Background(), userID, AddInput{Date: "03/01/2024", Category: "Feed", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMetrics(t *testing.T) {
	s, userID := setupService(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	seedMilkIncome(t, s, userID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1000)
	_, err := s.Add(context.Background(), userID, AddInput{Date: "2024-03-05", Category: "Feed", Amount: 300})
	require.NoError(t, err)
	_, err = s.Add(context.Background(), userID, AddInput{Date: "2024-03-20", Category: "Vet", Amount: 100})
	require.NoError(t, err)

	m, err := s.GetMetrics(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, m.Revenue)
	assert.Equal(t, 400.0, m.TotalExpenses)
	assert.Equal(t, 600.0, m.NetProfit)
	assert.Equal(t, 1, m.PendingCount)
}

func TestCashflowSixBuckets(t *testing.T) {
	s, userID := setupService(t)
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	seedMilkIncome(t, s, userID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 500)
	seedMilkIncome(t, s, userID, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), 300)
	// Older than the window; must be excluded.
	seedMilkIncome(t, s, userID, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), 900)
	_, err := s.Add(context.Background(), userID, AddInput{Date: "2024-06-02", Category: "Feed", Amount: 200})
	require.NoError(t, err)

	buckets, err := s.Cashflow(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, buckets, 6)
	assert.Equal(t, "2024-01", buckets[0].Month)
	assert.Equal(t, "2024-06", buckets[5].Month)
	assert.Equal(t, 300.0, buckets[3].Revenue)
	assert.Equal(t, 500.0, buckets[5].Revenue)
	assert.Equal(t, 200.0, buckets[5].Expenses)
	assert.Zero(t, buckets[1].Revenue)
}

func TestTransactionsMergedNewestFirst(t *testing.T) {
	s, userID := setupService(t)

	seedMilkIncome(t, s, userID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 500)
	_, err := s.Add(context.Background(), userID, AddInput{Date: "2024-03-12", Category: "Feed", Amount: 200})
	require.NoError(t, err)
	_, err = s.Add(context.Background(), userID, AddInput{Date: "2024-03-08", Category: "Vet", Amount: 100})
	require.NoError(t, err)

	txs, err := s.Transactions(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "expense", txs[0].Kind)
	assert.Equal(t, "Feed", txs[0].Category)
	assert.Equal(t, "income", txs[1].Kind)
	assert.Equal(t, "Vet", txs[2].Category)
}

func TestTransactionsCappedAtTen(t *testing.T) {
	s, userID := setupService(t)
	for i := 0; i < 8; i++ {
		seedMilkIncome(t, s, userID, time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC), 100)
		_, err := s.Add(context.Background(), userID, AddInput{
			Date: time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC).Format(dateLayout),
			Category: "Feed", Amount: 50,
		})
		require.NoError(t, err)
	}

	txs, err := s.Transactions(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, txs, 10)
}

func TestBreakdown(t *testing.T) {
	s, userID := setupService(t)
	seedMilkIncome(t, s, userID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 800)
	for _, e := range []AddInput{
		{Date: "2024-03-02", Category: "Feed", Amount: 100},
		{Date: "2024-03-03", Category: "Feed", Amount: 50},
		{Date: "2024-03-04", Category: "Vet", Amount: 75},
	} {
		_, err := s.Add(context.Background(), userID, e)
		require.NoError(t, err)
	}

	out, err := s.GetBreakdown(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, out.MilkSales)
	assert.Equal(t, 150.0, out.ByCategory["Feed"])
	assert.Equal(t, 75.0, out.ByCategory["Vet"])
}

func TestBuildCSV(t *testing.T) {
	s, userID := setupService(t)
	_, err := s.Add(context.Background(), userID, AddInput{
		Date: "2024-03-02", Category: "Feed", Description: "Hay bales", Amount: 100,
	})
	require.NoError(t, err)

	out, err := s.BuildCSV(context.Background(), userID)
	require.NoError(t, err)
	csv := string(out)
	assert.Contains(t, csv, "date,category,description,amount")
	assert.Contains(t, csv, "Hay bales")
	assert.Contains(t, csv, "TOTAL")
}
