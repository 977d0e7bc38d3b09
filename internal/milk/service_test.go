package milk

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

func setupService(t *testing.T) (*Service, uuid.UUID, models.Cattle) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Cattle{}, &models.MilkRecord{}, &models.ActivityEvent{}))

	userID := uuid.New()
	c := models.Cattle{UserID: userID, TagNo: "C-001", Name: "Bella", Breed: "Friesian", Age: 4}
	require.NoError(t, db.Create(&c).Error)
	return &Service{DB: db}, userID, c
}

func TestAddComputesDerivedFields(t *testing.T) {
	s, userID, c := setupService(t)

	rec, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01",
		MorningLiters: 6.5, EveningLiters: 4.5, Rate: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 11.0, rec.MilkLiters)
	assert.Equal(t, 550.0, rec.Income)
}

func TestAddRejectsForeignCattle(t *testing.T) {
	s, userID, _ := setupService(t)
	foreign := models.Cattle{UserID: uuid.New(), Name: "Other", Breed: "Jersey", Age: 2}
	require.NoError(t, s.DB.Create(&foreign).Error)

	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: foreign.CattleID.String(), Date: "2024-03-01", MorningLiters: 5,
	})
	assert.ErrorIs(t, err, ErrCattleNotFound)
}

func TestAddRejectsNegative(t *testing.T) {
	s, userID, c := setupService(t)
	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01", MorningLiters: -1,
	})
	assert.ErrorIs(t, err, ErrNegativeLiters)
}

func TestUpdateRecomputesIncome(t *testing.T) {
	s, userID, c := setupService(t)
	rec, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01",
		MorningLiters: 5, EveningLiters: 5, Rate: 50,
	})
	require.NoError(t, err)

	updated, err := s.Update(context.Background(), userID, rec.RecordID, RecordInput{
		MorningLiters: 8, EveningLiters: 2, Rate: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.MilkLiters)
	assert.Equal(t, 600.0, updated.Income)
}

func TestUpdateOtherUsersRecord(t *testing.T) {
	s, userID, c := setupService(t)
	rec, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01", MorningLiters: 5,
	})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), uuid.New(), rec.RecordID, RecordInput{MorningLiters: 1})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteMissingRecord(t *testing.T) {
	s, userID, _ := setupService(t)
	err := s.Delete(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSummaryChangePercent(t *testing.T) {
	s, userID, c := setupService(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-09", MorningLiters: 10, Rate: 50,
	})
	require.NoError(t, err)
	_, err = s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-10", MorningLiters: 8, EveningLiters: 4, Rate: 50,
	})
	require.NoError(t, err)

	out, err := s.Summary(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 12.0, out.Total)
	assert.Equal(t, 8.0, out.Morning)
	assert.Equal(t, 4.0, out.Evening)
	assert.Equal(t, 20.0, out.ChangePercent)
	assert.Equal(t, 1, out.CattleMilked)
	assert.Equal(t, 12.0, out.AveragePerCow)
}

func TestSummaryNoYesterdayBaseline(t *testing.T) {
	s, userID, c := setupService(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-10", MorningLiters: 5,
	})
	require.NoError(t, err)

	out, err := s.Summary(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Zero(t, out.ChangePercent)
}

func TestListSearchByName(t *testing.T) {
	s, userID, c := setupService(t)
	other := models.Cattle{UserID: userID, TagNo: "C-002", Name: "Daisy", Breed: "Jersey", Age: 3}
	require.NoError(t, s.DB.Create(&other).Error)

	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01", MorningLiters: 5,
	})
	require.NoError(t, err)
	_, err = s.Add(context.Background(), userID, RecordInput{
		CattleID: other.CattleID.String(), Date: "2024-03-01", MorningLiters: 3,
	})
	require.NoError(t, err)

	rows, total, err := s.List(context.Background(), userID, ListQuery{Search: "bella"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bella", rows[0].CattleName)
}

func TestListDateRange(t *testing.T) {
	s, userID, c := setupService(t)
	for _, d := range []string{"2024-03-01", "2024-03-15", "2024-04-01"} {
		_, err := s.Add(context.Background(), userID, RecordInput{
			CattleID: c.CattleID.String(), Date: d, MorningLiters: 5,
		})
		require.NoError(t, err)
	}

	_, total, err := s.List(context.Background(), userID, ListQuery{
		StartDate: "2024-03-01", EndDate: "2024-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestChartSumsDuplicateDays(t *testing.T) {
	s, userID, c := setupService(t)
	for _, liters := range []float64{5, 3} {
		_, err := s.Add(context.Background(), userID, RecordInput{
			CattleID: c.CattleID.String(), Date: "2024-01-01", MorningLiters: liters,
		})
		require.NoError(t, err)
	}
	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-01-03", MorningLiters: 4,
	})
	require.NoError(t, err)

	summary, err := s.Chart(context.Background(), userID, ChartQuery{
		StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	require.NoError(t, err)
	require.Len(t, summary.History, 2)
	assert.Equal(t, 8.0, summary.History[0].Quantity)
	assert.Equal(t, 12.0, summary.Total)
}

func TestBuildReportCSV(t *testing.T) {
	s, userID, c := setupService(t)
	_, err := s.Add(context.Background(), userID, RecordInput{
		CattleID: c.CattleID.String(), Date: "2024-03-01", MorningLiters: 5, Rate: 50,
	})
	require.NoError(t, err)

	out, format, err := s.BuildReport(context.Background(), userID, ReportInput{
		Format: "csv", StartDate: "2024-03-01", EndDate: "2024-03-31",
	}, "Test Farm")
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
	assert.Contains(t, string(out), "2024-03-01")
	assert.Contains(t, string(out), "TOTAL")
}

func TestBuildReportBadFormat(t *testing.T) {
	s, userID, _ := setupService(t)
	_, _, err := s.BuildReport(context.Background(), userID, ReportInput{
		Format: "xlsx", StartDate: "2024-03-01", EndDate: "2024-03-31",
	}, "Test Farm")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
