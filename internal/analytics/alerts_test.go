package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yieldHistory builds 25 steady days at baseQty followed by the given
// trailing 5 days, ending at today.
func yieldHistory(t *testing.T, today time.Time, baseQty float64, last5 []float64) []Record {
	t.Helper()
	records := make([]Record, 0, 30)
	for i := 29; i >= 5; i-- {
		records = append(records, rec(t, today.AddDate(0, 0, -i), baseQty))
	}
	for i, q := range last5 {
		if q > 0 {
			records = append(records, rec(t, today.AddDate(0, 0, i-4), q))
		}
	}
	return records
}

func TestEvaluateAlertsLowYieldThreeOfFiveDays(t *testing.T) {
	today := day(2024, 9, 15)
	cow := CattleInfo{ID: uuid.New(), Name: "Bella"}

	// Baseline ~10/day; three of the last five days well below half.
	in := AlertInput{
		Today:        today,
		Cattle:       []CattleInfo{cow},
		YieldHistory: map[uuid.UUID][]Record{cow.ID: yieldHistory(t, today, 10, []float64{2, 9, 2, 2, 9})},
	}

	alerts := EvaluateAlerts(in)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLowMilkYield, alerts[0].Kind)
	assert.Equal(t, SeverityWarning, alerts[0].Severity)
	assert.Equal(t, cow.ID, alerts[0].SubjectID)
	assert.Contains(t, alerts[0].Message, "Bella")
}

func TestEvaluateAlertsTwoOfFiveDaysDoesNotFire(t *testing.T) {
	today := day(2024, 9, 15)
	cow := CattleInfo{ID: uuid.New(), Name: "Bella"}

	in := AlertInput{
		Today:        today,
		Cattle:       []CattleInfo{cow},
		YieldHistory: map[uuid.UUID][]Record{cow.ID: yieldHistory(t, today, 10, []float64{2, 9, 2, 9, 9})},
	}

	assert.Empty(t, EvaluateAlerts(in))
}

func TestEvaluateAlertsSkipsCattleWithoutBaseline(t *testing.T) {
	today := day(2024, 9, 15)
	cow := CattleInfo{ID: uuid.New(), Name: "New Cow"}

	in := AlertInput{
		Today:        today,
		Cattle:       []CattleInfo{cow},
		YieldHistory: map[uuid.UUID][]Record{},
	}

	assert.Empty(t, EvaluateAlerts(in))
}

func TestEvaluateAlertsLowFeedIntake(t *testing.T) {
	today := day(2024, 9, 15)
	cow := CattleInfo{ID: uuid.New(), Name: "Daisy"}

	in := AlertInput{
		Today:       today,
		Cattle:      []CattleInfo{cow},
		FeedHistory: map[uuid.UUID][]Record{cow.ID: yieldHistory(t, today, 20, []float64{5, 5, 5, 19, 19})},
	}

	alerts := EvaluateAlerts(in)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLowFeedIntake, alerts[0].Kind)
	assert.Contains(t, alerts[0].Message, "feed intake")
}

func TestEvaluateAlertsLowStock(t *testing.T) {
	stock := StockInfo{ID: uuid.New(), Name: "Hay", Quantity: 20, MinQuantity: 50, AvgDailyUsage: 5}

	alerts := EvaluateAlerts(AlertInput{Today: day(2024, 9, 15), Stocks: []StockInfo{stock}})
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, AlertLowStock, a.Kind)
	assert.Equal(t, SeverityWarning, a.Severity)
	require.NotNil(t, a.DaysRemaining)
	assert.Equal(t, 4, *a.DaysRemaining)
	assert.Contains(t, a.Message, "40.00%")
}

func TestEvaluateAlertsLowStockCriticalBelowQuarter(t *testing.T) {
	stock := StockInfo{ID: uuid.New(), Name: "Silage", Quantity: 10, MinQuantity: 50, AvgDailyUsage: 5}

	alerts := EvaluateAlerts(AlertInput{Today: day(2024, 9, 15), Stocks: []StockInfo{stock}})
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
}

func TestEvaluateAlertsLowStockNoUsageSentinel(t *testing.T) {
	stock := StockInfo{ID: uuid.New(), Name: "Bran", Quantity: 5, MinQuantity: 50}

	alerts := EvaluateAlerts(AlertInput{Today: day(2024, 9, 15), Stocks: []StockInfo{stock}})
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].DaysRemaining)
	assert.Equal(t, DaysRemainingUnlimited, *alerts[0].DaysRemaining)
}

func TestEvaluateAlertsStockAtMinimumDoesNotFire(t *testing.T) {
	stock := StockInfo{ID: uuid.New(), Name: "Hay", Quantity: 50, MinQuantity: 50}
	assert.Empty(t, EvaluateAlerts(AlertInput{Today: day(2024, 9, 15), Stocks: []StockInfo{stock}}))
}

func TestEvaluateAlertsCheckupDue(t *testing.T) {
	today := day(2024, 9, 15)
	id := uuid.New()

	cases := []struct {
		name     string
		checkup  time.Time
		fires    bool
		daysLeft int
	}{
		{"today", today, true, 0},
		{"in seven days", today.AddDate(0, 0, 7), true, 7},
		{"in eight days", today.AddDate(0, 0, 8), false, 0},
		{"yesterday", today.AddDate(0, 0, -1), false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := AlertInput{
				Today:    today,
				Checkups: []CheckupInfo{{CattleID: id, CattleName: "Bella", NextCheckup: tc.checkup}},
			}
			alerts := EvaluateAlerts(in)
			if !tc.fires {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, AlertCheckupDue, alerts[0].Kind)
			assert.Equal(t, SeverityInfo, alerts[0].Severity)
			require.NotNil(t, alerts[0].DaysRemaining)
			assert.Equal(t, tc.daysLeft, *alerts[0].DaysRemaining)
		})
	}
}

func TestEvaluateAlertsCombined(t *testing.T) {
	today := day(2024, 9, 15)
	cow := CattleInfo{ID: uuid.New(), Name: "Bella"}

	in := AlertInput{
		Today:        today,
		Cattle:       []CattleInfo{cow},
		YieldHistory: map[uuid.UUID][]Record{cow.ID: yieldHistory(t, today, 10, []float64{2, 2, 2, 9, 9})},
		Stocks:       []StockInfo{{ID: uuid.New(), Name: "Hay", Quantity: 1, MinQuantity: 10, AvgDailyUsage: 1}},
		Checkups:     []CheckupInfo{{CattleID: cow.ID, CattleName: "Bella", NextCheckup: today.AddDate(0, 0, 3)}},
	}

	alerts := EvaluateAlerts(in)
	require.Len(t, alerts, 3)

	kinds := make(map[string]bool)
	for _, a := range alerts {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[AlertLowMilkYield])
	assert.True(t, kinds[AlertLowStock])
	assert.True(t, kinds[AlertCheckupDue])
}
