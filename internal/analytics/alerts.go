package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert kinds.
const (
	AlertLowMilkYield  = "low_milk_yield"
	AlertLowFeedIntake = "low_feed_intake"
	AlertLowStock      = "low_stock"
	AlertCheckupDue    = "checkup_due"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// DaysRemainingUnlimited is the sentinel when usage history gives no basis
// for a days-remaining estimate.
const DaysRemainingUnlimited = 999

// Alert is one anomaly flagged for the farm.
type Alert struct {
	Kind          string    `json:"kind"`
	Severity      string    `json:"severity"`
	SubjectID     uuid.UUID `json:"subject_id"`
	Message       string    `json:"message"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
}

// CattleInfo identifies one animal for alert evaluation.
type CattleInfo struct {
	ID   uuid.UUID
	Name string
}

// StockInfo is one feed-stock item with its trailing average daily usage.
type StockInfo struct {
	ID            uuid.UUID
	Name          string
	Quantity      float64
	MinQuantity   float64
	AvgDailyUsage float64
}

// CheckupInfo is a scheduled follow-up from a health record.
type CheckupInfo struct {
	CattleID    uuid.UUID
	CattleName  string
	NextCheckup time.Time
}

// AlertInput gathers everything the evaluator needs. Yield and feed
// histories are raw per-cattle records; feed history should already
// include the animal's share of general-pool usage.
type AlertInput struct {
	Today        time.Time
	Cattle       []CattleInfo
	YieldHistory map[uuid.UUID][]Record
	FeedHistory  map[uuid.UUID][]Record
	Stocks       []StockInfo
	Checkups     []CheckupInfo
}

const (
	baselineDays     = 30
	recentDays       = 5
	lowDayThreshold  = 3
	baselineEpsilon  = 0.001
	checkupAheadDays = 7
)

// EvaluateAlerts runs every alert rule and returns the combined list.
// Empty or missing history never fails; animals without a meaningful
// baseline are simply skipped.
func EvaluateAlerts(in AlertInput) []Alert {
	alerts := make([]Alert, 0)

	for _, c := range in.Cattle {
		if a, ok := lowSeriesAlert(c, in.YieldHistory[c.ID], in.Today, AlertLowMilkYield); ok {
			alerts = append(alerts, a)
		}
		if a, ok := lowSeriesAlert(c, in.FeedHistory[c.ID], in.Today, AlertLowFeedIntake); ok {
			alerts = append(alerts, a)
		}
	}

	for _, s := range in.Stocks {
		if a, ok := lowStockAlert(s); ok {
			alerts = append(alerts, a)
		}
	}

	for _, ch := range in.Checkups {
		if a, ok := checkupAlert(ch, in.Today); ok {
			alerts = append(alerts, a)
		}
	}

	return alerts
}

// lowSeriesAlert applies the shared rule for milk yield and feed intake:
// at least 3 of the trailing 5 calendar days strictly below half the
// 30-day daily average.
func lowSeriesAlert(c CattleInfo, records []Record, today time.Time, kind string) (Alert, bool) {
	summary, err := Aggregate(records, LastNDays(today, baselineDays))
	if err != nil || summary.Average < baselineEpsilon {
		return Alert{}, false
	}
	baseline := summary.Average

	lowDays := 0
	for _, p := range DailyBucket(today, recentDays, filterWindow(records, LastNDays(today, recentDays))) {
		if p.Quantity < baseline/2 {
			lowDays++
		}
	}
	if lowDays < lowDayThreshold {
		return Alert{}, false
	}

	noun := "milk yield"
	if kind == AlertLowFeedIntake {
		noun = "feed intake"
	}
	return Alert{
		Kind:      kind,
		Severity:  SeverityWarning,
		SubjectID: c.ID,
		Message: fmt.Sprintf("%s: low %s on %d of the last %d days (30-day average %.1f)",
			c.Name, noun, lowDays, recentDays, Round1(baseline)),
	}, true
}

func lowStockAlert(s StockInfo) (Alert, bool) {
	if s.Quantity >= s.MinQuantity {
		return Alert{}, false
	}

	pct := 0.0
	if s.MinQuantity > 0 {
		pct = Round2(s.Quantity / s.MinQuantity * 100)
	}

	days := DaysRemainingUnlimited
	if s.AvgDailyUsage > 0 {
		days = int(Round1(s.Quantity / s.AvgDailyUsage))
	}

	severity := SeverityWarning
	if pct < 25 {
		severity = SeverityCritical
	}
	return Alert{
		Kind:          AlertLowStock,
		Severity:      severity,
		SubjectID:     s.ID,
		Message:       fmt.Sprintf("%s stock at %.2f%% of minimum (%.1f kg left)", s.Name, pct, s.Quantity),
		DaysRemaining: &days,
	}, true
}

func checkupAlert(ch CheckupInfo, today time.Time) (Alert, bool) {
	due := Day(ch.NextCheckup)
	start := Day(today)
	end := start.AddDate(0, 0, checkupAheadDays)
	if due.Before(start) || due.After(end) {
		return Alert{}, false
	}

	days := int(due.Sub(start).Hours() / 24)
	msg := fmt.Sprintf("%s: checkup due in %d days", ch.CattleName, days)
	if days == 0 {
		msg = fmt.Sprintf("%s: checkup due today", ch.CattleName)
	}
	return Alert{
		Kind:          AlertCheckupDue,
		Severity:      SeverityInfo,
		SubjectID:     ch.CattleID,
		Message:       msg,
		DaysRemaining: &days,
	}, true
}

func filterWindow(records []Record, w Window) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
