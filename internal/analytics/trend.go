package analytics

import "fmt"

// TrendClass classifies production direction over a period.
type TrendClass string

const (
	TrendPositive     TrendClass = "positive"
	TrendDeclining    TrendClass = "declining"
	TrendStable       TrendClass = "stable"
	TrendInsufficient TrendClass = "insufficient_data"
)

// TrendResult carries the classification and the computed magnitude.
type TrendResult struct {
	Classification TrendClass `json:"classification"`
	Percent        float64    `json:"percent"`
	Message        string     `json:"message"`
}

// trendThreshold is the stable band: changes within ±5% read as stable.
const trendThreshold = 5.0

// Trend compares the mean of the second half of a date-ordered series
// against the first half. Fewer than 4 points, or a zero first-half mean
// (percentage change undefined), reports insufficient data rather than
// an error.
func Trend(series []Point) TrendResult {
	if len(series) < 4 {
		return TrendResult{
			Classification: TrendInsufficient,
			Message:        "Not enough data to determine a trend",
		}
	}

	mid := len(series) / 2
	firstMean := meanQuantity(series[:mid])
	secondMean := meanQuantity(series[mid:])

	if firstMean == 0 {
		return TrendResult{
			Classification: TrendInsufficient,
			Message:        "Not enough data to determine a trend",
		}
	}

	pct := Round1((secondMean - firstMean) / firstMean * 100)
	switch {
	case pct > trendThreshold:
		return TrendResult{
			Classification: TrendPositive,
			Percent:        pct,
			Message:        fmt.Sprintf("Production increasing by %.1f%% over the period", pct),
		}
	case pct < -trendThreshold:
		return TrendResult{
			Classification: TrendDeclining,
			Percent:        pct,
			Message:        fmt.Sprintf("Production declining by %.1f%% over the period", -pct),
		}
	default:
		return TrendResult{
			Classification: TrendStable,
			Percent:        pct,
			Message:        fmt.Sprintf("Production stable (%.1f%% change)", pct),
		}
	}
}

func meanQuantity(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Quantity
	}
	return total / float64(len(points))
}
