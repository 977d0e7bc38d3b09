package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func points(quantities ...float64) []Point {
	out := make([]Point, len(quantities))
	for i, q := range quantities {
		out[i] = Point{Date: day(2024, 1, 1+i), Quantity: q}
	}
	return out
}

func TestTrendInsufficientBelowFourPoints(t *testing.T) {
	for _, series := range [][]Point{nil, points(5), points(5, 6), points(5, 6, 7)} {
		r := Trend(series)
		assert.Equal(t, TrendInsufficient, r.Classification)
		assert.Zero(t, r.Percent)
	}
}

func TestTrendInsufficientOnZeroFirstHalf(t *testing.T) {
	r := Trend(points(0, 0, 5, 6))
	assert.Equal(t, TrendInsufficient, r.Classification)
}

func TestTrendPositive(t *testing.T) {
	r := Trend(points(10, 10, 12, 12))
	assert.Equal(t, TrendPositive, r.Classification)
	assert.Equal(t, 20.0, r.Percent)
	assert.Contains(t, r.Message, "increasing")
}

func TestTrendDeclining(t *testing.T) {
	r := Trend(points(10, 10, 8, 8))
	assert.Equal(t, TrendDeclining, r.Classification)
	assert.Equal(t, -20.0, r.Percent)
	assert.Contains(t, r.Message, "declining")
}

func TestTrendStableWithinBand(t *testing.T) {
	r := Trend(points(10, 10, 10.4, 10.4))
	assert.Equal(t, TrendStable, r.Classification)
	assert.Equal(t, 4.0, r.Percent)
}

func TestTrendBoundaryExactlyFivePercentIsStable(t *testing.T) {
	r := Trend(points(10, 10, 10.5, 10.5))
	assert.Equal(t, TrendStable, r.Classification)
	assert.Equal(t, 5.0, r.Percent)
}

func TestTrendOddLengthSplitsFirstHalfShorter(t *testing.T) {
	// 5 points: first half [10, 10], second half [10, 13, 13].
	r := Trend(points(10, 10, 10, 13, 13))
	assert.Equal(t, TrendPositive, r.Classification)
	assert.Equal(t, 20.0, r.Percent)
}
