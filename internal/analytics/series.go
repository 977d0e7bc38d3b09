// Package analytics implements the farm's reporting core: time-series
// aggregation of daily records, feed-cost allocation between personal and
// general-pool usage, and alert/trend evaluation. The package is pure
// computation; callers fetch rows and feed them in.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	// ErrInvalidWindow rejects a custom range with end before start or an
	// unknown window kind, before any aggregation happens.
	ErrInvalidWindow = errors.New("Invalid date window")

	// ErrNegativeQuantity rejects record construction with a negative value.
	ErrNegativeQuantity = errors.New("Quantity must not be negative")
)

// Record is one raw observation: a quantity on a calendar date. Multiple
// records may share a date; aggregation sums them, never overwrites.
type Record struct {
	Date     time.Time
	Quantity float64
}

// NewRecord validates a record. The date is truncated to its calendar day.
func NewRecord(date time.Time, quantity float64) (Record, error) {
	if date.IsZero() {
		return Record{}, fmt.Errorf("record date is required")
	}
	if quantity < 0 {
		return Record{}, ErrNegativeQuantity
	}
	return Record{Date: Day(date), Quantity: quantity}, nil
}

// Point is one entry of an aggregated, date-ascending series.
type Point struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// Summary is the aggregate of a series over a window.
type Summary struct {
	History []Point `json:"history"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Peak    Point   `json:"peak"`
	Count   int     `json:"count"`
}

// Window kinds.
const (
	windowLastN   = "last_n"
	windowBetween = "between"
	windowAllTime = "all_time"
)

// Window is a date-range filter: last-N-days ending at a reference date,
// an explicit inclusive [Start, End] range, or unbounded. Start and End
// are zero for unbounded windows.
type Window struct {
	kind       string
	Start, End time.Time
}

// LastNDays returns the window of the n consecutive calendar days ending at
// ref (inclusive).
func LastNDays(ref time.Time, n int) Window {
	if n <= 0 {
		return Window{kind: ""}
	}
	end := Day(ref)
	start := end.AddDate(0, 0, -(n - 1))
	return Window{kind: windowLastN, Start: start, End: end}
}

// Between returns the explicit inclusive [start, end] window.
func Between(start, end time.Time) Window {
	return Window{kind: windowBetween, Start: Day(start), End: Day(end)}
}

// AllTime returns the unbounded window.
func AllTime() Window {
	return Window{kind: windowAllTime}
}

// Validate reports ErrInvalidWindow for an unknown kind or end before start.
func (w Window) Validate() error {
	switch w.kind {
	case windowAllTime:
		return nil
	case windowLastN, windowBetween:
		if w.End.Before(w.Start) {
			return ErrInvalidWindow
		}
		return nil
	default:
		return ErrInvalidWindow
	}
}

// Contains reports whether the day of d falls inside the window (inclusive).
func (w Window) Contains(d time.Time) bool {
	if w.kind == windowAllTime {
		return true
	}
	day := Day(d)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Unbounded reports whether the window covers all time.
func (w Window) Unbounded() bool {
	return w.kind == windowAllTime
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Aggregate filters records to the window, groups them by calendar date
// summing quantities, and returns the date-ascending series with derived
// totals. Empty input (or nothing inside the window) yields zeros and a
// sentinel peak, never an error; the only failure is an invalid window.
//
// Guarantees: output dates strictly increase with no duplicates, and the
// total equals the sum of every input quantity that fell in the window.
func Aggregate(records []Record, w Window) (Summary, error) {
	if err := w.Validate(); err != nil {
		return Summary{}, err
	}

	byDay := make(map[time.Time]float64)
	for _, r := range records {
		if !w.Contains(r.Date) {
			continue
		}
		byDay[Day(r.Date)] += r.Quantity
	}

	history := make([]Point, 0, len(byDay))
	for d, q := range byDay {
		history = append(history, Point{Date: d, Quantity: q})
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	out := Summary{History: history, Count: len(history)}
	for _, p := range history {
		out.Total += p.Quantity
		// Strict > keeps the earliest date on ties.
		if p.Quantity > out.Peak.Quantity {
			out.Peak = p
		}
	}
	if out.Count > 0 {
		out.Average = out.Total / float64(out.Count)
	}
	return out, nil
}

// DailyBucket returns exactly lookbackDays consecutive calendar days ending
// at ref, each pre-filled with quantity 0 and overlaid with the aggregated
// daily totals of records. Days without records stay explicitly zero so
// charts never show gaps.
func DailyBucket(ref time.Time, lookbackDays int, records []Record) []Point {
	if lookbackDays <= 0 {
		return []Point{}
	}
	byDay := make(map[time.Time]float64)
	for _, r := range records {
		byDay[Day(r.Date)] += r.Quantity
	}

	out := make([]Point, 0, lookbackDays)
	end := Day(ref)
	for i := lookbackDays - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		out = append(out, Point{Date: d, Quantity: byDay[d]})
	}
	return out
}

// Round2 rounds to two decimals (money and kilogram amounts).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Round1 rounds to one decimal (liters, percentages).
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
