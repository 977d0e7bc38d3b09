package analytics

import (
	"sort"
	"time"
)

// Allocation is the merged per-animal feed series: personal usage plus an
// equal share of the farm's general-pool usage, with cost at the feed
// type's current price.
type Allocation struct {
	History       []Point `json:"history"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalCost     float64 `json:"total_cost"`
}

// Allocate attributes feed usage to one animal: for every date present in
// either series, personal + general/cattleCount. The division always uses
// the farm's cattle count at query time, so the same pool event attributes
// differently once animals are added or removed; that staleness is a
// documented property of the report, not corrected here. A zero cattle
// count floors the divisor at 1 rather than dividing by zero.
//
// Cost is quantity times the feed type's current cost per unit; there is
// no price history in the schema.
func Allocate(personal, general []Record, cattleCount int, costPerUnit float64) Allocation {
	divisor := float64(cattleCount)
	if divisor < 1 {
		divisor = 1
	}

	byDay := make(map[time.Time]float64)
	for _, r := range personal {
		byDay[Day(r.Date)] += r.Quantity
	}
	for _, r := range general {
		byDay[Day(r.Date)] += r.Quantity / divisor
	}

	history := make([]Point, 0, len(byDay))
	for d, q := range byDay {
		history = append(history, Point{Date: d, Quantity: Round2(q)})
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	out := Allocation{History: history}
	for _, p := range history {
		out.TotalQuantity += p.Quantity
	}
	out.TotalQuantity = Round2(out.TotalQuantity)
	out.TotalCost = Round2(out.TotalQuantity * costPerUnit)
	return out
}
