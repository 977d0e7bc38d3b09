package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDividesPoolByCattleCount(t *testing.T) {
	general := []Record{rec(t, day(2024, 1, 5), 40)}

	a := Allocate(nil, general, 4, 2.5)

	require.Len(t, a.History, 1)
	assert.Equal(t, 10.0, a.History[0].Quantity)
	assert.Equal(t, 10.0, a.TotalQuantity)
	assert.Equal(t, 25.0, a.TotalCost)
}

func TestAllocateMergesPersonalAndPoolSameDay(t *testing.T) {
	personal := []Record{rec(t, day(2024, 1, 5), 3)}
	general := []Record{rec(t, day(2024, 1, 5), 10)}

	a := Allocate(personal, general, 2, 1)

	require.Len(t, a.History, 1)
	assert.Equal(t, 8.0, a.History[0].Quantity)
	assert.Equal(t, 8.0, a.TotalCost)
}

func TestAllocateZeroCattleCountFloorsDivisor(t *testing.T) {
	general := []Record{rec(t, day(2024, 1, 5), 12)}

	a := Allocate(nil, general, 0, 1)

	require.Len(t, a.History, 1)
	assert.Equal(t, 12.0, a.History[0].Quantity)
}

func TestAllocateHistorySortedAscending(t *testing.T) {
	personal := []Record{
		rec(t, day(2024, 1, 7), 1),
		rec(t, day(2024, 1, 3), 2),
		rec(t, day(2024, 1, 5), 3),
	}

	a := Allocate(personal, nil, 1, 0)

	require.Len(t, a.History, 3)
	assert.Equal(t, day(2024, 1, 3), a.History[0].Date)
	assert.Equal(t, day(2024, 1, 5), a.History[1].Date)
	assert.Equal(t, day(2024, 1, 7), a.History[2].Date)
}

func TestAllocateEmptyInput(t *testing.T) {
	a := Allocate(nil, nil, 3, 5)
	assert.Empty(t, a.History)
	assert.Zero(t, a.TotalQuantity)
	assert.Zero(t, a.TotalCost)
}

func TestAllocateRoundsShares(t *testing.T) {
	general := []Record{rec(t, day(2024, 1, 5), 10)}

	a := Allocate(nil, general, 3, 3)

	require.Len(t, a.History, 1)
	assert.Equal(t, 3.33, a.History[0].Quantity)
	assert.Equal(t, 9.99, a.TotalCost)
}
