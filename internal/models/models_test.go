package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{StatusSubmitted, StatusClassified, true},
		{StatusClassified, StatusPrioritized, true},
		{StatusClassified, StatusApproved, false},
		{StatusPrioritized, StatusApproved, true},
		{StatusPrioritized, StatusFunded, true},
		{StatusApproved, StatusFunded, true},
		{StatusFunded, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFunded, false},
		{StatusClassified, StatusRejected, true},
		{StatusInProgress, StatusRejected, true},
		{StatusCompleted, StatusRejected, false},
		{StatusRejected, StatusClassified, false},
		{StatusPrioritized, StatusClassified, false},
		{RequestStatus("DRAFT"), StatusClassified, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusHelpers(t *testing.T) {
	next, ok := StatusFunded.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, next)

	_, ok = StatusCompleted.Next()
	assert.False(t, ok)
	_, ok = StatusRejected.Next()
	assert.False(t, ok)

	assert.True(t, StatusFunded.AtLeast(StatusPrioritized))
	assert.False(t, StatusRejected.AtLeast(StatusSubmitted))
	assert.True(t, StatusRejected.Valid())
	assert.False(t, RequestStatus("done").Valid())
}

func TestParseCategory(t *testing.T) {
	cases := map[string]RequestCategory{
		"EDUCATION":               CategoryEducation,
		"water & sanitation":      CategoryWaterSanitation,
		"Maternal/Child Health":   CategoryMaternalChildHealth,
		" community-development ": CategoryCommunityDevelopment,
		"disaster_relief":         CategoryDisasterRelief,
	}
	for raw, want := range cases {
		got, ok := ParseCategory(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseCategory("sports")
	assert.False(t, ok)
}

func TestParseUrgency(t *testing.T) {
	got, ok := ParseUrgency(" critical ")
	assert.True(t, ok)
	assert.Equal(t, UrgencyCritical, got)

	_, ok = ParseUrgency("urgent")
	assert.False(t, ok)
}

func TestResourceRestockedCapsAtQuantity(t *testing.T) {
	kits := ResourceItem{ID: "res2", Quantity: 200, Available: 150}

	assert.Equal(t, 180.0, kits.Restocked(30).Available)
	assert.Equal(t, 200.0, kits.Restocked(500).Available)
	assert.Equal(t, 150.0, kits.Restocked(-10).Available)
	assert.InDelta(t, 0.25, kits.Utilization(), 1e-9)
	assert.Zero(t, ResourceItem{}.Utilization())
}

func TestDefaultStateSeeds(t *testing.T) {
	state := DefaultState()

	assert.Len(t, state.Requests, 1)
	assert.Len(t, state.Resources, 5)
	assert.Empty(t, state.Logs)
	assert.Equal(t, 100.0, state.Weights.Total())
	assert.Equal(t, 0, state.BudgetResource())
	assert.Equal(t, -1, state.FindRequest("missing"))
	assert.Equal(t, 4, state.FindResource("res5"))
}

func TestAllocationSuggestionConsumed(t *testing.T) {
	s := AllocationSuggestion{BudgetAvailable: 5000000, RemainingBudget: 4850000}
	assert.Equal(t, 150000.0, s.Consumed())
}

func TestAllocationSuggestionCovered(t *testing.T) {
	s := AllocationSuggestion{
		Allocations:     []Allocation{{RequestID: "a", AllocatedAmount: 100000}, {RequestID: "b", AllocatedAmount: 50000}},
		BudgetAvailable: 5000000,
		RemainingBudget: 4850000,
	}
	assert.Equal(t, 150000.0, s.Allocated())
	assert.True(t, s.Covered())

	s.RemainingBudget = 4900000
	assert.False(t, s.Covered())

	unpaid := AllocationSuggestion{Allocations: []Allocation{{RequestID: "a", AllocatedAmount: 1000000}}}
	assert.False(t, unpaid.Covered())
}
