package models

import "time"

// Allocation is one optimizer recommendation for a request.
type Allocation struct {
	RequestID       string  `json:"requestId" validate:"required"`
	AllocatedAmount float64 `json:"allocatedAmount" validate:"gte=0"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason"`
}

// AllocationSuggestion is the optimizer output reviewed by staff before it is applied.
// BudgetAvailable is the BUDGET pool's available amount when the suggestion was produced.
type AllocationSuggestion struct {
	Allocations     []Allocation `json:"allocations" validate:"dive"`
	TotalImpact     float64      `json:"totalImpact"`
	RemainingBudget float64      `json:"remainingBudget" validate:"gte=0"`
	BudgetAvailable float64      `json:"budgetAvailable" validate:"gte=0"`
	GeneratedAt     time.Time    `json:"generatedAt"`
}

// Consumed returns the budget the suggestion spends.
func (s AllocationSuggestion) Consumed() float64 {
	return s.BudgetAvailable - s.RemainingBudget
}

// allocationTolerance absorbs rounding in amounts produced by the optimizer.
const allocationTolerance = 0.01

// Allocated returns the sum of every allocated amount.
func (s AllocationSuggestion) Allocated() float64 {
	total := 0.0
	for _, allocation := range s.Allocations {
		total += allocation.AllocatedAmount
	}
	return total
}

// Covered reports whether the spent budget pays for every allocation in the plan.
func (s AllocationSuggestion) Covered() bool {
	return s.Allocated() <= s.Consumed()+allocationTolerance
}
