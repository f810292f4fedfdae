package dto

import (
	"time"

	"github.com/givegoa/givegoa-api/internal/models"
)

// DashboardResponse is the aggregated overview payload.
type DashboardResponse struct {
	Totals      DashboardTotals        `json:"totals"`
	Categories  []CategoryCount        `json:"categories"`
	Pipeline    []StatusCount          `json:"pipeline"`
	TopPriority []models.SocialRequest `json:"topPriority"`
	Resources   []ResourceUtilization  `json:"resources"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// DashboardTotals holds the headline figures.
type DashboardTotals struct {
	Requests      int     `json:"requests"`
	Pending       int     `json:"pending"`
	Active        int     `json:"active"`
	Completed     int     `json:"completed"`
	Impact        int     `json:"impact"`
	TotalBudget   float64 `json:"totalBudget"`
	BudgetUsed    float64 `json:"budgetUsed"`
	BudgetUsedPct float64 `json:"budgetUsedPct"`
}

// CategoryCount is the number of requests per category.
type CategoryCount struct {
	Category models.RequestCategory `json:"category"`
	Count    int                    `json:"count"`
}

// StatusCount is the number of requests per lifecycle status.
type StatusCount struct {
	Status models.RequestStatus `json:"status"`
	Count  int                  `json:"count"`
}

// ResourceUtilization reports how much of a pool is in use.
type ResourceUtilization struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        models.ResourceType `json:"type"`
	Available   float64             `json:"available"`
	Quantity    float64             `json:"quantity"`
	Unit        string              `json:"unit"`
	Utilization float64             `json:"utilization"`
	LowStock    bool                `json:"lowStock"`
}
