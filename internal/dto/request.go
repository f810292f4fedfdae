package dto

// SubmitRequestInput is the intake form payload.
type SubmitRequestInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required,max=5000"`
	Beneficiaries int    `json:"beneficiaries" validate:"gte=0"`
	Location      string `json:"location" validate:"required,max=200"`
	Urgency       string `json:"urgency" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

// Request list sort orders.
const (
	SortByPriority = "priority"
	SortByRecent   = "recent"
)

// ListRequestsQuery captures request list filters.
type ListRequestsQuery struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Sort     string `form:"sort" validate:"omitempty,oneof=priority recent"`
}
