package models

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle position of a SocialRequest.
type RequestStatus string

const (
	StatusSubmitted   RequestStatus = "SUBMITTED"
	StatusClassified  RequestStatus = "CLASSIFIED"
	StatusPrioritized RequestStatus = "PRIORITIZED"
	StatusApproved    RequestStatus = "APPROVED"
	StatusFunded      RequestStatus = "FUNDED"
	StatusInProgress  RequestStatus = "IN_PROGRESS"
	StatusCompleted   RequestStatus = "COMPLETED"
	StatusRejected    RequestStatus = "REJECTED"
)

// StatusOrder is the forward lifecycle, excluding REJECTED.
var StatusOrder = []RequestStatus{
	StatusSubmitted,
	StatusClassified,
	StatusPrioritized,
	StatusApproved,
	StatusFunded,
	StatusInProgress,
	StatusCompleted,
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s == StatusRejected || s.rank() >= 0
}

// Terminal reports whether no further transitions are permitted from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// AtLeast reports whether s has reached other on the forward lifecycle.
func (s RequestStatus) AtLeast(other RequestStatus) bool {
	r := s.rank()
	return r >= 0 && r >= other.rank()
}

// Next returns the following lifecycle status, or false when s is terminal or rejected.
func (s RequestStatus) Next() (RequestStatus, bool) {
	r := s.rank()
	if r < 0 || r+1 >= len(StatusOrder) {
		return "", false
	}
	return StatusOrder[r+1], true
}

func (s RequestStatus) rank() int {
	for i, status := range StatusOrder {
		if status == s {
			return i
		}
	}
	return -1
}

// fundingSources lists the statuses from which an applied allocation may fund a request.
var fundingSources = map[RequestStatus]struct{}{
	StatusPrioritized: {},
	StatusApproved:    {},
}

// CanTransition reports whether the lifecycle permits moving from one status to another.
// Edges are the forward lifecycle one step at a time, REJECTED from any non-terminal
// status, and the allocation edge PRIORITIZED -> FUNDED.
func CanTransition(from, to RequestStatus) bool {
	if from.Terminal() || !from.Valid() {
		return false
	}
	if to == StatusRejected {
		return true
	}
	if next, ok := from.Next(); ok && next == to {
		return true
	}
	if to == StatusFunded {
		_, ok := fundingSources[from]
		return ok
	}
	return false
}

// Fundable reports whether an allocation may be applied to a request in status s.
func Fundable(s RequestStatus) bool {
	_, ok := fundingSources[s]
	return ok
}

// RequestCategory is the social-impact domain of a request.
type RequestCategory string

const (
	CategoryEducation            RequestCategory = "EDUCATION"
	CategoryHealthcare           RequestCategory = "HEALTHCARE"
	CategoryWaterSanitation      RequestCategory = "WATER_SANITATION"
	CategoryMaternalChildHealth  RequestCategory = "MATERNAL_CHILD_HEALTH"
	CategoryEnvironment          RequestCategory = "ENVIRONMENT"
	CategoryCommunityDevelopment RequestCategory = "COMMUNITY_DEVELOPMENT"
	CategoryDisasterRelief       RequestCategory = "DISASTER_RELIEF"
	CategoryUncategorized        RequestCategory = "UNCATEGORIZED"
)

// Categories lists every category in display order.
var Categories = []RequestCategory{
	CategoryEducation,
	CategoryHealthcare,
	CategoryWaterSanitation,
	CategoryMaternalChildHealth,
	CategoryEnvironment,
	CategoryCommunityDevelopment,
	CategoryDisasterRelief,
	CategoryUncategorized,
}

// ParseCategory normalises free text such as "Water sanitation" into a category.
func ParseCategory(raw string) (RequestCategory, bool) {
	candidate := RequestCategory(normaliseEnum(raw))
	for _, c := range Categories {
		if c == candidate {
			return c, true
		}
	}
	return "", false
}

// Urgency ranks how quickly a request needs attention.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// ParseUrgency normalises free text into an urgency level.
func ParseUrgency(raw string) (Urgency, bool) {
	switch u := Urgency(normaliseEnum(raw)); u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u, true
	}
	return "", false
}

func normaliseEnum(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "&", "_")
	value = strings.Join(strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/'
	}), "_")
	return value
}

// SocialRequest is a community aid or funding ask tracked through its lifecycle.
type SocialRequest struct {
	ID                         string          `json:"id"`
	TrackingID                 string          `json:"trackingId"`
	Title                      string          `json:"title"`
	Description                string          `json:"description"`
	Category                   RequestCategory `json:"category"`
	Urgency                    Urgency         `json:"urgency"`
	Beneficiaries              int             `json:"beneficiaries"`
	Location                   string          `json:"location"`
	Status                     RequestStatus   `json:"status"`
	CreatedAt                  time.Time       `json:"createdAt"`
	SubmittedBy                string          `json:"submittedBy"`
	PriorityScore              float64         `json:"priorityScore"`
	AIClassificationConfidence *float64        `json:"aiClassificationConfidence,omitempty"`
	AIReasoning                *string         `json:"aiReasoning,omitempty"`
	RequiredBudget             float64         `json:"requiredBudget"`
	AllocatedBudget            *float64        `json:"allocatedBudget,omitempty"`
	AssignedVolunteers         []string        `json:"assignedVolunteers"`
}

// Scored reports whether the priority score carries meaning for this request.
func (r SocialRequest) Scored() bool {
	return r.Status.AtLeast(StatusPrioritized)
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status   RequestStatus
	Category RequestCategory
	SortBy   string
}
