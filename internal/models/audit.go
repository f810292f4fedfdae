package models

import "time"

// AuditAction constants tag the logged user actions.
const (
	AuditActionSubmitRequest     = "SUBMIT_REQUEST"
	AuditActionScoreRequest      = "SCORE_REQUEST"
	AuditActionUpdateStatus      = "UPDATE_STATUS"
	AuditActionAllocateResources = "ALLOCATE_RESOURCES"
	AuditActionCreateResource    = "CREATE_RESOURCE"
	AuditActionRestockResource   = "RESTOCK_RESOURCE"
	AuditActionUpdateWeights     = "UPDATE_WEIGHTS"
)

// AuditLogEntry is an immutable record of a user action.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	TargetID  string    `json:"targetId"`
	Details   string    `json:"details"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	Action   string
	TargetID string
	Page     int
	PageSize int
}
