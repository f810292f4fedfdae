package dto

import "github.com/givegoa/givegoa-api/internal/models"

// AllocationApplyResponse summarises a committed allocation plan.
type AllocationApplyResponse struct {
	Requests []models.SocialRequest `json:"requests"`
	Budget   *models.ResourceItem   `json:"budget,omitempty"`
	Consumed float64                `json:"consumed"`
	Funded   int                    `json:"funded"`
}
