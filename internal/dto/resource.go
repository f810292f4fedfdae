package dto

// CreateResourceInput adds a new resource pool.
type CreateResourceInput struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Type      string   `json:"type" validate:"required,oneof=BUDGET MATERIAL VOLUNTEER_SKILL"`
	Quantity  float64  `json:"quantity" validate:"gte=0"`
	Unit      string   `json:"unit" validate:"required,max=40"`
	Available *float64 `json:"available" validate:"omitempty,gte=0"`
}

// RestockInput replenishes a resource pool.
type RestockInput struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}
