package models

// ResourceType distinguishes the kind of pooled resource.
type ResourceType string

const (
	ResourceBudget         ResourceType = "BUDGET"
	ResourceMaterial       ResourceType = "MATERIAL"
	ResourceVolunteerSkill ResourceType = "VOLUNTEER_SKILL"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceBudget, ResourceMaterial, ResourceVolunteerSkill:
		return true
	}
	return false
}

// ResourceItem is a shared, depletable pool. Available stays within [0, Quantity].
type ResourceItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      ResourceType `json:"type"`
	Quantity  float64      `json:"quantity"`
	Unit      string       `json:"unit"`
	Available float64      `json:"available"`
}

// Utilization returns the consumed share of the pool in [0,1].
func (r ResourceItem) Utilization() float64 {
	if r.Quantity <= 0 {
		return 0
	}
	return 1 - r.Available/r.Quantity
}

// Restocked returns a copy with amount added to Available, capped at Quantity.
func (r ResourceItem) Restocked(amount float64) ResourceItem {
	if amount <= 0 {
		return r
	}
	r.Available += amount
	if r.Available > r.Quantity {
		r.Available = r.Quantity
	}
	return r
}
