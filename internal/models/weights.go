package models

// PriorityWeights are the named scoring weights handed to the scoring gateway.
type PriorityWeights struct {
	Urgency       float64 `json:"urgency" validate:"gte=0,lte=100"`
	Beneficiaries float64 `json:"beneficiaries" validate:"gte=0,lte=100"`
	Risk          float64 `json:"risk" validate:"gte=0,lte=100"`
	Feasibility   float64 `json:"feasibility" validate:"gte=0,lte=100"`
	Alignment     float64 `json:"alignment" validate:"gte=0,lte=100"`
}

// Total returns the sum of all weights.
func (w PriorityWeights) Total() float64 {
	return w.Urgency + w.Beneficiaries + w.Risk + w.Feasibility + w.Alignment
}

// DefaultPriorityWeights returns the weights used until an admin edits them.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{Urgency: 30, Beneficiaries: 25, Risk: 15, Feasibility: 15, Alignment: 15}
}
