package models

import "time"

// Collection names one independently persisted collection.
type Collection string

const (
	CollectionRequests  Collection = "requests"
	CollectionResources Collection = "resources"
	CollectionLogs      Collection = "logs"
	CollectionWeights   Collection = "weights"
)

// Collections lists every persisted collection.
var Collections = []Collection{CollectionRequests, CollectionResources, CollectionLogs, CollectionWeights}

// State is the full application snapshot: requests, resources, audit log and weights.
type State struct {
	Requests  []SocialRequest `json:"requests"`
	Resources []ResourceItem  `json:"resources"`
	Logs      []AuditLogEntry `json:"logs"`
	Weights   PriorityWeights `json:"weights"`
}

// FindRequest returns the index of the request with id, or -1.
func (s *State) FindRequest(id string) int {
	for i := range s.Requests {
		if s.Requests[i].ID == id {
			return i
		}
	}
	return -1
}

// FindResource returns the index of the resource with id, or -1.
func (s *State) FindResource(id string) int {
	for i := range s.Resources {
		if s.Resources[i].ID == id {
			return i
		}
	}
	return -1
}

// BudgetResource returns the index of the first BUDGET resource, or -1.
func (s *State) BudgetResource() int {
	for i := range s.Resources {
		if s.Resources[i].Type == ResourceBudget {
			return i
		}
	}
	return -1
}

// DefaultRequests seeds the request collection on first load.
func DefaultRequests() []SocialRequest {
	confidence := 0.98
	allocated := 150000.0
	return []SocialRequest{{
		ID:                         "req1",
		TrackingID:                 "RG-2024-001",
		Title:                      "Rural School Solar Power",
		Description:                "Provide solar lighting for the Govt Primary School in Valpoi to allow evening study sessions.",
		Category:                   CategoryEducation,
		Urgency:                    UrgencyHigh,
		Beneficiaries:              120,
		Location:                   "Valpoi, Sattari",
		Status:                     StatusInProgress,
		CreatedAt:                  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		SubmittedBy:                "Village Council Valpoi",
		PriorityScore:              85,
		AIClassificationConfidence: &confidence,
		RequiredBudget:             150000,
		AllocatedBudget:            &allocated,
		AssignedVolunteers:         []string{"v1", "v2"},
	}}
}

// DefaultResources seeds the resource collection on first load.
func DefaultResources() []ResourceItem {
	return []ResourceItem{
		{ID: "res1", Name: "Annual Community Fund", Type: ResourceBudget, Quantity: 5000000, Unit: "INR", Available: 5000000},
		{ID: "res2", Name: "Medical Kits", Type: ResourceMaterial, Quantity: 200, Unit: "Kits", Available: 150},
		{ID: "res3", Name: "Solar Lanterns", Type: ResourceMaterial, Quantity: 500, Unit: "Units", Available: 500},
		{ID: "res4", Name: "Skilled Educators", Type: ResourceVolunteerSkill, Quantity: 15, Unit: "People", Available: 10},
		{ID: "res5", Name: "Engineers", Type: ResourceVolunteerSkill, Quantity: 5, Unit: "People", Available: 5},
	}
}

// DefaultState returns a freshly seeded snapshot.
func DefaultState() *State {
	return &State{
		Requests:  DefaultRequests(),
		Resources: DefaultResources(),
		Logs:      []AuditLogEntry{},
		Weights:   DefaultPriorityWeights(),
	}
}
