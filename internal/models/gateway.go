package models

// Outcome tags whether a gateway result came from the inference service or the fallback.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFallback  Outcome = "FALLBACK"
)

// ClassificationResult is the category and budget estimate for an intake submission.
type ClassificationResult struct {
	Outcome          Outcome         `json:"outcome"`
	Category         RequestCategory `json:"category"`
	Confidence       float64         `json:"confidence"`
	Reasoning        string          `json:"reasoning"`
	SuggestedUrgency Urgency         `json:"suggestedUrgency"`
	EstimatedBudget  float64         `json:"estimatedBudget"`
}

// FallbackClassification is returned whenever classification cannot be obtained.
func FallbackClassification() ClassificationResult {
	return ClassificationResult{
		Outcome:          OutcomeFallback,
		Category:         CategoryUncategorized,
		Confidence:       0,
		Reasoning:        "AI analysis failed.",
		SuggestedUrgency: UrgencyMedium,
		EstimatedBudget:  0,
	}
}

// ScoreResult is a 0-100 priority score with its explanation.
type ScoreResult struct {
	Outcome   Outcome `json:"outcome"`
	Score     float64 `json:"score"`
	Breakdown string  `json:"breakdown"`
}

// FallbackScore is returned whenever scoring cannot be obtained.
func FallbackScore() ScoreResult {
	return ScoreResult{
		Outcome:   OutcomeFallback,
		Score:     50,
		Breakdown: "Default score due to processing error.",
	}
}

// OptimizationResult wraps the optimizer output. Suggestion is nil on fallback.
type OptimizationResult struct {
	Outcome    Outcome               `json:"outcome"`
	Suggestion *AllocationSuggestion `json:"suggestion,omitempty"`
}
