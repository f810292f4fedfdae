package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/givegoa/givegoa-api/internal/models"
)

const organisationName = "the Rotary Club of Panjim (GiveGoa)"

func classificationPrompt(title, description string) string {
	categories := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		if c != models.CategoryUncategorized {
			categories = append(categories, string(c))
		}
	}
	return fmt.Sprintf(`Classify this social impact request for %s.
Title: %s
Description: %s
Categories: %s.
Urgency levels: LOW, MEDIUM, HIGH, CRITICAL.
Estimate the budget in INR. Respond in JSON only.`,
		organisationName, title, description, strings.Join(categories, ", "))
}

func scoringPrompt(request, weights []byte) string {
	return fmt.Sprintf(`Calculate a priority score (0-100) for this NGO request.
Request: %s
Weights: %s
Consider: impact per rupee, Rotary focus areas, urgency, and feasibility.
Explain the score in the breakdown.`, request, weights)
}

func optimizationPrompt(resources, requests []byte) string {
	return fmt.Sprintf(`Act as a Resource Optimization Engine for an NGO.
Available Resources: %s
Pending Requests: %s
Goal: Maximize social impact (priority score) within budget and resource constraints.
Recommend which projects to fund fully or partially, using the request ids given. Provide reasoning.
remainingBudget is the BUDGET resource's available amount minus the sum of allocated amounts.`, resources, requests)
}

func mustJSON(value interface{}) []byte {
	raw, err := json.Marshal(value)
	if err != nil {
		return []byte("null")
	}
	return raw
}

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category":         {Type: genai.TypeString, Enum: categoryNames()},
		"confidence":       {Type: genai.TypeNumber, Description: "Between 0 and 1"},
		"reasoning":        {Type: genai.TypeString},
		"suggestedUrgency": {Type: genai.TypeString, Enum: []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}},
		"estimatedBudget":  {Type: genai.TypeNumber, Description: "Estimated cost in INR"},
	},
	Required: []string{"category", "confidence", "reasoning", "suggestedUrgency", "estimatedBudget"},
}

var scoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":     {Type: genai.TypeNumber},
		"breakdown": {Type: genai.TypeString, Description: "Explainable scoring output"},
	},
	Required: []string{"score", "breakdown"},
}

var optimizationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"allocations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"requestId":       {Type: genai.TypeString},
					"allocatedAmount": {Type: genai.TypeNumber},
					"status":          {Type: genai.TypeString},
					"reason":          {Type: genai.TypeString},
				},
				Required: []string{"requestId", "allocatedAmount", "status", "reason"},
			},
		},
		"totalImpact":     {Type: genai.TypeNumber},
		"remainingBudget": {Type: genai.TypeNumber},
	},
	Required: []string{"allocations", "totalImpact", "remainingBudget"},
}

func categoryNames() []string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return names
}
