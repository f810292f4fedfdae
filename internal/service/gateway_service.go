package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/givegoa/givegoa-api/internal/models"
)

// Gateway operation labels used in metrics and logs.
const (
	gatewayClassify = "classify"
	gatewayScore    = "score"
	gatewayOptimize = "optimize"
)

var errMalformedResponse = errors.New("malformed inference response")

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, model, prompt string, schema *genai.Schema) ([]byte, error)
}

// GatewayModels selects the model per operation.
type GatewayModels struct {
	Classify string
	Score    string
	Optimize string
}

// GatewayService calls the inference service for classification, scoring and allocation
// suggestions. It never mutates state and never returns an error: every failure is
// reported as the operation's fallback result.
type GatewayService struct {
	client    jsonGenerator
	models    GatewayModels
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewGatewayService constructs a GatewayService.
func NewGatewayService(client jsonGenerator, modelNames GatewayModels, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *GatewayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GatewayService{
		client:    client,
		models:    modelNames,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

type classificationPayload struct {
	Category         *string  `json:"category" validate:"required"`
	Confidence       *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Reasoning        *string  `json:"reasoning" validate:"required"`
	SuggestedUrgency *string  `json:"suggestedUrgency" validate:"required"`
	EstimatedBudget  *float64 `json:"estimatedBudget" validate:"required,gte=0"`
}

type scorePayload struct {
	Score     *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Breakdown *string  `json:"breakdown" validate:"required"`
}

type allocationPayload struct {
	RequestID       string   `json:"requestId" validate:"required"`
	AllocatedAmount *float64 `json:"allocatedAmount" validate:"required,gte=0"`
	Status          string   `json:"status"`
	Reason          string   `json:"reason"`
}

type optimizationPayload struct {
	Allocations     []allocationPayload `json:"allocations" validate:"required,dive"`
	TotalImpact     *float64            `json:"totalImpact" validate:"required"`
	RemainingBudget *float64            `json:"remainingBudget" validate:"required,gte=0"`
}

// Classify suggests a category, urgency and budget for an intake submission.
func (s *GatewayService) Classify(ctx context.Context, title, description string) models.ClassificationResult {
	start := s.now()
	var payload classificationPayload
	err := s.generate(ctx, s.models.Classify, classificationPrompt(title, description), classificationSchema, &payload)

	var result models.ClassificationResult
	if err == nil {
		result, err = s.toClassification(payload)
	}
	if err != nil {
		s.fallback(gatewayClassify, start, err)
		return models.FallbackClassification()
	}
	s.succeeded(gatewayClassify, start)
	return result
}

func (s *GatewayService) toClassification(payload classificationPayload) (models.ClassificationResult, error) {
	category, ok := models.ParseCategory(*payload.Category)
	if !ok {
		return models.ClassificationResult{}, fmt.Errorf("%w: unknown category %q", errMalformedResponse, *payload.Category)
	}
	urgency, ok := models.ParseUrgency(*payload.SuggestedUrgency)
	if !ok {
		return models.ClassificationResult{}, fmt.Errorf("%w: unknown urgency %q", errMalformedResponse, *payload.SuggestedUrgency)
	}
	return models.ClassificationResult{
		Outcome:          models.OutcomeSucceeded,
		Category:         category,
		Confidence:       *payload.Confidence,
		Reasoning:        *payload.Reasoning,
		SuggestedUrgency: urgency,
		EstimatedBudget:  *payload.EstimatedBudget,
	}, nil
}

// Score computes a 0-100 priority score for request using the configured weights.
func (s *GatewayService) Score(ctx context.Context, request models.SocialRequest, weights models.PriorityWeights) models.ScoreResult {
	start := s.now()
	var payload scorePayload
	if err := s.generate(ctx, s.models.Score, scoringPrompt(mustJSON(request), mustJSON(weights)), scoreSchema, &payload); err != nil {
		s.fallback(gatewayScore, start, err, zap.String("request_id", request.ID))
		return models.FallbackScore()
	}
	s.succeeded(gatewayScore, start)
	return models.ScoreResult{
		Outcome:   models.OutcomeSucceeded,
		Score:     *payload.Score,
		Breakdown: *payload.Breakdown,
	}
}

// Optimize proposes allocations across the PRIORITIZED requests. With nothing to
// allocate it answers locally with an empty plan that keeps the whole budget.
func (s *GatewayService) Optimize(ctx context.Context, requests []models.SocialRequest, resources []models.ResourceItem) models.OptimizationResult {
	budgetAvailable := 0.0
	for _, resource := range resources {
		if resource.Type == models.ResourceBudget {
			budgetAvailable = resource.Available
			break
		}
	}

	candidates := make([]models.SocialRequest, 0, len(requests))
	known := make(map[string]struct{}, len(requests))
	for _, request := range requests {
		if request.Status == models.StatusPrioritized {
			candidates = append(candidates, request)
			known[request.ID] = struct{}{}
		}
	}

	if len(candidates) == 0 {
		return models.OptimizationResult{
			Outcome: models.OutcomeSucceeded,
			Suggestion: &models.AllocationSuggestion{
				Allocations:     []models.Allocation{},
				RemainingBudget: budgetAvailable,
				BudgetAvailable: budgetAvailable,
				GeneratedAt:     s.now().UTC(),
			},
		}
	}

	start := s.now()
	var payload optimizationPayload
	err := s.generate(ctx, s.models.Optimize, optimizationPrompt(mustJSON(resources), mustJSON(candidates)), optimizationSchema, &payload)

	var suggestion *models.AllocationSuggestion
	if err == nil {
		suggestion, err = s.toSuggestion(payload, known, budgetAvailable)
	}
	if err != nil {
		s.fallback(gatewayOptimize, start, err, zap.Int("candidates", len(candidates)))
		return models.OptimizationResult{Outcome: models.OutcomeFallback}
	}
	s.succeeded(gatewayOptimize, start)
	return models.OptimizationResult{Outcome: models.OutcomeSucceeded, Suggestion: suggestion}
}

func (s *GatewayService) toSuggestion(payload optimizationPayload, known map[string]struct{}, budgetAvailable float64) (*models.AllocationSuggestion, error) {
	if *payload.RemainingBudget > budgetAvailable {
		return nil, fmt.Errorf("%w: remaining budget %.2f exceeds available %.2f", errMalformedResponse, *payload.RemainingBudget, budgetAvailable)
	}
	allocations := make([]models.Allocation, 0, len(payload.Allocations))
	for _, item := range payload.Allocations {
		if _, ok := known[item.RequestID]; !ok {
			return nil, fmt.Errorf("%w: allocation for unknown request %q", errMalformedResponse, item.RequestID)
		}
		allocations = append(allocations, models.Allocation{
			RequestID:       item.RequestID,
			AllocatedAmount: *item.AllocatedAmount,
			Status:          item.Status,
			Reason:          item.Reason,
		})
	}
	suggestion := &models.AllocationSuggestion{
		Allocations:     allocations,
		TotalImpact:     *payload.TotalImpact,
		RemainingBudget: *payload.RemainingBudget,
		BudgetAvailable: budgetAvailable,
		GeneratedAt:     s.now().UTC(),
	}
	if !suggestion.Covered() {
		return nil, fmt.Errorf("%w: allocations total %.2f but only %.2f is spent", errMalformedResponse, suggestion.Allocated(), suggestion.Consumed())
	}
	return suggestion, nil
}

func (s *GatewayService) generate(ctx context.Context, model, prompt string, schema *genai.Schema, dest interface{}) error {
	if s.client == nil {
		return errors.New("inference client not configured")
	}
	raw, err := s.client.GenerateJSON(ctx, model, prompt, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if err := s.validator.Struct(dest); err != nil {
		return fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	return nil
}

func (s *GatewayService) succeeded(operation string, start time.Time) {
	s.metrics.ObserveGatewayCall(operation, string(models.OutcomeSucceeded), s.now().Sub(start))
}

func (s *GatewayService) fallback(operation string, start time.Time, err error, fields ...zap.Field) {
	s.metrics.ObserveGatewayCall(operation, string(models.OutcomeFallback), s.now().Sub(start))
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	s.logger.Warn("inference call failed, using fallback", fields...)
}
