package service

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

const weightsTotal = 100

// WeightsService exposes the scoring weights.
type WeightsService struct {
	store     stateStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightsService constructs a WeightsService.
func NewWeightsService(store stateStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *WeightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WeightsService{store: store, audit: audit, validator: validate, logger: logger}
}

// Get returns the current weights.
func (s *WeightsService) Get(ctx context.Context, actor models.User) (*models.PriorityWeights, error) {
	if err := Authorize(actor.Role, ActionViewWeights, ""); err != nil {
		return nil, err
	}
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	weights := state.Weights
	return &weights, nil
}

// Update replaces the weights. Each must be within [0,100] and together they must sum to 100.
func (s *WeightsService) Update(ctx context.Context, actor models.User, weights models.PriorityWeights) (*models.PriorityWeights, error) {
	if err := Authorize(actor.Role, ActionUpdateWeights, ""); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "each weight must be between 0 and 100")
	}
	if math.Abs(weights.Total()-weightsTotal) > 1e-9 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weights must sum to 100, got %s", formatNumber(weights.Total())))
	}

	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		state.Weights = weights
		s.audit.Record(state, actor, models.AuditActionUpdateWeights, "weights",
			fmt.Sprintf("Updated weights: urgency %s, beneficiaries %s, risk %s, feasibility %s, alignment %s",
				formatNumber(weights.Urgency), formatNumber(weights.Beneficiaries), formatNumber(weights.Risk),
				formatNumber(weights.Feasibility), formatNumber(weights.Alignment)))
		return []models.Collection{models.CollectionWeights, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to store weights")
	}
	return &weights, nil
}
