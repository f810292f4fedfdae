package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

type allocationOptimizer interface {
	Optimize(ctx context.Context, requests []models.SocialRequest, resources []models.ResourceItem) models.OptimizationResult
}

const suggestFlightKey = "suggest"

// AllocationService runs the optimizer and commits accepted plans.
type AllocationService struct {
	store     stateStore
	audit     auditRecorder
	optimizer allocationOptimizer
	validator *validator.Validate
	logger    *zap.Logger
	flights   singleflight.Group
}

// NewAllocationService constructs an AllocationService.
func NewAllocationService(store stateStore, audit auditRecorder, optimizer allocationOptimizer, validate *validator.Validate, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AllocationService{store: store, audit: audit, optimizer: optimizer, validator: validate, logger: logger}
}

// Suggest asks the optimizer for a plan over the current PRIORITIZED requests.
// Concurrent callers share a single optimizer run.
func (s *AllocationService) Suggest(ctx context.Context, actor models.User) (*models.AllocationSuggestion, error) {
	if err := Authorize(actor.Role, ActionRunOptimizer, ""); err != nil {
		return nil, err
	}

	// joined callers must not lose the run when the first caller goes away
	flightCtx := context.WithoutCancel(ctx)
	value, err, shared := s.flights.Do(suggestFlightKey, func() (interface{}, error) {
		state, err := loadState(flightCtx, s.store)
		if err != nil {
			return nil, err
		}
		result := s.optimizer.Optimize(flightCtx, state.Requests, state.Resources)
		if result.Suggestion == nil {
			return nil, appErrors.Clone(appErrors.ErrUnavailable, "allocation optimizer unavailable")
		}
		return result.Suggestion, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("optimizer result shared between callers")
	}

	suggestion := *value.(*models.AllocationSuggestion)
	suggestion.Allocations = append([]models.Allocation(nil), suggestion.Allocations...)
	return &suggestion, nil
}

// Apply commits an accepted suggestion atomically: every allocation is applied and the
// budget is debited, or nothing changes.
func (s *AllocationService) Apply(ctx context.Context, actor models.User, suggestion models.AllocationSuggestion) (*dto.AllocationApplyResponse, error) {
	if err := Authorize(actor.Role, ActionApplyAllocation, ""); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(suggestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation plan")
	}
	seen := make(map[string]struct{}, len(suggestion.Allocations))
	for _, allocation := range suggestion.Allocations {
		if _, dup := seen[allocation.RequestID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("request %s is allocated more than once", allocation.RequestID))
		}
		seen[allocation.RequestID] = struct{}{}
	}
	consumed := suggestion.Consumed()
	if consumed < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remaining budget cannot exceed the budget available at suggestion time")
	}
	if !suggestion.Covered() {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("allocations total %s but the plan only spends %s", formatNumber(suggestion.Allocated()), formatNumber(consumed)))
	}

	result := &dto.AllocationApplyResponse{Consumed: consumed}
	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		budgetIdx := state.BudgetResource()
		if budgetIdx >= 0 && suggestion.BudgetAvailable > state.Resources[budgetIdx].Available {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
				fmt.Sprintf("plan was built on %s but only %s is available", formatNumber(suggestion.BudgetAvailable), formatNumber(state.Resources[budgetIdx].Available)))
		}
		if consumed > 0 {
			if budgetIdx < 0 {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no budget resource to draw from")
			}
			if consumed > state.Resources[budgetIdx].Available {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
					fmt.Sprintf("plan consumes %s but only %s is available", formatNumber(consumed), formatNumber(state.Resources[budgetIdx].Available)))
			}
		}

		updated := make([]models.SocialRequest, 0, len(suggestion.Allocations))
		for _, allocation := range suggestion.Allocations {
			idx := state.FindRequest(allocation.RequestID)
			if idx < 0 {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", allocation.RequestID))
			}
			request := &state.Requests[idx]
			if err := Authorize(actor.Role, ActionApplyAllocation, request.Status); err != nil {
				return nil, err
			}

			amount := allocation.AllocatedAmount
			request.AllocatedBudget = &amount
			reason := allocation.Reason
			request.AIReasoning = &reason
			if amount >= request.RequiredBudget && models.CanTransition(request.Status, models.StatusFunded) {
				request.Status = models.StatusFunded
				result.Funded++
			}
			updated = append(updated, *request)
		}

		touched := []models.Collection{models.CollectionRequests, models.CollectionLogs}
		targetID := "allocation"
		if budgetIdx >= 0 {
			state.Resources[budgetIdx].Available -= consumed
			budget := state.Resources[budgetIdx]
			result.Budget = &budget
			targetID = budget.ID
			touched = append(touched, models.CollectionResources)
		}

		s.audit.Record(state, actor, models.AuditActionAllocateResources, targetID,
			fmt.Sprintf("Applied %d allocations (%d funded), consumed %s", len(suggestion.Allocations), result.Funded, formatNumber(consumed)))
		result.Requests = updated
		return touched, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to apply allocation")
	}

	s.logger.Info("allocation applied",
		zap.Int("allocations", len(result.Requests)),
		zap.Int("funded", result.Funded),
		zap.Float64("consumed", consumed),
	)
	return result, nil
}
