package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

// ResourceService manages the shared resource pools.
type ResourceService struct {
	store     stateStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewResourceService constructs a ResourceService.
func NewResourceService(store stateStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResourceService{store: store, audit: audit, validator: validate, logger: logger, newID: uuid.NewString}
}

// List returns every resource pool.
func (s *ResourceService) List(ctx context.Context, actor models.User) ([]models.ResourceItem, error) {
	if err := Authorize(actor.Role, ActionViewResources, ""); err != nil {
		return nil, err
	}
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return state.Resources, nil
}

// Create adds a resource pool. Available defaults to the full quantity.
func (s *ResourceService) Create(ctx context.Context, actor models.User, input dto.CreateResourceInput) (*models.ResourceItem, error) {
	if err := Authorize(actor.Role, ActionCreateResource, ""); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	input.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	available := input.Quantity
	if input.Available != nil {
		available = *input.Available
	}
	if available > input.Quantity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "available cannot exceed quantity")
	}

	resource := models.ResourceItem{
		ID:        s.newID(),
		Name:      input.Name,
		Type:      models.ResourceType(input.Type),
		Quantity:  input.Quantity,
		Unit:      input.Unit,
		Available: available,
	}

	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		state.Resources = append(state.Resources, resource)
		s.audit.Record(state, actor, models.AuditActionCreateResource, resource.ID,
			fmt.Sprintf("Added resource: %s (%s %s)", resource.Name, formatNumber(resource.Quantity), resource.Unit))
		return []models.Collection{models.CollectionResources, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to store resource")
	}
	return &resource, nil
}

// Restock adds amount to a pool's available stock, capped at its quantity.
func (s *ResourceService) Restock(ctx context.Context, actor models.User, id string, input dto.RestockInput) (*models.ResourceItem, error) {
	if err := Authorize(actor.Role, ActionRestockResource, ""); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "restock amount must be positive")
	}

	var restocked models.ResourceItem
	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		idx := state.FindResource(id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		before := state.Resources[idx].Available
		state.Resources[idx] = state.Resources[idx].Restocked(input.Amount)
		restocked = state.Resources[idx]
		s.audit.Record(state, actor, models.AuditActionRestockResource, id,
			fmt.Sprintf("Restocked %s: %s -> %s %s", restocked.Name, formatNumber(before), formatNumber(restocked.Available), restocked.Unit))
		return []models.Collection{models.CollectionResources, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to restock resource")
	}
	return &restocked, nil
}
