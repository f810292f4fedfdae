package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

type requestClassifier interface {
	Classify(ctx context.Context, title, description string) models.ClassificationResult
}

type requestScorer interface {
	Score(ctx context.Context, request models.SocialRequest, weights models.PriorityWeights) models.ScoreResult
}

const trackingAttempts = 20

// RequestServiceConfig tunes request workflows.
type RequestServiceConfig struct {
	// AcceptScoreFallback applies the default score when scoring fails instead of
	// leaving the request unchanged.
	AcceptScoreFallback bool
}

// RequestService implements intake, scoring and status changes for social requests.
type RequestService struct {
	store      stateStore
	audit      auditRecorder
	classifier requestClassifier
	scorer     requestScorer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        RequestServiceConfig

	now          func() time.Time
	newID        func() string
	trackingCode func() int

	scoringMu sync.Mutex
	scoring   map[string]struct{}
}

// NewRequestService constructs a RequestService.
func NewRequestService(store stateStore, audit auditRecorder, classifier requestClassifier, scorer requestScorer, validate *validator.Validate, logger *zap.Logger, cfg RequestServiceConfig) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{
		store:        store,
		audit:        audit,
		classifier:   classifier,
		scorer:       scorer,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
		newID:        uuid.NewString,
		trackingCode: func() int { return 1000 + rand.IntN(9000) },
		scoring:      make(map[string]struct{}),
	}
}

// Submit classifies an intake submission and stores it as CLASSIFIED.
func (s *RequestService) Submit(ctx context.Context, actor models.User, input dto.SubmitRequestInput) (*models.SocialRequest, error) {
	if err := Authorize(actor.Role, ActionSubmitRequest, ""); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Urgency = strings.ToUpper(strings.TrimSpace(input.Urgency))
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	classification := s.classifier.Classify(ctx, input.Title, input.Description)

	urgency := models.UrgencyMedium
	if classification.Outcome == models.OutcomeSucceeded && classification.SuggestedUrgency != "" {
		urgency = classification.SuggestedUrgency
	} else if submitted, ok := models.ParseUrgency(input.Urgency); ok {
		urgency = submitted
	}

	createdAt := s.now().UTC()
	confidence := classification.Confidence
	reasoning := classification.Reasoning
	request := models.SocialRequest{
		ID:                         s.newID(),
		Title:                      input.Title,
		Description:                input.Description,
		Category:                   classification.Category,
		Urgency:                    urgency,
		Beneficiaries:              input.Beneficiaries,
		Location:                   input.Location,
		Status:                     models.StatusClassified,
		CreatedAt:                  createdAt,
		SubmittedBy:                actor.Name,
		PriorityScore:              0,
		AIClassificationConfidence: &confidence,
		AIReasoning:                &reasoning,
		RequiredBudget:             classification.EstimatedBudget,
		AssignedVolunteers:         []string{},
	}
	if request.Category == "" {
		request.Category = models.CategoryUncategorized
	}

	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		trackingID, err := s.uniqueTrackingID(state, createdAt.Year())
		if err != nil {
			return nil, err
		}
		request.TrackingID = trackingID
		state.Requests = append([]models.SocialRequest{request}, state.Requests...)
		s.audit.Record(state, actor, models.AuditActionSubmitRequest, request.ID, fmt.Sprintf("Submitted request: %s", request.Title))
		return []models.Collection{models.CollectionRequests, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to store request")
	}

	s.logger.Info("request submitted",
		zap.String("request_id", request.ID),
		zap.String("tracking_id", request.TrackingID),
		zap.String("category", string(request.Category)),
		zap.String("classification", string(classification.Outcome)),
	)
	return &request, nil
}

func (s *RequestService) uniqueTrackingID(state *models.State, year int) (string, error) {
	taken := make(map[string]struct{}, len(state.Requests))
	for _, existing := range state.Requests {
		taken[existing.TrackingID] = struct{}{}
	}
	for i := 0; i < trackingAttempts; i++ {
		candidate := fmt.Sprintf("RG-%d-%d", year, s.trackingCode())
		if _, exists := taken[candidate]; !exists {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique tracking id")
}

// Score asks the gateway for a priority score and moves the request to PRIORITIZED.
func (s *RequestService) Score(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error) {
	if err := Authorize(actor.Role, ActionScoreRequest, ""); err != nil {
		return nil, err
	}
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	idx := state.FindRequest(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	request := state.Requests[idx]
	if err := Authorize(actor.Role, ActionScoreRequest, request.Status); err != nil {
		return nil, err
	}

	if !s.beginScoring(id) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request is already being scored")
	}
	defer s.endScoring(id)

	result := s.scorer.Score(ctx, request, state.Weights)
	if result.Outcome != models.OutcomeSucceeded && !s.cfg.AcceptScoreFallback {
		s.logger.Warn("scoring unavailable, request left unchanged", zap.String("request_id", id))
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "scoring service unavailable; request left unchanged")
	}

	var scored models.SocialRequest
	_, err = s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		idx := state.FindRequest(id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		current := &state.Requests[idx]
		if err := Authorize(actor.Role, ActionScoreRequest, current.Status); err != nil {
			return nil, err
		}
		breakdown := result.Breakdown
		current.PriorityScore = result.Score
		current.AIReasoning = &breakdown
		current.Status = models.StatusPrioritized
		scored = *current
		s.audit.Record(state, actor, models.AuditActionScoreRequest, id, fmt.Sprintf("Calculated priority score: %s", formatNumber(result.Score)))
		return []models.Collection{models.CollectionRequests, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to store score")
	}
	return &scored, nil
}

func (s *RequestService) beginScoring(id string) bool {
	s.scoringMu.Lock()
	defer s.scoringMu.Unlock()
	if _, busy := s.scoring[id]; busy {
		return false
	}
	s.scoring[id] = struct{}{}
	return true
}

func (s *RequestService) endScoring(id string) {
	s.scoringMu.Lock()
	defer s.scoringMu.Unlock()
	delete(s.scoring, id)
}

// Approve moves a PRIORITIZED request to APPROVED.
func (s *RequestService) Approve(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error) {
	return s.transition(ctx, actor, id, ActionApproveRequest, func(models.RequestStatus) models.RequestStatus {
		return models.StatusApproved
	})
}

// Reject moves any non-terminal request to REJECTED.
func (s *RequestService) Reject(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error) {
	return s.transition(ctx, actor, id, ActionRejectRequest, func(models.RequestStatus) models.RequestStatus {
		return models.StatusRejected
	})
}

// Advance moves a funded request along to IN_PROGRESS and then COMPLETED.
func (s *RequestService) Advance(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error) {
	return s.transition(ctx, actor, id, ActionAdvanceRequest, func(current models.RequestStatus) models.RequestStatus {
		next, _ := current.Next()
		return next
	})
}

func (s *RequestService) transition(ctx context.Context, actor models.User, id string, action Action, target func(models.RequestStatus) models.RequestStatus) (*models.SocialRequest, error) {
	if err := Authorize(actor.Role, action, ""); err != nil {
		return nil, err
	}
	var updated models.SocialRequest
	_, err := s.store.Mutate(ctx, func(state *models.State) ([]models.Collection, error) {
		idx := state.FindRequest(id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		current := &state.Requests[idx]
		if err := Authorize(actor.Role, action, current.Status); err != nil {
			return nil, err
		}
		next := target(current.Status)
		if !models.CanTransition(current.Status, next) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot move request from %s to %s", current.Status, next))
		}
		current.Status = next
		updated = *current
		s.audit.Record(state, actor, models.AuditActionUpdateStatus, id, fmt.Sprintf("Updated status to %s", next))
		return []models.Collection{models.CollectionRequests, models.CollectionLogs}, nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "failed to update request status")
	}
	return &updated, nil
}

// List returns requests matching filter.
func (s *RequestService) List(ctx context.Context, actor models.User, filter models.RequestFilter) ([]models.SocialRequest, error) {
	if err := Authorize(actor.Role, ActionViewRequests, ""); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.Category != "" {
		category, ok := models.ParseCategory(string(filter.Category))
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", filter.Category))
		}
		filter.Category = category
	}

	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}

	result := make([]models.SocialRequest, 0, len(state.Requests))
	for _, request := range state.Requests {
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.Category != "" && request.Category != filter.Category {
			continue
		}
		result = append(result, request)
	}

	switch filter.SortBy {
	case dto.SortByPriority:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].PriorityScore > result[j].PriorityScore
		})
	case dto.SortByRecent:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

// Get returns a single request.
func (s *RequestService) Get(ctx context.Context, actor models.User, id string) (*models.SocialRequest, error) {
	if err := Authorize(actor.Role, ActionViewRequests, ""); err != nil {
		return nil, err
	}
	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	idx := state.FindRequest(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	request := state.Requests[idx]
	return &request, nil
}

func formatNumber(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.2f", value)
}
