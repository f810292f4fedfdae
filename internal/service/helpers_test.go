package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/internal/repository"
)

var (
	adminUser     = models.User{ID: "u1", Name: "Admin User", Email: "admin@rotarypanjim.org", Role: models.RoleAdmin}
	pmUser        = models.User{ID: "u2", Name: "PM John", Email: "pm@rotarypanjim.org", Role: models.RoleProjectManager}
	volunteerUser = models.User{ID: "u3", Name: "Volunteer Jane", Email: "jane@volunteer.org", Role: models.RoleVolunteer}
	requesterUser = models.User{ID: "u4", Name: "Community Member", Email: "member@goa.com", Role: models.RoleCommunityRequester}
)

func newStateRepo(t *testing.T) *repository.StateRepository {
	t.Helper()
	return repository.NewStateRepository(repository.NewMemoryBucketStore(), "", nil)
}

func seedRequests(t *testing.T, repo *repository.StateRepository, requests ...models.SocialRequest) {
	t.Helper()
	_, err := repo.Mutate(context.Background(), func(state *models.State) ([]models.Collection, error) {
		state.Requests = append(state.Requests, requests...)
		return []models.Collection{models.CollectionRequests}, nil
	})
	require.NoError(t, err)
}

func loadTestState(t *testing.T, repo *repository.StateRepository) *models.State {
	t.Helper()
	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	return state
}

func requestByID(t *testing.T, repo *repository.StateRepository, id string) models.SocialRequest {
	t.Helper()
	state := loadTestState(t, repo)
	idx := state.FindRequest(id)
	require.GreaterOrEqual(t, idx, 0, "request %s missing", id)
	return state.Requests[idx]
}

func testRequest(id string, status models.RequestStatus, required float64) models.SocialRequest {
	return models.SocialRequest{
		ID:                 id,
		TrackingID:         "RG-2025-" + id,
		Title:              "Request " + id,
		Description:        "Community need " + id,
		Category:           models.CategoryHealthcare,
		Urgency:            models.UrgencyHigh,
		Beneficiaries:      50,
		Location:           "Mapusa",
		Status:             status,
		CreatedAt:          time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		SubmittedBy:        "PM John",
		RequiredBudget:     required,
		AssignedVolunteers: []string{},
	}
}

func newTestAudit(repo *repository.StateRepository) *AuditService {
	audit := NewAuditService(repo, nil, nil, nil)
	audit.now = func() time.Time { return time.Date(2025, time.April, 2, 9, 30, 0, 0, time.UTC) }
	return audit
}

type classifierStub struct {
	result models.ClassificationResult
	calls  int
}

func (s *classifierStub) Classify(context.Context, string, string) models.ClassificationResult {
	s.calls++
	return s.result
}

type scorerStub struct {
	result  models.ScoreResult
	calls   int32
	entered chan struct{}
	release chan struct{}
	during  func()
}

func (s *scorerStub) Score(context.Context, models.SocialRequest, models.PriorityWeights) models.ScoreResult {
	atomic.AddInt32(&s.calls, 1)
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.during != nil {
		s.during()
	}
	return s.result
}

type optimizerStub struct {
	mu      sync.Mutex
	result  models.OptimizationResult
	calls   int
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *optimizerStub) Optimize(context.Context, []models.SocialRequest, []models.ResourceItem) models.OptimizationResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.entered != nil {
		s.once.Do(func() { close(s.entered) })
	}
	if s.release != nil {
		<-s.release
	}
	return s.result
}

func (s *optimizerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
