package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/internal/repository"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

func newTestRequestService(repo *repository.StateRepository, classifier *classifierStub, scorer *scorerStub, cfg RequestServiceConfig) *RequestService {
	if classifier == nil {
		classifier = &classifierStub{result: models.FallbackClassification()}
	}
	if scorer == nil {
		scorer = &scorerStub{result: models.ScoreResult{Outcome: models.OutcomeSucceeded, Score: 72, Breakdown: "strong community impact"}}
	}
	return NewRequestService(repo, newTestAudit(repo), classifier, scorer, nil, nil, cfg)
}

func TestRequestServiceSubmitCreatesClassifiedRequest(t *testing.T) {
	repo := newStateRepo(t)
	classifier := &classifierStub{result: models.ClassificationResult{
		Outcome:          models.OutcomeSucceeded,
		Category:         models.CategoryWaterSanitation,
		Confidence:       0.91,
		Reasoning:        "Drinking water access",
		SuggestedUrgency: models.UrgencyCritical,
		EstimatedBudget:  250000,
	}}
	svc := newTestRequestService(repo, classifier, nil, RequestServiceConfig{})

	created, err := svc.Submit(context.Background(), requesterUser, dto.SubmitRequestInput{
		Title:         "  Village well  ",
		Description:   "Repair the well in Bicholim",
		Beneficiaries: 300,
		Location:      "Bicholim",
		Urgency:       "low",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusClassified, created.Status)
	assert.Equal(t, "Village well", created.Title)
	assert.Equal(t, models.CategoryWaterSanitation, created.Category)
	assert.Equal(t, models.UrgencyCritical, created.Urgency)
	assert.Equal(t, 250000.0, created.RequiredBudget)
	assert.Equal(t, "Community Member", created.SubmittedBy)
	assert.Zero(t, created.PriorityScore)
	require.NotNil(t, created.AIClassificationConfidence)
	assert.Equal(t, 0.91, *created.AIClassificationConfidence)
	assert.Regexp(t, regexp.MustCompile(`^RG-\d{4}-\d{4}$`), created.TrackingID)

	state := loadTestState(t, repo)
	require.Len(t, state.Requests, 2)
	assert.Equal(t, created.ID, state.Requests[0].ID)
	require.Len(t, state.Logs, 1)
	assert.Equal(t, models.AuditActionSubmitRequest, state.Logs[0].Action)
	assert.Equal(t, created.ID, state.Logs[0].TargetID)
	assert.Equal(t, "Submitted request: Village well", state.Logs[0].Details)
}

func TestRequestServiceSubmitFallbackKeepsSubmittedUrgency(t *testing.T) {
	repo := newStateRepo(t)
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})

	created, err := svc.Submit(context.Background(), pmUser, dto.SubmitRequestInput{
		Title:       "Flood relief kits",
		Description: "Kits for families in Ponda",
		Location:    "Ponda",
		Urgency:     "HIGH",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, created.Category)
	assert.Equal(t, models.UrgencyHigh, created.Urgency)
	assert.Zero(t, created.RequiredBudget)
	assert.Equal(t, "AI analysis failed.", *created.AIReasoning)
}

func TestRequestServiceSubmitRejectsInvalidInput(t *testing.T) {
	repo := newStateRepo(t)
	classifier := &classifierStub{result: models.FallbackClassification()}
	svc := newTestRequestService(repo, classifier, nil, RequestServiceConfig{})

	_, err := svc.Submit(context.Background(), adminUser, dto.SubmitRequestInput{Description: "no title", Location: "Panjim"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Submit(context.Background(), volunteerUser, dto.SubmitRequestInput{Title: "t", Description: "d", Location: "l"})
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	assert.Zero(t, classifier.calls)
	assert.Empty(t, loadTestState(t, repo).Logs)
}

func TestRequestServiceUniqueTrackingIDs(t *testing.T) {
	repo := newStateRepo(t)
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})
	codes := []int{1234, 1234, 5678}
	svc.trackingCode = func() int {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	first, err := svc.Submit(context.Background(), adminUser, dto.SubmitRequestInput{Title: "a", Description: "a", Location: "a"})
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), adminUser, dto.SubmitRequestInput{Title: "b", Description: "b", Location: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, first.TrackingID, second.TrackingID)
	assert.Contains(t, second.TrackingID, "5678")
}

func TestRequestServiceScorePrioritizes(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 100000))
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})

	scored, err := svc.Score(context.Background(), volunteerUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPrioritized, scored.Status)
	assert.Equal(t, 72.0, scored.PriorityScore)
	assert.Equal(t, "strong community impact", *scored.AIReasoning)

	state := loadTestState(t, repo)
	require.Len(t, state.Logs, 1)
	assert.Equal(t, models.AuditActionScoreRequest, state.Logs[0].Action)
	assert.Equal(t, "Calculated priority score: 72", state.Logs[0].Details)
	assert.Equal(t, "Volunteer Jane", state.Logs[0].UserName)
}

func TestRequestServiceScoreOnlyWhileClassified(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusPrioritized, 100000))
	scorer := &scorerStub{result: models.ScoreResult{Outcome: models.OutcomeSucceeded, Score: 90}}
	svc := newTestRequestService(repo, nil, scorer, RequestServiceConfig{})

	_, err := svc.Score(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
	assert.Zero(t, scorer.calls)

	_, err = svc.Score(context.Background(), adminUser, "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Score(context.Background(), requesterUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, loadTestState(t, repo).Logs)
}

func TestRequestServiceScoreFallbackLeavesRequestUnchanged(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 100000))
	svc := newTestRequestService(repo, nil, &scorerStub{result: models.FallbackScore()}, RequestServiceConfig{})

	_, err := svc.Score(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrUnavailable)

	request := requestByID(t, repo, "r1")
	assert.Equal(t, models.StatusClassified, request.Status)
	assert.Zero(t, request.PriorityScore)
	assert.Empty(t, loadTestState(t, repo).Logs)
}

func TestRequestServiceScoreFallbackAcceptedWhenConfigured(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 100000))
	svc := newTestRequestService(repo, nil, &scorerStub{result: models.FallbackScore()}, RequestServiceConfig{AcceptScoreFallback: true})

	scored, err := svc.Score(context.Background(), adminUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, scored.PriorityScore)
	assert.Equal(t, models.StatusPrioritized, scored.Status)
	assert.Equal(t, "Default score due to processing error.", *scored.AIReasoning)
}

func TestRequestServiceScoreRefusesConcurrentScoring(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 100000))
	scorer := &scorerStub{
		result:  models.ScoreResult{Outcome: models.OutcomeSucceeded, Score: 64, Breakdown: "ok"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newTestRequestService(repo, nil, scorer, RequestServiceConfig{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Score(context.Background(), adminUser, "r1")
	}()
	<-scorer.entered

	_, err := svc.Score(context.Background(), pmUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrConflict)

	close(scorer.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Len(t, loadTestState(t, repo).Logs, 1)
}

func TestRequestServiceScoreDiscardedWhenRejectedMeanwhile(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 100000))
	scorer := &scorerStub{result: models.ScoreResult{Outcome: models.OutcomeSucceeded, Score: 80, Breakdown: "late"}}
	svc := newTestRequestService(repo, nil, scorer, RequestServiceConfig{})
	scorer.during = func() {
		_, err := svc.Reject(context.Background(), pmUser, "r1")
		require.NoError(t, err)
	}

	_, err := svc.Score(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	request := requestByID(t, repo, "r1")
	assert.Equal(t, models.StatusRejected, request.Status)
	assert.Zero(t, request.PriorityScore)
	logs := loadTestState(t, repo).Logs
	require.Len(t, logs, 1)
	assert.Equal(t, "Updated status to REJECTED", logs[0].Details)
}

func TestRequestServiceApproveRequiresAdminAndPrioritized(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo,
		testRequest("r1", models.StatusPrioritized, 1000),
		testRequest("r2", models.StatusClassified, 1000),
	)
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})

	_, err := svc.Approve(context.Background(), pmUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Approve(context.Background(), adminUser, "r2")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	approved, err := svc.Approve(context.Background(), adminUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	logs := loadTestState(t, repo).Logs
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionUpdateStatus, logs[0].Action)
	assert.Equal(t, "Updated status to APPROVED", logs[0].Details)
}

func TestRequestServiceRejectBlocksLaterTransitions(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusPrioritized, 1000))
	scorer := &scorerStub{result: models.ScoreResult{Outcome: models.OutcomeSucceeded, Score: 90}}
	svc := newTestRequestService(repo, nil, scorer, RequestServiceConfig{})

	rejected, err := svc.Reject(context.Background(), adminUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	_, err = svc.Approve(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
	_, err = svc.Score(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
	_, err = svc.Reject(context.Background(), adminUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	assert.Zero(t, scorer.calls)
	assert.Len(t, loadTestState(t, repo).Logs, 1)
}

func TestRequestServiceRejectForbiddenForVolunteer(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 1000))
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})

	_, err := svc.Reject(context.Background(), volunteerUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRequestServiceAdvanceFollowsLifecycle(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusFunded, 1000), testRequest("r2", models.StatusApproved, 1000))
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})
	ctx := context.Background()

	started, err := svc.Advance(ctx, pmUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)

	done, err := svc.Advance(ctx, pmUser, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	_, err = svc.Advance(ctx, pmUser, "r1")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	_, err = svc.Advance(ctx, pmUser, "r2")
	require.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	logs := loadTestState(t, repo).Logs
	require.Len(t, logs, 2)
	assert.Equal(t, "Updated status to COMPLETED", logs[0].Details)
	assert.Equal(t, "Updated status to IN_PROGRESS", logs[1].Details)
}

func TestRequestServiceListFiltersAndSorts(t *testing.T) {
	repo := newStateRepo(t)
	low := testRequest("r1", models.StatusPrioritized, 1000)
	low.PriorityScore = 40
	high := testRequest("r2", models.StatusPrioritized, 1000)
	high.PriorityScore = 90
	education := testRequest("r3", models.StatusClassified, 1000)
	education.Category = models.CategoryEducation
	seedRequests(t, repo, low, high, education)
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})
	ctx := context.Background()

	all, err := svc.List(ctx, volunteerUser, models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	prioritized, err := svc.List(ctx, pmUser, models.RequestFilter{Status: models.StatusPrioritized, SortBy: dto.SortByPriority})
	require.NoError(t, err)
	require.Len(t, prioritized, 2)
	assert.Equal(t, "r2", prioritized[0].ID)

	byCategory, err := svc.List(ctx, adminUser, models.RequestFilter{Category: "education"})
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	_, err = svc.List(ctx, adminUser, models.RequestFilter{Status: "DONE"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.List(ctx, requesterUser, models.RequestFilter{})
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRequestServiceGet(t *testing.T) {
	repo := newStateRepo(t)
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})

	seeded, err := svc.Get(context.Background(), adminUser, "req1")
	require.NoError(t, err)
	assert.Equal(t, "Rural School Solar Power", seeded.Title)

	_, err = svc.Get(context.Background(), adminUser, "nope")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRequestServiceAuditLogNewestFirst(t *testing.T) {
	repo := newStateRepo(t)
	seedRequests(t, repo, testRequest("r1", models.StatusClassified, 1000))
	svc := newTestRequestService(repo, nil, nil, RequestServiceConfig{})
	ctx := context.Background()

	_, err := svc.Score(ctx, adminUser, "r1")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, adminUser, "r1")
	require.NoError(t, err)
	_, err = svc.Reject(ctx, adminUser, "r1")
	require.NoError(t, err)

	logs := loadTestState(t, repo).Logs
	require.Len(t, logs, 3)
	assert.Equal(t, "Updated status to REJECTED", logs[0].Details)
	assert.Equal(t, "Updated status to APPROVED", logs[1].Details)
	assert.Equal(t, models.AuditActionScoreRequest, logs[2].Action)
}
