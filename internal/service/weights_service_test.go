package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

func TestWeightsServiceGetDefaults(t *testing.T) {
	repo := newStateRepo(t)
	svc := NewWeightsService(repo, newTestAudit(repo), nil, nil)

	weights, err := svc.Get(context.Background(), pmUser)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPriorityWeights(), *weights)
}

func TestWeightsServiceUpdate(t *testing.T) {
	repo := newStateRepo(t)
	svc := NewWeightsService(repo, newTestAudit(repo), nil, nil)
	next := models.PriorityWeights{Urgency: 40, Beneficiaries: 20, Risk: 10, Feasibility: 10, Alignment: 20}

	updated, err := svc.Update(context.Background(), adminUser, next)
	require.NoError(t, err)
	assert.Equal(t, next, *updated)

	state := loadTestState(t, repo)
	assert.Equal(t, next, state.Weights)
	require.Len(t, state.Logs, 1)
	assert.Equal(t, models.AuditActionUpdateWeights, state.Logs[0].Action)
	assert.Equal(t, "weights", state.Logs[0].TargetID)
}

func TestWeightsServiceUpdateRejectsInvalidWeights(t *testing.T) {
	repo := newStateRepo(t)
	svc := NewWeightsService(repo, newTestAudit(repo), nil, nil)

	_, err := svc.Update(context.Background(), adminUser, models.PriorityWeights{Urgency: 50, Beneficiaries: 50, Risk: 10})
	require.ErrorIs(t, err, appErrors.ErrInvalidWeights)

	_, err = svc.Update(context.Background(), adminUser, models.PriorityWeights{Urgency: 120, Beneficiaries: -20})
	require.ErrorIs(t, err, appErrors.ErrInvalidWeights)

	_, err = svc.Update(context.Background(), pmUser, models.DefaultPriorityWeights())
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	state := loadTestState(t, repo)
	assert.Equal(t, models.DefaultPriorityWeights(), state.Weights)
	assert.Empty(t, state.Logs)
}
