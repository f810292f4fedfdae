package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

func TestAuthorizeRoles(t *testing.T) {
	cases := []struct {
		role    models.UserRole
		action  Action
		allowed bool
	}{
		{models.RoleAdmin, ActionViewAudit, true},
		{models.RoleProjectManager, ActionViewAudit, false},
		{models.RoleProjectManager, ActionRunOptimizer, true},
		{models.RoleVolunteer, ActionRunOptimizer, false},
		{models.RoleVolunteer, ActionScoreRequest, true},
		{models.RoleVolunteer, ActionSubmitRequest, false},
		{models.RoleCommunityRequester, ActionSubmitRequest, true},
		{models.RoleCommunityRequester, ActionViewDashboard, false},
		{models.RoleProjectManager, ActionApproveRequest, false},
		{models.RoleProjectManager, ActionUpdateWeights, false},
		{models.UserRole("GUEST"), ActionViewRequests, false},
	}

	for _, tc := range cases {
		err := Authorize(tc.role, tc.action, "")
		if tc.allowed {
			assert.NoError(t, err, "%s %s", tc.role, tc.action)
			continue
		}
		assert.ErrorIs(t, err, appErrors.ErrForbidden, "%s %s", tc.role, tc.action)
	}
}

func TestAuthorizeStatusPreconditions(t *testing.T) {
	require.NoError(t, Authorize(models.RoleAdmin, ActionApproveRequest, models.StatusPrioritized))
	require.ErrorIs(t, Authorize(models.RoleAdmin, ActionApproveRequest, models.StatusClassified), appErrors.ErrPreconditionFailed)

	require.NoError(t, Authorize(models.RoleProjectManager, ActionRejectRequest, models.StatusInProgress))
	require.ErrorIs(t, Authorize(models.RoleProjectManager, ActionRejectRequest, models.StatusCompleted), appErrors.ErrPreconditionFailed)
	require.ErrorIs(t, Authorize(models.RoleProjectManager, ActionRejectRequest, models.StatusRejected), appErrors.ErrPreconditionFailed)

	require.NoError(t, Authorize(models.RoleAdmin, ActionApplyAllocation, models.StatusApproved))
	require.ErrorIs(t, Authorize(models.RoleAdmin, ActionApplyAllocation, models.StatusFunded), appErrors.ErrPreconditionFailed)

	// role is checked before status
	require.ErrorIs(t, Authorize(models.RoleVolunteer, ActionApproveRequest, models.StatusClassified), appErrors.ErrForbidden)
}

func TestPermissionsSorted(t *testing.T) {
	assert.Equal(t, []Action{ActionSubmitRequest}, Permissions(models.RoleCommunityRequester))
	assert.Equal(t, []Action{ActionScoreRequest, ActionViewDashboard, ActionViewRequests}, Permissions(models.RoleVolunteer))
	assert.Len(t, Permissions(models.RoleAdmin), len(policy))
}
