package service

import (
	"fmt"
	"sort"

	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

// Action names a guarded operation.
type Action string

const (
	ActionViewDashboard   Action = "VIEW_DASHBOARD"
	ActionViewRequests    Action = "VIEW_REQUESTS"
	ActionSubmitRequest   Action = "SUBMIT_REQUEST"
	ActionScoreRequest    Action = "SCORE_REQUEST"
	ActionApproveRequest  Action = "APPROVE_REQUEST"
	ActionRejectRequest   Action = "REJECT_REQUEST"
	ActionAdvanceRequest  Action = "ADVANCE_REQUEST"
	ActionViewResources   Action = "VIEW_RESOURCES"
	ActionCreateResource  Action = "CREATE_RESOURCE"
	ActionRestockResource Action = "RESTOCK_RESOURCE"
	ActionRunOptimizer    Action = "RUN_OPTIMIZER"
	ActionApplyAllocation Action = "APPLY_ALLOCATION"
	ActionViewAudit       Action = "VIEW_AUDIT"
	ActionViewWeights     Action = "VIEW_WEIGHTS"
	ActionUpdateWeights   Action = "UPDATE_WEIGHTS"
)

type rule struct {
	roles []models.UserRole
	// status, when set, is the precondition on the target request's status.
	status func(models.RequestStatus) bool
}

var (
	staff     = []models.UserRole{models.RoleAdmin, models.RoleProjectManager}
	fieldTeam = []models.UserRole{models.RoleAdmin, models.RoleProjectManager, models.RoleVolunteer}
	adminOnly = []models.UserRole{models.RoleAdmin}
)

func statusIs(expected ...models.RequestStatus) func(models.RequestStatus) bool {
	return func(status models.RequestStatus) bool {
		for _, e := range expected {
			if status == e {
				return true
			}
		}
		return false
	}
}

func notTerminal(status models.RequestStatus) bool {
	return !status.Terminal()
}

var policy = map[Action]rule{
	ActionViewDashboard:   {roles: fieldTeam},
	ActionViewRequests:    {roles: fieldTeam},
	ActionSubmitRequest:   {roles: []models.UserRole{models.RoleAdmin, models.RoleProjectManager, models.RoleCommunityRequester}},
	ActionScoreRequest:    {roles: fieldTeam, status: statusIs(models.StatusClassified)},
	ActionApproveRequest:  {roles: adminOnly, status: statusIs(models.StatusPrioritized)},
	ActionRejectRequest:   {roles: staff, status: notTerminal},
	ActionAdvanceRequest:  {roles: staff, status: statusIs(models.StatusFunded, models.StatusInProgress)},
	ActionViewResources:   {roles: staff},
	ActionCreateResource:  {roles: adminOnly},
	ActionRestockResource: {roles: staff},
	ActionRunOptimizer:    {roles: staff},
	ActionApplyAllocation: {roles: staff, status: models.Fundable},
	ActionViewAudit:       {roles: adminOnly},
	ActionViewWeights:     {roles: staff},
	ActionUpdateWeights:   {roles: adminOnly},
}

// Allowed reports whether role may perform action regardless of any target status.
func Allowed(role models.UserRole, action Action) bool {
	r, ok := policy[action]
	if !ok {
		return false
	}
	for _, granted := range r.roles {
		if granted == role {
			return true
		}
	}
	return false
}

// Authorize checks the role grant for action and, when status is non-empty, the status
// precondition of the target request.
func Authorize(role models.UserRole, action Action, status models.RequestStatus) error {
	if !Allowed(role, action) {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not %s", role, action))
	}
	r := policy[action]
	if status != "" && r.status != nil && !r.status(status) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot %s while request is %s", action, status))
	}
	return nil
}

// Permissions lists the actions granted to role, sorted by name.
func Permissions(role models.UserRole) []Action {
	actions := make([]Action, 0, len(policy))
	for action := range policy {
		if Allowed(role, action) {
			actions = append(actions, action)
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
