package service

import (
	"context"

	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/internal/repository"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

// stateStore is the persistence boundary shared by every domain service.
type stateStore interface {
	Load(ctx context.Context) (*models.State, error)
	Mutate(ctx context.Context, fn repository.MutateFunc) (*models.State, error)
}

// auditRecorder appends an entry to the log inside an ongoing mutation.
type auditRecorder interface {
	Record(state *models.State, actor models.User, action, targetID, details string) models.AuditLogEntry
}

func loadState(ctx context.Context, store stateStore) (*models.State, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "failed to load state")
	}
	return state, nil
}

// wrapStoreError passes typed errors through and reports anything else as INTERNAL_ERROR.
func wrapStoreError(err error, message string) error {
	if appErr := appErrors.FromError(err); appErr != nil && appErr.Code != appErrors.ErrInternal.Code {
		return appErr
	}
	return appErrors.Internal(err, message)
}
