package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	svc := NewAuthService(nil, nil, nil, AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "givegoa-test"})
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestAuthServiceLoginIssuesToken(t *testing.T) {
	svc := newTestAuthService()

	resp, err := svc.Login(context.Background(), dto.LoginInput{Email: " PM@RotaryPanjim.org "})
	require.NoError(t, err)
	assert.Equal(t, pmUser, resp.User)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Contains(t, resp.Permissions, string(ActionRunOptimizer))
	assert.NotContains(t, resp.Permissions, string(ActionViewAudit))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pmUser, claims.User())
	assert.Equal(t, "givegoa-test", claims.Issuer)
}

func TestAuthServiceLoginUnknownAccount(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Login(context.Background(), dto.LoginInput{Email: "stranger@example.com"})
	require.ErrorIs(t, err, appErrors.ErrUnknownAccount)

	_, err = svc.Login(context.Background(), dto.LoginInput{Email: "not-an-email"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newTestAuthService()
	resp, err := svc.Login(context.Background(), dto.LoginInput{Email: "admin@rotarypanjim.org"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC) }
	_, err = svc.ValidateToken(resp.AccessToken)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewAuthService(nil, nil, nil, AuthConfig{AccessTokenSecret: "other-secret"})
	other.now = func() time.Time { return time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC) }
	_, err = other.ValidateToken(resp.AccessToken)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceSession(t *testing.T) {
	svc := newTestAuthService()
	session := svc.Session(requesterUser)
	assert.Equal(t, requesterUser, session.User)
	assert.Equal(t, []string{string(ActionSubmitRequest)}, session.Permissions)
	assert.Equal(t, models.RoleCommunityRequester, session.User.Role)
}
