package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	appErrors "github.com/givegoa/givegoa-api/pkg/errors"
)

// AuthConfig defines configuration for token issuance.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// DefaultAccounts is the built-in account directory.
func DefaultAccounts() []models.User {
	return []models.User{
		{ID: "u1", Name: "Admin User", Email: "admin@rotarypanjim.org", Role: models.RoleAdmin},
		{ID: "u2", Name: "PM John", Email: "pm@rotarypanjim.org", Role: models.RoleProjectManager},
		{ID: "u3", Name: "Volunteer Jane", Email: "jane@volunteer.org", Role: models.RoleVolunteer},
		{ID: "u4", Name: "Community Member", Email: "member@goa.com", Role: models.RoleCommunityRequester},
	}
}

// AuthService selects an account from the directory and issues access tokens.
// There are no passwords; the directory is the whole identity model.
type AuthService struct {
	accounts  map[string]models.User
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService. A nil directory uses DefaultAccounts.
func NewAuthService(accounts []models.User, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if accounts == nil {
		accounts = DefaultAccounts()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	directory := make(map[string]models.User, len(accounts))
	for _, account := range accounts {
		directory[normaliseEmail(account.Email)] = account
	}
	return &AuthService{accounts: directory, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login issues a token for the account registered under the email.
func (s *AuthService) Login(_ context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, ok := s.accounts[normaliseEmail(input.Email)]
	if !ok {
		return nil, appErrors.ErrUnknownAccount
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("session started", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        user,
		Permissions: permissionNames(user.Role),
	}, nil
}

// Session describes the identity behind a validated token.
func (s *AuthService) Session(user models.User) dto.SessionResponse {
	return dto.SessionResponse{User: user, Permissions: permissionNames(user.Role)}
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func permissionNames(role models.UserRole) []string {
	actions := Permissions(role)
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = string(action)
	}
	return names
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
