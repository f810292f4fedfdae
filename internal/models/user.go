package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the authorization policy.
type UserRole string

const (
	RoleAdmin              UserRole = "ADMIN"
	RoleProjectManager     UserRole = "PROJECT_MANAGER"
	RoleVolunteer          UserRole = "VOLUNTEER"
	RoleCommunityRequester UserRole = "COMMUNITY_REQUESTER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleVolunteer, RoleCommunityRequester:
		return true
	}
	return false
}

// User is the session identity used as authorization context. It is never persisted.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// User converts the claims into the session identity.
func (c *JWTClaims) User() User {
	if c == nil {
		return User{}
	}
	return User{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
