package dto

import (
	"time"

	"github.com/givegoa/givegoa-api/internal/models"
)

// LoginInput selects an account from the directory.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresIn   int64       `json:"expiresIn"`
	IssuedAt    time.Time   `json:"issuedAt"`
	User        models.User `json:"user"`
	Permissions []string    `json:"permissions"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User        models.User `json:"user"`
	Permissions []string    `json:"permissions"`
}
