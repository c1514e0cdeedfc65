package accounts

import (
	"github.com/needlink/needlink-backend/internal/users"
)

// RegisterInput captures a self-service signup.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Contact   string
}

// TokenPairDTO is the login/refresh response: a short-lived JWT plus the
// rotating refresh token.
type TokenPairDTO struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user,omitempty"`
}
