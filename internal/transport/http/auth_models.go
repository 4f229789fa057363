package http

import (
	"time"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// AuthUser is the sanitized user returned by auth endpoints.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email     string    `json:"email" example:"ana@example.com"`
	FullName  *string   `json:"full_name,omitempty" example:"Ana Silva"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthTokenResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	User      AuthUser `json:"user"`
}

type RegisterRequest struct {
	Email    string  `json:"email" example:"ana@example.com"`
	Password string  `json:"password" example:"StrongPass23"`
	FullName *string `json:"full_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"StrongPass23"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

func toAuthUser(user *domain.User) AuthUser {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}
	return AuthUser{
		ID:        user.ID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		ImageURL:  user.ImageURL,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}
}

func toAuthTokenResponse(result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toAuthUser(result.User),
	}
}
