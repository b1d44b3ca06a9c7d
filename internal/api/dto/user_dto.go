package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SwitchRoleRequest payload for buyer/seller switching.
type SwitchRoleRequest struct {
	Role string `json:"role"`
}

// ActivateDeveloperRequest rotates one-time developer credentials.
type ActivateDeveloperRequest struct {
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password"`
	NewPassword       string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
	}
}
