package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/service"
)

// RejectListingRequest payload for a rejection decision.
type RejectListingRequest struct {
	Feedback string `json:"feedback"`
}

// DeveloperCredentialsResponse carries one-time developer credentials.
type DeveloperCredentialsResponse struct {
	Username          string    `json:"username"`
	TemporaryPassword string    `json:"temporary_password"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// NewDeveloperCredentialsResponse maps issued credentials.
func NewDeveloperCredentialsResponse(creds *service.DeveloperCredentials) DeveloperCredentialsResponse {
	return DeveloperCredentialsResponse{
		Username:          creds.Username,
		TemporaryPassword: creds.TemporaryPassword,
		ExpiresAt:         creds.ExpiresAt,
	}
}
