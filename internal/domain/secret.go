package domain

import "time"

// SecretPurpose labels what a one-time secret unlocks.
type SecretPurpose string

const (
	SecretPurposeDownload            SecretPurpose = "DOWNLOAD"
	SecretPurposeDeveloperCredential SecretPurpose = "DEVELOPER_CREDENTIAL"
)

// OneTimeSecret is a redeem-once token. A nil ExpiresAt means the secret
// never expires on its own; RedeemedAt is set exactly once.
type OneTimeSecret struct {
	ID         string
	Purpose    SecretPurpose
	SubjectID  string
	Token      string
	ExpiresAt  *time.Time
	RedeemedAt *time.Time
	CreatedAt  time.Time
}

// Redeemed reports whether the secret has been used.
func (s *OneTimeSecret) Redeemed() bool {
	return s.RedeemedAt != nil
}

// Expired reports whether the secret's window has passed unused.
func (s *OneTimeSecret) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
