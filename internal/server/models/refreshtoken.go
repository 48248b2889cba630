package models

import "time"

// RefreshToken is one persisted link of a refresh-token lineage. Only the
// SHA-256 of the raw secret is stored; the secret itself never reaches the
// database or the logs.
//
// FamilyID ties together every descendant of one original login. It is
// allocated on login and preserved across rotations, so a detected replay
// can cut off the whole lineage at once.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	FamilyID  string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsRevoked reports whether the token has been consumed by a rotation or
// revoked with its family.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired reports whether the token is past its absolute expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
