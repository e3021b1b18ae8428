// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one signed-in device. Rotation chains tokens of the same
// device into a family; reusing a rotated token revokes the family.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

// State reports why a stored token can or cannot be exchanged at now.
func (t *RefreshToken) State(now time.Time) TokenState {
	switch {
	case t.IsUsed:
		return TokenReused
	case t.RevokedAt != nil:
		return TokenRevoked
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenUsable
	}
}

func (t *RefreshToken) Device() DeviceInfo {
	return DeviceInfo{
		ID:        t.ID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}

type TokenState int

const (
	TokenUsable TokenState = iota
	TokenReused
	TokenRevoked
	TokenExpired
)

// Client identifies the device a login comes from.
type Client struct {
	UserAgent string
	IPAddress string
}
