// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"
)

type User struct {
	ID              string     `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Role            string     `db:"role"`
	TokenVersion    int        `db:"token_version"`
	InviteTokenHash *string    `db:"invite_token_hash"`
	InviteExpiresAt *time.Time `db:"invite_expires_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsInvited reports an account created by an admin whose owner has not
// chosen a password yet.
func (u *User) IsInvited() bool {
	return u.PasswordHash == "" && u.InviteTokenHash != nil
}

// DisplayName is "first last", or the e-mail when both are empty.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Email)
}

func DisplayName(firstName, lastName, email string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		return email
	}
	return name
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
