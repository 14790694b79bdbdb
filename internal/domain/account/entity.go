package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents account role in the system
type Role string

const (
	RoleGuest Role = "guest"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Account is a registered guest, listing owner or administrator
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsGuest returns true if account books stays
func (a *Account) IsGuest() bool {
	return a.Role == RoleGuest
}

// IsOwner returns true if account publishes listings
func (a *Account) IsOwner() bool {
	return a.Role == RoleOwner
}

// IsAdmin returns true if account is an administrator
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ValidRoles returns list of valid roles for registration
func ValidRoles() []Role {
	return []Role{RoleGuest, RoleOwner}
}

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
