package users

import (
	"fmt"
	"strings"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
)

// AuthType records how the account authenticates
type AuthType string

const (
	AuthLocal  AuthType = "local"
	AuthGoogle AuthType = "google" // Externally federated
)

// RoleType classifies an account and controls which views it may use
type RoleType string

const (
	RoleGeneral  RoleType = "general"  // Traveller planning trips
	RoleProvider RoleType = "provider" // Service provider offering trip services
	RoleAdmin    RoleType = "admin"    // Platform administrator
)

// Roles lists every known role in display order
var Roles = []RoleType{RoleGeneral, RoleProvider, RoleAdmin}

// ParseRole converts a wire value into a RoleType
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, tmerrors.ErrInvalidRole)
}

// Selectable reports whether a user may pick this role for themselves.
// Admin is only ever assigned by the platform.
func (r RoleType) Selectable() bool {
	return r == RoleGeneral || r == RoleProvider
}

func (r RoleType) String() string {
	return string(r)
}

// User is the profile returned by the current-user endpoint. It is replaced
// wholesale on every successful fetch and never edited locally.
type User struct {
	ID        string   `json:"id,omitempty"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Role      RoleType `json:"role"`
	AuthType  AuthType `json:"auth_type"`
	IsNewUser bool     `json:"is_new_user"`
}

// HasRole reports whether the user holds any of roles
func (u *User) HasRole(roles ...RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) IsProvider() bool {
	return u.HasRole(RoleProvider)
}

// IsFederated is true for accounts signed in through an external provider
func (u *User) IsFederated() bool {
	return u != nil && u.AuthType != "" && u.AuthType != AuthLocal
}

// NeedsOnboarding is true for a new account that has not picked a role yet
func (u *User) NeedsOnboarding() bool {
	return u != nil && u.IsNewUser
}

// DisplayName falls back to the email when no name is set
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ChooseRoleRequest is the body of the role-selection call
type ChooseRoleRequest struct {
	Role RoleType `json:"role"`
}

// ChooseRoleResponse is the result of the role-selection call
type ChooseRoleResponse struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}
