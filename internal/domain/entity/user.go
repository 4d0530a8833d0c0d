package entity

import "time"

// Role is a conference committee role. Authorization is resolved through
// the explicit permission table in the auth package, not by role aliasing.
type Role string

const (
	RoleChairperson         Role = "chairperson"
	RoleTreasurer           Role = "treasurer"
	RoleRegistrar           Role = "registrar"
	RoleCoordinator         Role = "coordinator"
	RoleLACConvener         Role = "lac_convener"
	RoleRegionalCoordinator Role = "regional_coordinator"
)

var validRoles = map[Role]bool{
	RoleChairperson:         true,
	RoleTreasurer:           true,
	RoleRegistrar:           true,
	RoleCoordinator:         true,
	RoleLACConvener:         true,
	RoleRegionalCoordinator: true,
}

// IsValid returns true if the role is a known committee role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User is a committee member account scoped to a region
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Region       Region    `json:"region"`
	CreatedAt    time.Time `json:"created_at"`
}
