// File: internal/domain/role.go
package domain

import "fmt"

// Role is the closed set of actors the platform knows about.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
	RoleDriver  Role = "driver"
)

// ParseRole rejects anything outside the three known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCompany, RoleDriver:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor identifies who is calling a service operation.
type Actor struct {
	ID   string
	Role Role
}
