package domain

import "time"

// UserRole enumerates console access levels.
type UserRole string

const (
	RoleOperator   UserRole = "OPERATOR"
	RoleSupervisor UserRole = "SUPERVISOR"
	RoleAdmin      UserRole = "ADMIN"
)

// CanManage reports whether the role may approve, reject or reassign protocols.
func (r UserRole) CanManage() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// User is an operator, supervisor or administrator of the console.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
