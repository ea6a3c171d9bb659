package models

import "time"

// Role is an employee's department role.
type Role string

const (
	RoleMarketing Role = "MARKETING"
	RoleSales     Role = "SALES"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMarketing, RoleSales, RoleAdmin:
		return true
	}
	return false
}

// Status is an employee account's lifecycle state. The status sweeper moves
// ACTIVE accounts to INACTIVE after a month without a login; SUSPENDED
// accounts cannot log in at all.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Employee is a CRM back-office account. The password hash never leaves the
// server.
type Employee struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	LastLogin    time.Time `json:"lastLogin"`
}
