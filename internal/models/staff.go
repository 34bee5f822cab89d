package models

import (
	"fmt"
	"time"
)

// Staff roles
const (
	RoleStaff      = "staff"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

type StaffUser struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayIdentity is the human-readable form used in audit entries, so a
// person remains identifiable after their assignment rows are gone.
func (u *StaffUser) DisplayIdentity() string {
	return fmt.Sprintf("%s (%s)", u.Name, u.Email)
}
