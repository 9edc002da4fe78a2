package domain

import "time"

// Employee is a staff principal.
type Employee struct {
	ID           string
	Username     string
	Firstname    string
	Lastname     string
	Email        string
	Phone        string
	PasswordHash string
	PersonalPin  string
	Scope        StaffScope
	Enabled      bool
	Language     string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is shorthand for e.Scope.Role().
func (e *Employee) Role() StaffRole { return e.Scope.Role() }

// BranchID is shorthand for e.Scope.BranchID().
func (e *Employee) BranchID() string { return e.Scope.BranchID() }

// FullName joins first and last name.
func (e *Employee) FullName() string {
	if e.Lastname == "" {
		return e.Firstname
	}
	return e.Firstname + " " + e.Lastname
}
