package dto

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	Username    string           `json:"username"`
	Firstname   string           `json:"first_name"`
	Lastname    string           `json:"last_name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Password    string           `json:"password"`
	PersonalPin string           `json:"personal_pin"`
	Role        domain.StaffRole `json:"role"`
	BranchID    string           `json:"branch_id"`
	Language    string           `json:"language"`
}

// UpdateEmployeeRequest payload; omitted fields stay unchanged.
type UpdateEmployeeRequest struct {
	Username    *string           `json:"username"`
	Firstname   *string           `json:"first_name"`
	Lastname    *string           `json:"last_name"`
	Email       *string           `json:"email"`
	Phone       *string           `json:"phone"`
	Password    *string           `json:"password"`
	PersonalPin *string           `json:"personal_pin"`
	Role        *domain.StaffRole `json:"role"`
	BranchID    *string           `json:"branch_id"`
	Language    *string           `json:"language"`
}

// EmployeeResponse representation. Secrets never leave the service.
type EmployeeResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Firstname string           `json:"first_name"`
	Lastname  string           `json:"last_name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Role      domain.StaffRole `json:"role"`
	BranchID  string           `json:"branch_id,omitempty"`
	Enabled   bool             `json:"enabled"`
	Language  string           `json:"language"`
	LastLogin *time.Time       `json:"last_login,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
