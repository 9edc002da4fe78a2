package dto

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// LoginRequest payload for employee login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// QRLoginRequest payload for customer QR login.
type QRLoginRequest struct {
	Code string `json:"code"`
}

// RefreshRequest payload for token rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordChangeRequest payload for authenticated password change.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PrincipalResponse describes the logged in employee or customer.
type PrincipalResponse struct {
	ID        string               `json:"id"`
	Kind      domain.PrincipalKind `json:"type"`
	Email     string               `json:"email"`
	Firstname string               `json:"first_name"`
	Lastname  string               `json:"last_name"`
	Username  string               `json:"username,omitempty"`
	Role      domain.StaffRole     `json:"role,omitempty"`
	BranchID  string               `json:"branch_id,omitempty"`
	Language  string               `json:"language,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	AccessToken      string            `json:"access_token"`
	AccessExpiresAt  time.Time         `json:"access_expires_at"`
	RefreshToken     string            `json:"refresh_token"`
	RefreshExpiresAt time.Time         `json:"refresh_expires_at"`
	Principal        PrincipalResponse `json:"user"`
}

// SessionResponse is one durable login of the caller.
type SessionResponse struct {
	ID           string    `json:"id"`
	ExpiresAt    time.Time `json:"expires_at"`
	Active       bool      `json:"active"`
	LastActivity time.Time `json:"last_activity"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
}

// QRCodeResponse is a freshly issued login code.
type QRCodeResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	CustomerID string    `json:"customer_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}
