package domain

import "time"

// Session is the durable record of one login.
type Session struct {
	ID           string
	Token        string
	PrincipalID  string
	Kind         PrincipalKind
	ExpiresAt    time.Time
	Active       bool
	LastActivity time.Time
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}

// IsValid reports whether the durable record still backs credentials.
func (s *Session) IsValid(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

// SessionEntry is the descriptor cached under session:<token>.
type SessionEntry struct {
	PrincipalID string        `json:"userId"`
	Kind        PrincipalKind `json:"type"`
	BranchID    string        `json:"branchId,omitempty"`
	Role        StaffRole     `json:"role,omitempty"`
}
