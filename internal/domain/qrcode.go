package domain

import "time"

// QRCode is a one-time passwordless login token for a customer.
type QRCode struct {
	ID         string
	Code       string
	CustomerID string
	BranchID   string
	ExpiresAt  time.Time
	Valid      bool
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the code may still be redeemed at now.
func (q *QRCode) Usable(now time.Time) bool {
	return q.Valid && q.UsedAt == nil && now.Before(q.ExpiresAt)
}
