package domain

import "time"

// Subscription grants a company a set of products for a period.
type Subscription struct {
	ID         string
	CompanyID  string
	ProductIDs []string
	StartDate  time.Time
	EndDate    time.Time
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Overlaps reports whether the closed periods [s.StartDate, s.EndDate] and
// [start, end] share an instant.
func (s *Subscription) Overlaps(start, end time.Time) bool {
	return !s.StartDate.After(end) && !s.EndDate.Before(start)
}

// CurrentAt reports whether s is active and its period contains at.
func (s *Subscription) CurrentAt(at time.Time) bool {
	return s.Active && !s.StartDate.After(at) && !s.EndDate.Before(at)
}

// SubscriptionStats summarizes the subscriptions of one company or of all.
type SubscriptionStats struct {
	Total               int
	Active              int
	Inactive            int
	Current             int
	ExpiringSoon        int
	AverageDurationDays float64
}
