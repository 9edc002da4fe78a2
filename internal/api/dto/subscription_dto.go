package dto

import "time"

// CreateSubscriptionRequest payload. Dates are RFC 3339 or YYYY-MM-DD.
type CreateSubscriptionRequest struct {
	CompanyID  string   `json:"company_id"`
	ProductIDs []string `json:"product_ids"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Active     *bool    `json:"active"`
}

// UpdateSubscriptionRequest payload; omitted fields are unchanged.
type UpdateSubscriptionRequest struct {
	CompanyID  *string  `json:"company_id"`
	ProductIDs []string `json:"product_ids"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
}

// SubscriptionResponse representation.
type SubscriptionResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	ProductIDs []string  `json:"product_ids"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubscriptionStatsResponse summarizes subscriptions.
type SubscriptionStatsResponse struct {
	Total               int     `json:"total_subscriptions"`
	Active              int     `json:"active_subscriptions"`
	Inactive            int     `json:"inactive_subscriptions"`
	Current             int     `json:"current_subscriptions"`
	ExpiringSoon        int     `json:"expiring_soon"`
	AverageDurationDays float64 `json:"average_duration_days"`
}
