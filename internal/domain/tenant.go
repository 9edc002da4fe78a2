package domain

import "time"

// Company is the top-level tenant.
type Company struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Branch is a location of a company; employees and customers belong to one.
type Branch struct {
	ID              string
	CompanyID       string
	Name            string
	ContactPerson   string
	Email           string
	Phone           string
	Street          string
	Postcode        string
	City            string
	Country         string
	Timezone        string
	ServiceIDs      []string
	Enabled         bool
	VisibleToOthers bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OffersService reports whether serviceID is enabled at the branch.
func (b *Branch) OffersService(serviceID string) bool {
	for _, id := range b.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
