package dto

import "time"

// CompanyRequest payload for company create and update.
type CompanyRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// CompanyResponse representation.
type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Enabled       bool      `json:"enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BranchRequest payload for branch create and update.
type BranchRequest struct {
	CompanyID       string `json:"company_id"`
	Name            string `json:"name"`
	ContactPerson   string `json:"contact_person"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Street          string `json:"street"`
	Postcode        string `json:"postcode"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Timezone        string `json:"timezone"`
	VisibleToOthers bool   `json:"visible_to_others"`
}

// BranchResponse representation.
type BranchResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	Name            string    `json:"name"`
	ContactPerson   string    `json:"contact_person"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Street          string    `json:"street"`
	Postcode        string    `json:"postcode"`
	City            string    `json:"city"`
	Country         string    `json:"country"`
	Timezone        string    `json:"timezone"`
	ServiceIDs      []string  `json:"service_ids"`
	Enabled         bool      `json:"enabled"`
	VisibleToOthers bool      `json:"visible_to_others"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PublicBranchResponse is the branch subset shown before login.
type PublicBranchResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
