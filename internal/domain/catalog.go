package domain

import "time"

// ServiceType categorizes treatments.
type ServiceType string

const (
	ServiceTypeTreatment    ServiceType = "treatment"
	ServiceTypeConsultation ServiceType = "consultation"
	ServiceTypeWellness     ServiceType = "wellness"
	ServiceTypeCustom       ServiceType = "custom"
)

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeTreatment, ServiceTypeConsultation, ServiceTypeWellness, ServiceTypeCustom:
		return true
	}
	return false
}

// Service is a bookable treatment offered by a branch.
type Service struct {
	ID              string
	Name            string
	Description     string
	Type            ServiceType
	Price           float64
	DurationMinutes int
	Color           string
	Active          bool
	BranchID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
