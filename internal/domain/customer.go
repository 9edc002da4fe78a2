package domain

import "time"

// Customer is a branch client; authenticates only through QR codes.
type Customer struct {
	ID               string
	Firstname        string
	Lastname         string
	Email            string
	Phone            string
	BranchID         string
	Enabled          bool
	LastVisit        *time.Time
	QRCodeID         *string
	MedicalHistoryID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	if c.Lastname == "" {
		return c.Firstname
	}
	return c.Firstname + " " + c.Lastname
}
