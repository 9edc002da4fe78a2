package domain

import "time"

// ProductType distinguishes passthrough products from bundles.
type ProductType string

const (
	ProductTypeService ProductType = "service"
	ProductTypeBundle  ProductType = "bundle"
)

// Product is a sellable item. Bundles grant Quantity uses of ServiceID.
type Product struct {
	ID           string
	Name         string
	Description  string
	Type         ProductType
	Price        float64
	Active       bool
	BranchID     string
	CompanyID    *string
	ServiceID    *string
	Quantity     int
	UsedQuantity int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsBundle reports whether the product tracks a usage balance.
func (p *Product) IsBundle() bool {
	return p.Type == ProductTypeBundle
}

// Remaining is the unused balance of a bundle.
func (p *Product) Remaining() int {
	return p.Quantity - p.UsedQuantity
}

// IncludesService reports whether serviceID is the bundle's service.
func (p *Product) IncludesService(serviceID string) bool {
	return p.ServiceID != nil && *p.ServiceID == serviceID
}

// ServiceUsage records one redemption against a bundle.
type ServiceUsage struct {
	ID           string
	CustomerID   string
	OrderID      string
	ProductID    *string
	ServiceID    string
	ServiceName  string
	QuantityUsed int
	BranchID     string
	EmployeeID   *string
	Notes        string
	CreatedAt    time.Time
}
