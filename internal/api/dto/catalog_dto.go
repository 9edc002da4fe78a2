package dto

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// ServiceRequest payload for treatment create and update.
type ServiceRequest struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Type            domain.ServiceType `json:"type"`
	Price           float64            `json:"price"`
	DurationMinutes int                `json:"duration"`
	Color           string             `json:"color"`
	BranchID        string             `json:"branch_id"`
}

// ServiceResponse representation.
type ServiceResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Type            domain.ServiceType `json:"type"`
	Price           float64            `json:"price"`
	DurationMinutes int                `json:"duration"`
	Color           string             `json:"color"`
	Active          bool               `json:"active"`
	BranchID        string             `json:"branch_id"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ProductRequest payload for product create and update.
type ProductRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        domain.ProductType `json:"type"`
	Price       float64            `json:"price"`
	BranchID    string             `json:"branch_id"`
	ServiceID   string             `json:"service_id"`
	Quantity    int                `json:"quantity"`
}

// ProductResponse representation.
type ProductResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Type         domain.ProductType `json:"type"`
	Price        float64            `json:"price"`
	Active       bool               `json:"active"`
	BranchID     string             `json:"branch_id"`
	CompanyID    *string            `json:"company_id,omitempty"`
	ServiceID    *string            `json:"service_id,omitempty"`
	Quantity     int                `json:"quantity"`
	UsedQuantity int                `json:"used_quantity"`
	Remaining    int                `json:"remaining_quantity"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// UseServiceRequest payload for a bundle redemption.
type UseServiceRequest struct {
	ServiceID  string `json:"service_id"`
	Quantity   int    `json:"quantity"`
	CustomerID string `json:"customer_id"`
	OrderID    string `json:"order_id"`
	BranchID   string `json:"branch_id"`
	Notes      string `json:"notes"`
}

// ServiceUsageResponse is one redemption.
type ServiceUsageResponse struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	OrderID      string    `json:"order_id"`
	ProductID    *string   `json:"product_id,omitempty"`
	ServiceID    string    `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	QuantityUsed int       `json:"quantity_used"`
	BranchID     string    `json:"branch_id"`
	EmployeeID   *string   `json:"employee_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UseServiceResponse is the balance after a redemption.
type UseServiceResponse struct {
	Usage             ServiceUsageResponse `json:"usage"`
	Product           ProductResponse      `json:"product"`
	RemainingQuantity int                  `json:"remaining_quantity"`
}

// RemainingServicesResponse is the balance of a product.
type RemainingServicesResponse struct {
	ProductID         string             `json:"product_id"`
	ProductName       string             `json:"product_name"`
	IsBundle          bool               `json:"is_bundle"`
	Message           string             `json:"message,omitempty"`
	ServiceID         string             `json:"service_id,omitempty"`
	ServiceName       string             `json:"service_name,omitempty"`
	ServiceType       domain.ServiceType `json:"service_type,omitempty"`
	TotalQuantity     int                `json:"total_quantity"`
	UsedQuantity      int                `json:"used_quantity"`
	RemainingQuantity int                `json:"remaining_quantity"`
}
