package dto

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	CustomerID      string               `json:"customer_id"`
	BranchID        string               `json:"branch_id"`
	ItemType        domain.OrderItemType `json:"item_type"`
	ServiceID       string               `json:"service_id"`
	ProductID       string               `json:"product_id"`
	Quantity        int                  `json:"quantity"`
	Price           *float64             `json:"price"`
	PaymentMethod   string               `json:"payment_method"`
	AppointmentDate string               `json:"appointment_date"`
	AppointmentTime string               `json:"appointment_time"`
	Notes           string               `json:"notes"`
}

// UpdateOrderRequest payload; omitted fields stay unchanged.
type UpdateOrderRequest struct {
	Price           *float64 `json:"price"`
	Quantity        *int     `json:"quantity"`
	PaymentMethod   *string  `json:"payment_method"`
	AppointmentDate *string  `json:"appointment_date"`
	AppointmentTime *string  `json:"appointment_time"`
	Notes           *string  `json:"notes"`
}

// UpdateOrderStatusRequest payload.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderUseServiceRequest payload for redeeming a service bought through an order.
type OrderUseServiceRequest struct {
	ServiceID string `json:"service_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// OrderResponse representation.
type OrderResponse struct {
	ID                 string               `json:"id"`
	CustomerID         string               `json:"customer_id"`
	CustomerName       string               `json:"customer_name"`
	BranchID           string               `json:"branch_id"`
	ItemType           domain.OrderItemType `json:"item_type"`
	ServiceID          *string              `json:"service_id,omitempty"`
	ProductID          *string              `json:"product_id,omitempty"`
	ItemName           string               `json:"item_name"`
	IncludedServiceIDs []string             `json:"included_services"`
	Price              float64              `json:"price"`
	Quantity           int                  `json:"quantity"`
	TotalPrice         float64              `json:"total_price"`
	PaymentMethod      string               `json:"payment_method"`
	Status             domain.OrderStatus   `json:"status"`
	AppointmentDate    time.Time            `json:"appointment_date"`
	AppointmentTime    string               `json:"appointment_time"`
	EmployeeID         *string              `json:"employee_id,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}
