package domain

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCanceled  OrderStatus = "canceled"
	OrderCompleted OrderStatus = "completed"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCanceled, OrderCompleted:
		return true
	}
	return false
}

// OrderItemType says whether an order sells a service or a product.
type OrderItemType string

const (
	OrderItemService OrderItemType = "service"
	OrderItemProduct OrderItemType = "product"
)

// Order is a purchase by a customer at a branch.
type Order struct {
	ID                 string
	CustomerID         string
	CustomerName       string
	BranchID           string
	ItemType           OrderItemType
	ServiceID          *string
	ProductID          *string
	ItemName           string
	IncludedServiceIDs []string
	Price              float64
	Quantity           int
	TotalPrice         float64
	PaymentMethod      string
	Status             OrderStatus
	AppointmentDate    time.Time
	AppointmentTime    string
	EmployeeID         *string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FieldsLocked reports whether ordinary field edits are rejected.
func (o *Order) FieldsLocked() bool {
	return o.Status == OrderPaid || o.Status == OrderCanceled
}

// Deletable reports whether the order may be removed.
func (o *Order) Deletable() bool {
	return o.Status != OrderPaid
}

// BundleFor returns the product id backing serviceID in this order, if any.
func (o *Order) BundleFor(serviceID string) (string, bool) {
	if o.ItemType != OrderItemProduct || o.ProductID == nil {
		return "", false
	}
	for _, id := range o.IncludedServiceIDs {
		if id == serviceID {
			return *o.ProductID, true
		}
	}
	return "", false
}
