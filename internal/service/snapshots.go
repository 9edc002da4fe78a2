package service

import (
	"github.com/wahid-dev1/semina/internal/domain"
)

// Audit snapshots. Secret fields are included under their real names and
// replaced by Redact before storage.

func employeeSnapshot(e *domain.Employee) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":          e.ID,
		"username":    e.Username,
		"firstname":   e.Firstname,
		"lastname":    e.Lastname,
		"email":       e.Email,
		"phone":       e.Phone,
		"password":    e.PasswordHash,
		"personalPin": e.PersonalPin,
		"role":        string(e.Role()),
		"branchId":    e.BranchID(),
		"enabled":     e.Enabled,
		"language":    e.Language,
	}
}

func customerSnapshot(c *domain.Customer) map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":               c.ID,
		"firstname":        c.Firstname,
		"lastname":         c.Lastname,
		"email":            c.Email,
		"phone":            c.Phone,
		"branchId":         c.BranchID,
		"enabled":          c.Enabled,
		"qrCodeId":         deref(c.QRCodeID),
		"medicalHistoryId": deref(c.MedicalHistoryID),
	}
}

func productSnapshot(p *domain.Product) map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"type":         string(p.Type),
		"price":        p.Price,
		"active":       p.Active,
		"branchId":     p.BranchID,
		"serviceId":    deref(p.ServiceID),
		"quantity":     p.Quantity,
		"usedQuantity": p.UsedQuantity,
	}
}

func orderSnapshot(o *domain.Order) map[string]any {
	if o == nil {
		return nil
	}
	return map[string]any{
		"id":                 o.ID,
		"customerId":         o.CustomerID,
		"customerName":       o.CustomerName,
		"branchId":           o.BranchID,
		"itemType":           string(o.ItemType),
		"serviceId":          deref(o.ServiceID),
		"productId":          deref(o.ProductID),
		"itemName":           o.ItemName,
		"includedServiceIds": append([]string(nil), o.IncludedServiceIDs...),
		"price":              o.Price,
		"quantity":           o.Quantity,
		"totalPrice":         o.TotalPrice,
		"paymentMethod":      o.PaymentMethod,
		"status":             string(o.Status),
		"appointmentDate":    o.AppointmentDate,
		"appointmentTime":    o.AppointmentTime,
		"employeeId":         deref(o.EmployeeID),
		"notes":              o.Notes,
	}
}

func serviceSnapshot(s *domain.Service) map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":          s.ID,
		"name":        s.Name,
		"description": s.Description,
		"type":        string(s.Type),
		"price":       s.Price,
		"duration":    s.DurationMinutes,
		"color":       s.Color,
		"active":      s.Active,
		"branchId":    s.BranchID,
	}
}

func branchSnapshot(b *domain.Branch) map[string]any {
	if b == nil {
		return nil
	}
	return map[string]any{
		"id":              b.ID,
		"companyId":       b.CompanyID,
		"name":            b.Name,
		"contactPerson":   b.ContactPerson,
		"email":           b.Email,
		"phone":           b.Phone,
		"street":          b.Street,
		"postcode":        b.Postcode,
		"city":            b.City,
		"country":         b.Country,
		"timezone":        b.Timezone,
		"enabled":         b.Enabled,
		"visibleToOthers": b.VisibleToOthers,
	}
}

func companySnapshot(c *domain.Company) map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":            c.ID,
		"name":          c.Name,
		"contactPerson": c.ContactPerson,
		"email":         c.Email,
		"phone":         c.Phone,
		"address":       c.Address,
		"enabled":       c.Enabled,
	}
}

func subscriptionSnapshot(s *domain.Subscription) map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":         s.ID,
		"companyId":  s.CompanyID,
		"productIds": append([]string(nil), s.ProductIDs...),
		"startDate":  s.StartDate,
		"endDate":    s.EndDate,
		"active":     s.Active,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
