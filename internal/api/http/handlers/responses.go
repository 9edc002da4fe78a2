package handlers

import (
	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/service"
)

func principalResponse(p service.PrincipalSummary) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		ID:        p.ID,
		Kind:      p.Kind,
		Email:     p.Email,
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Username:  p.Username,
		Role:      p.Role,
		BranchID:  p.BranchID,
		Language:  p.Language,
	}
}

func authResponse(res *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:      res.AccessToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshToken:     res.RefreshToken,
		RefreshExpiresAt: res.RefreshExpiresAt,
		Principal:        principalResponse(res.Principal),
	}
}

func sessionResponse(s *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:           s.ID,
		ExpiresAt:    s.ExpiresAt,
		Active:       s.Active,
		LastActivity: s.LastActivity,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt,
	}
}

func qrCodeResponse(q *domain.QRCode) dto.QRCodeResponse {
	return dto.QRCodeResponse{ID: q.ID, Code: q.Code, CustomerID: q.CustomerID, ExpiresAt: q.ExpiresAt}
}

func companyResponse(c *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		Enabled:       c.Enabled,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func branchResponse(b *domain.Branch) dto.BranchResponse {
	serviceIDs := b.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []string{}
	}
	return dto.BranchResponse{
		ID:              b.ID,
		CompanyID:       b.CompanyID,
		Name:            b.Name,
		ContactPerson:   b.ContactPerson,
		Email:           b.Email,
		Phone:           b.Phone,
		Street:          b.Street,
		Postcode:        b.Postcode,
		City:            b.City,
		Country:         b.Country,
		Timezone:        b.Timezone,
		ServiceIDs:      serviceIDs,
		Enabled:         b.Enabled,
		VisibleToOthers: b.VisibleToOthers,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func employeeResponse(e *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:        e.ID,
		Username:  e.Username,
		Firstname: e.Firstname,
		Lastname:  e.Lastname,
		Email:     e.Email,
		Phone:     e.Phone,
		Role:      e.Role(),
		BranchID:  e.BranchID(),
		Enabled:   e.Enabled,
		Language:  e.Language,
		LastLogin: e.LastLogin,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func customerResponse(c *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:               c.ID,
		Firstname:        c.Firstname,
		Lastname:         c.Lastname,
		Email:            c.Email,
		Phone:            c.Phone,
		BranchID:         c.BranchID,
		Enabled:          c.Enabled,
		LastVisit:        c.LastVisit,
		QRCodeID:         c.QRCodeID,
		MedicalHistoryID: c.MedicalHistoryID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func medicalHistoryResponse(h *domain.MedicalHistory) dto.MedicalHistoryResponse {
	return dto.MedicalHistoryResponse{
		ID:                 h.ID,
		CustomerID:         h.CustomerID,
		BranchID:           h.BranchID,
		FieldOfApplication: h.FieldOfApplication,
		Pregnancy:          h.Pregnancy,
		Diseases:           h.Diseases,
		HealthIssues:       h.HealthIssues,
		DrugsAndImplants:   h.DrugsAndImplants,
		GenericNote:        h.GenericNote,
		TermsAccepted:      h.TermsAccepted,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

func serviceResponse(s *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Type:            s.Type,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Color:           s.Color,
		Active:          s.Active,
		BranchID:        s.BranchID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func productResponse(p *domain.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Price:        p.Price,
		Active:       p.Active,
		BranchID:     p.BranchID,
		CompanyID:    p.CompanyID,
		ServiceID:    p.ServiceID,
		Quantity:     p.Quantity,
		UsedQuantity: p.UsedQuantity,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.IsBundle() {
		resp.Remaining = p.Remaining()
	}
	return resp
}

func usageResponse(u *domain.ServiceUsage) dto.ServiceUsageResponse {
	return dto.ServiceUsageResponse{
		ID:           u.ID,
		CustomerID:   u.CustomerID,
		OrderID:      u.OrderID,
		ProductID:    u.ProductID,
		ServiceID:    u.ServiceID,
		ServiceName:  u.ServiceName,
		QuantityUsed: u.QuantityUsed,
		BranchID:     u.BranchID,
		EmployeeID:   u.EmployeeID,
		Notes:        u.Notes,
		CreatedAt:    u.CreatedAt,
	}
}

func useServiceResponse(res *service.UsageResult) dto.UseServiceResponse {
	return dto.UseServiceResponse{
		Usage:             usageResponse(&res.Usage),
		Product:           productResponse(&res.Product),
		RemainingQuantity: res.Remaining,
	}
}

func remainingResponse(r *service.RemainingServices) dto.RemainingServicesResponse {
	return dto.RemainingServicesResponse{
		ProductID:         r.ProductID,
		ProductName:       r.ProductName,
		IsBundle:          r.IsBundle,
		Message:           r.Message,
		ServiceID:         r.ServiceID,
		ServiceName:       r.ServiceName,
		ServiceType:       r.ServiceType,
		TotalQuantity:     r.TotalQuantity,
		UsedQuantity:      r.UsedQuantity,
		RemainingQuantity: r.RemainingQuantity,
	}
}

func orderResponse(o *domain.Order) dto.OrderResponse {
	included := o.IncludedServiceIDs
	if included == nil {
		included = []string{}
	}
	return dto.OrderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		CustomerName:       o.CustomerName,
		BranchID:           o.BranchID,
		ItemType:           o.ItemType,
		ServiceID:          o.ServiceID,
		ProductID:          o.ProductID,
		ItemName:           o.ItemName,
		IncludedServiceIDs: included,
		Price:              o.Price,
		Quantity:           o.Quantity,
		TotalPrice:         o.TotalPrice,
		PaymentMethod:      o.PaymentMethod,
		Status:             o.Status,
		AppointmentDate:    o.AppointmentDate,
		AppointmentTime:    o.AppointmentTime,
		EmployeeID:         o.EmployeeID,
		Notes:              o.Notes,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func subscriptionResponse(s *domain.Subscription) dto.SubscriptionResponse {
	productIDs := s.ProductIDs
	if productIDs == nil {
		productIDs = []string{}
	}
	return dto.SubscriptionResponse{
		ID:         s.ID,
		CompanyID:  s.CompanyID,
		ProductIDs: productIDs,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func subscriptionResponses(subs []domain.Subscription) []dto.SubscriptionResponse {
	resp := make([]dto.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		resp = append(resp, subscriptionResponse(&subs[i]))
	}
	return resp
}
