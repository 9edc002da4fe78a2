package domain

import "time"

// AuditAction names the kind of state transition recorded.
type AuditAction string

const (
	ActionCreate            AuditAction = "CREATE"
	ActionUpdate            AuditAction = "UPDATE"
	ActionDelete            AuditAction = "DELETE"
	ActionUpdateStatus      AuditAction = "UPDATE_STATUS"
	ActionToggleStatus      AuditAction = "TOGGLE_STATUS"
	ActionActivate          AuditAction = "ACTIVATE"
	ActionDeactivate        AuditAction = "DEACTIVATE"
	ActionLogin             AuditAction = "LOGIN"
	ActionLoginQR           AuditAction = "LOGIN_QR"
	ActionLogout            AuditAction = "LOGOUT"
	ActionTokenRefresh      AuditAction = "TOKEN_REFRESH"
	ActionChangePassword    AuditAction = "CHANGE_PASSWORD"
	ActionGenerateQR        AuditAction = "GENERATE_QR"
	ActionUseService        AuditAction = "USE_SERVICE"
	ActionMedicalFormSubmit AuditAction = "MEDICAL_FORM_SUBMIT"
)

// Audited entity names.
const (
	EntityCompany        = "Company"
	EntityBranch         = "Branch"
	EntityEmployee       = "Employee"
	EntityCustomer       = "Customer"
	EntityService        = "Service"
	EntityProduct        = "Product"
	EntityOrder          = "Order"
	EntityQRCode         = "QRCode"
	EntityMedicalHistory = "MedicalHistory"
	EntitySubscription   = "Subscription"
)

// AuditRecord is an immutable audit trail entry.
type AuditRecord struct {
	ID         string         `json:"id"`
	Action     AuditAction    `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	EmployeeID *string        `json:"employee_id,omitempty"`
	CustomerID *string        `json:"customer_id,omitempty"`
	BranchID   *string        `json:"branch_id,omitempty"`
	OrderID    *string        `json:"order_id,omitempty"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
