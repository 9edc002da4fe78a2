package domain

import "errors"

// PrincipalKind differentiates employee vs customer credentials.
type PrincipalKind string

const (
	PrincipalEmployee PrincipalKind = "employee"
	PrincipalCustomer PrincipalKind = "customer"
)

// StaffRole enumerates employee roles.
type StaffRole string

const (
	RoleSuperAdmin StaffRole = "super-admin"
	RoleAdmin      StaffRole = "admin"
	RoleManager    StaffRole = "manager"
	RoleOperator   StaffRole = "operator"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}

var (
	ErrBranchRequired = errors.New("branch is required for non super-admin employees")
	ErrUnknownRole    = errors.New("unknown staff role")
)

// StaffScope is the tenant scope of an employee: either the senior
// administrator (no branch) or a role bound to exactly one branch.
// The zero value is not a usable scope.
type StaffScope struct {
	role     StaffRole
	branchID string
}

// SeniorAdminScope returns the unscoped super-admin variant.
func SeniorAdminScope() StaffScope {
	return StaffScope{role: RoleSuperAdmin}
}

// ScopedStaff binds a non-senior role to a branch.
func ScopedStaff(role StaffRole, branchID string) (StaffScope, error) {
	if !role.Valid() || role == RoleSuperAdmin {
		return StaffScope{}, ErrUnknownRole
	}
	if branchID == "" {
		return StaffScope{}, ErrBranchRequired
	}
	return StaffScope{role: role, branchID: branchID}, nil
}

// NewStaffScope picks the variant matching role. A super-admin may carry a
// home branch, which does not restrict access.
func NewStaffScope(role StaffRole, branchID string) (StaffScope, error) {
	if role == RoleSuperAdmin {
		return StaffScope{role: RoleSuperAdmin, branchID: branchID}, nil
	}
	return ScopedStaff(role, branchID)
}

func (s StaffScope) Role() StaffRole { return s.role }
func (s StaffScope) BranchID() string { return s.branchID }
func (s StaffScope) IsSenior() bool { return s.role == RoleSuperAdmin }

// CanAccessBranch reports whether the scope covers branchID.
func (s StaffScope) CanAccessBranch(branchID string) bool {
	return s.IsSenior() || (s.branchID != "" && s.branchID == branchID)
}

// PrincipalContext is what a validated bearer credential resolves to.
type PrincipalContext struct {
	SubjectID string
	Kind      PrincipalKind
	Role      StaffRole
	BranchID  string
	SessionID string
}

// IsEmployee reports whether the caller is staff.
func (p PrincipalContext) IsEmployee() bool {
	return p.Kind == PrincipalEmployee
}

// Scope rebuilds the staff scope carried in the credential.
func (p PrincipalContext) Scope() (StaffScope, error) {
	return NewStaffScope(p.Role, p.BranchID)
}
