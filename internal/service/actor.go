package service

import (
	"strings"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// ClientInfo is where a request came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Actor is an authenticated employee performing a mutation, with the tenant
// scope it may act within.
type Actor struct {
	EmployeeID string
	Scope      domain.StaffScope
	Client     ClientInfo
}

// NewActor builds an Actor from a validated employee principal.
func NewActor(p domain.PrincipalContext, client ClientInfo) (Actor, error) {
	if !p.IsEmployee() {
		return Actor{}, apperrors.NewForbidden("employee access required")
	}
	scope, err := p.Scope()
	if err != nil {
		return Actor{}, apperrors.NewForbidden("invalid staff scope")
	}
	return Actor{EmployeeID: p.SubjectID, Scope: scope, Client: client}, nil
}

// ResolveBranch returns the branch a mutation applies to. An empty request
// falls back to the actor's own branch. Branches outside the scope are
// reported as not found.
func (a Actor) ResolveBranch(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if a.Scope.BranchID() == "" {
			return "", apperrors.NewValidationError("branch_id is required", nil)
		}
		return a.Scope.BranchID(), nil
	}
	if !a.Scope.CanAccessBranch(requested) {
		return "", apperrors.NewNotFound("branch", map[string]any{"id": requested})
	}
	return requested, nil
}

// CanAccess reports whether the actor may see records of branchID.
func (a Actor) CanAccess(branchID string) bool {
	return a.Scope.CanAccessBranch(branchID)
}

// BranchFilter narrows listings to the actor's branch. Senior admins get
// the requested branch, or nil for all.
func (a Actor) BranchFilter(requested *string) *string {
	if a.Scope.IsSenior() {
		if requested != nil && *requested != "" {
			return requested
		}
		return nil
	}
	branch := a.Scope.BranchID()
	return &branch
}

func (a Actor) employeeRef() *string {
	if a.EmployeeID == "" {
		return nil
	}
	id := a.EmployeeID
	return &id
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
