package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// CompanyInput describes a company.
type CompanyInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// BranchInput describes a branch.
type BranchInput struct {
	CompanyID       string
	Name            string
	ContactPerson   string
	Email           string
	Phone           string
	Street          string
	Postcode        string
	City            string
	Country         string
	Timezone        string
	VisibleToOthers bool
}

// TenantService manages companies and their branches. Company mutations are
// reserved for super-admins; branch staff only see their own branch.
type TenantService struct {
	companies repository.CompanyRepository
	branches  repository.BranchRepository
	audit     *AuditService
}

// TenantDependencies bundles collaborators for the tenant service.
type TenantDependencies struct {
	CompanyRepo repository.CompanyRepository
	BranchRepo  repository.BranchRepository
	Audit       *AuditService
}

// NewTenantService constructs the service.
func NewTenantService(deps TenantDependencies) *TenantService {
	return &TenantService{
		companies: deps.CompanyRepo,
		branches:  deps.BranchRepo,
		audit:     deps.Audit,
	}
}

// CreateCompany adds a company. Names are unique.
func (s *TenantService) CreateCompany(ctx context.Context, actor Actor, in CompanyInput) (*domain.Company, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.NewValidationError("invalid company", map[string]any{"name": "required"})
	}
	if err := s.requireUniqueCompany(ctx, in.Name, ""); err != nil {
		return nil, err
	}

	company := &domain.Company{
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         normalizeEmail(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		Enabled:       true,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("company with this name already exists", nil)
		}
		return nil, err
	}

	s.recordCompany(ctx, actor, domain.ActionCreate, company, nil, companySnapshot(company))
	return company, nil
}

// GetCompany returns a company by id.
func (s *TenantService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"id": id})
		}
		return nil, err
	}
	return company, nil
}

// ListCompanies returns a page of companies.
func (s *TenantService) ListCompanies(ctx context.Context, limit, offset int) ([]domain.Company, error) {
	return s.companies.List(ctx, limit, offset)
}

// UpdateCompany edits a company.
func (s *TenantService) UpdateCompany(ctx context.Context, actor Actor, id string, in CompanyInput) (*domain.Company, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.NewValidationError("invalid company", map[string]any{"name": "required"})
	}
	if !strings.EqualFold(strings.TrimSpace(in.Name), company.Name) {
		if err := s.requireUniqueCompany(ctx, in.Name, company.ID); err != nil {
			return nil, err
		}
	}
	old := companySnapshot(company)

	company.Name = strings.TrimSpace(in.Name)
	company.ContactPerson = strings.TrimSpace(in.ContactPerson)
	company.Email = normalizeEmail(in.Email)
	company.Phone = strings.TrimSpace(in.Phone)
	company.Address = strings.TrimSpace(in.Address)
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	s.recordCompany(ctx, actor, domain.ActionUpdate, company, old, companySnapshot(company))
	return company, nil
}

// ToggleCompany flips the enabled flag of a company.
func (s *TenantService) ToggleCompany(ctx context.Context, actor Actor, id string) (*domain.Company, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	old := companySnapshot(company)
	company.Enabled = !company.Enabled
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	s.recordCompany(ctx, actor, domain.ActionToggleStatus, company, old, companySnapshot(company))
	return company, nil
}

// CreateBranch adds a branch to a company.
func (s *TenantService) CreateBranch(ctx context.Context, actor Actor, in BranchInput) (*domain.Branch, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	if err := validateBranchInput(in); err != nil {
		return nil, err
	}
	if _, err := s.GetCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	branch := &domain.Branch{
		CompanyID: in.CompanyID,
		Enabled:   true,
	}
	applyBranchInput(branch, in)
	if err := s.branches.Create(ctx, branch); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("branch with this name already exists", nil)
		}
		return nil, err
	}

	s.recordBranch(ctx, actor, domain.ActionCreate, branch, nil, branchSnapshot(branch))
	return branch, nil
}

// GetBranch returns a branch visible to the actor.
func (s *TenantService) GetBranch(ctx context.Context, actor Actor, id string) (*domain.Branch, error) {
	branch, err := s.branches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.CanAccess(branch.ID) {
		return nil, apperrors.NewNotFound("branch", map[string]any{"id": id})
	}
	return branch, nil
}

// ListBranches returns branches in the actor's scope.
func (s *TenantService) ListBranches(ctx context.Context, actor Actor, filter repository.BranchFilter) ([]domain.Branch, error) {
	if !actor.Scope.IsSenior() {
		filter.IDs = []string{actor.Scope.BranchID()}
	}
	return s.branches.List(ctx, filter)
}

// UpdateBranch edits a branch. Admins may edit their own branch.
func (s *TenantService) UpdateBranch(ctx context.Context, actor Actor, id string, in BranchInput) (*domain.Branch, error) {
	branch, err := s.GetBranch(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.CompanyID = branch.CompanyID
	if err := validateBranchInput(in); err != nil {
		return nil, err
	}
	old := branchSnapshot(branch)
	applyBranchInput(branch, in)
	if err := s.branches.Update(ctx, branch); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("branch with this name already exists", nil)
		}
		return nil, err
	}
	s.recordBranch(ctx, actor, domain.ActionUpdate, branch, old, branchSnapshot(branch))
	return branch, nil
}

// ToggleBranch flips the enabled flag of a branch.
func (s *TenantService) ToggleBranch(ctx context.Context, actor Actor, id string) (*domain.Branch, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	branch, err := s.GetBranch(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := branchSnapshot(branch)
	branch.Enabled = !branch.Enabled
	if err := s.branches.Update(ctx, branch); err != nil {
		return nil, err
	}
	s.recordBranch(ctx, actor, domain.ActionToggleStatus, branch, old, branchSnapshot(branch))
	return branch, nil
}

// PublicBranches lists enabled branches for the intake form.
func (s *TenantService) PublicBranches(ctx context.Context) ([]domain.Branch, error) {
	enabled := true
	return s.branches.List(ctx, repository.BranchFilter{Enabled: &enabled})
}

func (s *TenantService) requireUniqueCompany(ctx context.Context, name, excludeID string) error {
	existing, err := s.companies.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return apperrors.NewConflict("company with this name already exists", nil)
	}
	return nil
}

func (s *TenantService) recordCompany(ctx context.Context, actor Actor, action domain.AuditAction, c *domain.Company, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityCompany,
		EntityID:   c.ID,
		EmployeeID: actor.employeeRef(),
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}

func (s *TenantService) recordBranch(ctx context.Context, actor Actor, action domain.AuditAction, b *domain.Branch, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityBranch,
		EntityID:   b.ID,
		EmployeeID: actor.employeeRef(),
		BranchID:   &b.ID,
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}

func validateBranchInput(in BranchInput) error {
	details := map[string]any{}
	if strings.TrimSpace(in.CompanyID) == "" {
		details["company_id"] = "required"
	}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid branch", details)
	}
	return nil
}

func applyBranchInput(b *domain.Branch, in BranchInput) {
	b.Name = strings.TrimSpace(in.Name)
	b.ContactPerson = strings.TrimSpace(in.ContactPerson)
	b.Email = normalizeEmail(in.Email)
	b.Phone = strings.TrimSpace(in.Phone)
	b.Street = strings.TrimSpace(in.Street)
	b.Postcode = strings.TrimSpace(in.Postcode)
	b.City = strings.TrimSpace(in.City)
	b.Country = strings.TrimSpace(in.Country)
	b.Timezone = strings.TrimSpace(in.Timezone)
	b.VisibleToOthers = in.VisibleToOthers
}
