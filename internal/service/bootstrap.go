package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

// Bootstrapper seeds the first company and super administrator on an empty
// installation. Every step is skipped when its record already exists.
type Bootstrapper struct {
	cfg       config.BootstrapConfig
	companies repository.CompanyRepository
	branches  repository.BranchRepository
	employees repository.EmployeeRepository
	hasher    *auth.PasswordHasher
	logger    *zap.Logger
}

// BootstrapDependencies bundles collaborators for the bootstrapper.
type BootstrapDependencies struct {
	CompanyRepo  repository.CompanyRepository
	BranchRepo   repository.BranchRepository
	EmployeeRepo repository.EmployeeRepository
	Hasher       *auth.PasswordHasher
	Logger       *zap.Logger
}

// NewBootstrapper constructs a Bootstrapper.
func NewBootstrapper(cfg config.BootstrapConfig, deps BootstrapDependencies) *Bootstrapper {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(0)
	}
	return &Bootstrapper{
		cfg:       cfg,
		companies: deps.CompanyRepo,
		branches:  deps.BranchRepo,
		employees: deps.EmployeeRepo,
		hasher:    hasher,
		logger:    logger.Named("bootstrap"),
	}
}

// Run seeds both records. Failures are logged and never stop startup.
func (b *Bootstrapper) Run(ctx context.Context) {
	if err := b.seedCompany(ctx); err != nil {
		b.logger.Error("failed to bootstrap initial company", zap.Error(err))
	}
	if err := b.seedSuperAdmin(ctx); err != nil {
		b.logger.Error("failed to bootstrap super admin", zap.Error(err))
	}
}

func (b *Bootstrapper) seedCompany(ctx context.Context) error {
	if !b.cfg.CompanyEnabled {
		b.logger.Debug("company bootstrap disabled")
		return nil
	}
	existing, err := b.companies.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		b.logger.Debug("company bootstrap skipped, company already present")
		return nil
	}

	name := strings.TrimSpace(b.cfg.CompanyName)
	if name == "" || b.cfg.CompanyContactPerson == "" || b.cfg.CompanyEmail == "" {
		b.logger.Warn("company bootstrap skipped, incomplete configuration")
		return nil
	}
	if _, err := b.companies.GetByName(ctx, name); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	company := &domain.Company{
		Name:          name,
		ContactPerson: b.cfg.CompanyContactPerson,
		Email:         normalizeEmail(b.cfg.CompanyEmail),
		Phone:         b.cfg.CompanyPhone,
		Address:       b.cfg.CompanyAddress,
		Enabled:       b.cfg.CompanyActive,
	}
	if err := b.companies.Create(ctx, company); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	b.logger.Info("initial company created", zap.String("company_id", company.ID), zap.String("name", company.Name))
	return nil
}

func (b *Bootstrapper) seedSuperAdmin(ctx context.Context) error {
	email := normalizeEmail(b.cfg.AdminEmail)
	if email == "" || b.cfg.AdminPassword == "" {
		b.logger.Info("super admin bootstrap skipped, credentials not configured")
		return nil
	}

	role := domain.RoleSuperAdmin
	admins, err := b.employees.List(ctx, repository.EmployeeFilter{Role: &role, Limit: 1})
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		b.logger.Debug("super admin already exists")
		return nil
	}

	username := strings.TrimSpace(b.cfg.AdminUsername)
	if username == "" {
		username = "superadmin"
	}
	taken, err := b.employees.ExistsByUsernameOrEmail(ctx, username, email, "")
	if err != nil {
		return err
	}
	if taken {
		b.logger.Warn("super admin bootstrap skipped, username or email in use", zap.String("email", email))
		return nil
	}

	pin := b.cfg.AdminPin
	if !pinPattern.MatchString(pin) {
		b.logger.Warn("SUPER_ADMIN_PIN must be four digits, falling back to default")
		pin = defaultPin
	}

	var branchID string
	if id := strings.TrimSpace(b.cfg.AdminBranchID); id != "" {
		branch, err := b.branches.GetByID(ctx, id)
		switch {
		case err == nil:
			branchID = branch.ID
		case errors.Is(err, pgx.ErrNoRows):
			b.logger.Warn("SUPER_ADMIN_BRANCH_ID not found, creating super admin without branch", zap.String("branch_id", id))
		default:
			return err
		}
	}
	scope, err := domain.NewStaffScope(domain.RoleSuperAdmin, branchID)
	if err != nil {
		return err
	}

	hash, err := b.hasher.Hash(b.cfg.AdminPassword)
	if err != nil {
		return err
	}
	language := b.cfg.AdminLanguage
	if language == "" {
		language = defaultLanguage
	}
	admin := &domain.Employee{
		Username:     username,
		Firstname:    b.cfg.AdminFirstname,
		Lastname:     b.cfg.AdminLastname,
		Email:        email,
		PasswordHash: hash,
		PersonalPin:  pin,
		Scope:        scope,
		Enabled:      true,
		Language:     language,
	}
	if err := b.employees.Create(ctx, admin); err != nil {
		return err
	}
	b.logger.Info("super admin account created", zap.String("employee_id", admin.ID), zap.String("email", email))
	return nil
}
