package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// SubscriptionInput describes a new subscription. Active defaults to true.
type SubscriptionInput struct {
	CompanyID  string
	ProductIDs []string
	StartDate  time.Time
	EndDate    time.Time
	Active     *bool
}

// SubscriptionUpdateInput carries the fields to change; nil means unchanged.
type SubscriptionUpdateInput struct {
	CompanyID  *string
	ProductIDs []string
	StartDate  *time.Time
	EndDate    *time.Time
}

// SubscriptionService manages the product subscriptions of companies. Writes
// are reserved for super-admins. Branch staff read only their own company's.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	companies     repository.CompanyRepository
	branches      repository.BranchRepository
	products      repository.ProductRepository
	tx            persistence.TxManager
	audit         *AuditService
	now           func() time.Time
}

// SubscriptionDependencies bundles collaborators for the subscription service.
type SubscriptionDependencies struct {
	SubscriptionRepo repository.SubscriptionRepository
	CompanyRepo      repository.CompanyRepository
	BranchRepo       repository.BranchRepository
	ProductRepo      repository.ProductRepository
	TxManager        persistence.TxManager
	Audit            *AuditService
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(deps SubscriptionDependencies) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: deps.SubscriptionRepo,
		companies:     deps.CompanyRepo,
		branches:      deps.BranchRepo,
		products:      deps.ProductRepo,
		tx:            deps.TxManager,
		audit:         deps.Audit,
		now:           time.Now,
	}
}

// Create adds a subscription for an existing company. Products must exist
// and be active, and an active subscription may not overlap another active
// one of the same company.
func (s *SubscriptionService) Create(ctx context.Context, actor Actor, in SubscriptionInput) (*domain.Subscription, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	companyID := strings.TrimSpace(in.CompanyID)
	if companyID == "" {
		return nil, apperrors.NewValidationError("invalid subscription", map[string]any{"company_id": "required"})
	}
	if err := s.requireCompany(ctx, companyID); err != nil {
		return nil, err
	}
	productIDs, err := s.requireActiveProducts(ctx, in.ProductIDs)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		CompanyID:  companyID,
		ProductIDs: productIDs,
		StartDate:  in.StartDate.UTC(),
		EndDate:    in.EndDate.UTC(),
		Active:     in.Active == nil || *in.Active,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireNoOverlap(ctx, sub); err != nil {
			return err
		}
		return s.subscriptions.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.ActionCreate, sub, nil, subscriptionSnapshot(sub))
	return sub, nil
}

// Get returns a subscription visible to the actor.
func (s *SubscriptionService) Get(ctx context.Context, actor Actor, id string) (*domain.Subscription, error) {
	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("subscription", map[string]any{"id": id})
		}
		return nil, err
	}
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil && *scope != sub.CompanyID {
		return nil, apperrors.NewNotFound("subscription", map[string]any{"id": id})
	}
	return sub, nil
}

// List returns subscriptions newest period first. Branch staff are limited
// to their own company whatever the filter asks for.
func (s *SubscriptionService) List(ctx context.Context, actor Actor, filter repository.SubscriptionFilter) ([]domain.Subscription, error) {
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		filter.CompanyID = scope
	}
	return s.subscriptions.List(ctx, filter)
}

// ActiveFor returns the subscriptions of companyID that are active and in
// period right now.
func (s *SubscriptionService) ActiveFor(ctx context.Context, actor Actor, companyID string) ([]domain.Subscription, error) {
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil && *scope != companyID {
		return nil, apperrors.NewNotFound("company", map[string]any{"id": companyID})
	}
	now := s.now()
	return s.subscriptions.List(ctx, repository.SubscriptionFilter{CompanyID: &companyID, CurrentAt: &now})
}

// Stats summarizes subscriptions of one company, or all for super-admins
// when companyID is nil.
func (s *SubscriptionService) Stats(ctx context.Context, actor Actor, companyID *string) (*domain.SubscriptionStats, error) {
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		companyID = scope
	} else if companyID != nil && *companyID == "" {
		companyID = nil
	}
	return s.subscriptions.Stats(ctx, companyID, s.now())
}

// Update changes the company, products or period of a subscription. The
// resulting period is validated as a whole.
func (s *SubscriptionService) Update(ctx context.Context, actor Actor, id string, in SubscriptionUpdateInput) (*domain.Subscription, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := subscriptionSnapshot(sub)

	if in.CompanyID != nil && strings.TrimSpace(*in.CompanyID) != sub.CompanyID {
		companyID := strings.TrimSpace(*in.CompanyID)
		if err := s.requireCompany(ctx, companyID); err != nil {
			return nil, err
		}
		sub.CompanyID = companyID
	}
	if in.ProductIDs != nil {
		productIDs, err := s.requireActiveProducts(ctx, in.ProductIDs)
		if err != nil {
			return nil, err
		}
		sub.ProductIDs = productIDs
	}
	if in.StartDate != nil {
		sub.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		sub.EndDate = in.EndDate.UTC()
	}
	if err := validatePeriod(sub.StartDate, sub.EndDate); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireNoOverlap(ctx, sub); err != nil {
			return err
		}
		return s.subscriptions.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUpdate, sub, old, subscriptionSnapshot(sub))
	return sub, nil
}

// ToggleStatus flips the active flag. Activating is subject to the same
// overlap rule as creation.
func (s *SubscriptionService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Subscription, error) {
	if !actor.Scope.IsSenior() {
		return nil, apperrors.NewForbidden("super-admin access required")
	}
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := subscriptionSnapshot(sub)
	sub.Active = !sub.Active

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireNoOverlap(ctx, sub); err != nil {
			return err
		}
		return s.subscriptions.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	action := domain.ActionDeactivate
	if sub.Active {
		action = domain.ActionActivate
	}
	s.record(ctx, actor, action, sub, old, subscriptionSnapshot(sub))
	return sub, nil
}

// Delete removes a subscription.
func (s *SubscriptionService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Scope.IsSenior() {
		return apperrors.NewForbidden("super-admin access required")
	}
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.subscriptions.Delete(ctx, sub.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("subscription", map[string]any{"id": id})
		}
		return err
	}

	s.record(ctx, actor, domain.ActionDelete, sub, subscriptionSnapshot(sub), nil)
	return nil
}

// companyScope returns the only company the actor may read, or nil for
// super-admins.
func (s *SubscriptionService) companyScope(ctx context.Context, actor Actor) (*string, error) {
	if actor.Scope.IsSenior() {
		return nil, nil
	}
	branch, err := s.branches.GetByID(ctx, actor.Scope.BranchID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("invalid staff scope")
		}
		return nil, err
	}
	return &branch.CompanyID, nil
}

func (s *SubscriptionService) requireCompany(ctx context.Context, id string) error {
	if _, err := s.companies.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("company", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// requireActiveProducts dedupes ids and checks every one is an active product.
func (s *SubscriptionService) requireActiveProducts(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	if len(result) == 0 {
		return nil, apperrors.NewValidationError("invalid subscription", map[string]any{"product_ids": "required"})
	}

	var missing []string
	for _, id := range result {
		product, err := s.products.GetByID(ctx, id)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if product == nil || !product.Active {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("one or more products not found or inactive", map[string]any{"product_ids": missing})
	}
	return result, nil
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewValidationError("invalid subscription", map[string]any{"period": "start_date and end_date are required"})
	}
	if !start.Before(end) {
		return apperrors.NewValidationError("start date must be before end date", nil)
	}
	return nil
}

// requireNoOverlap runs inside the write transaction, holding the company
// lock until commit.
func (s *SubscriptionService) requireNoOverlap(ctx context.Context, sub *domain.Subscription) error {
	if !sub.Active {
		return nil
	}
	if err := s.subscriptions.LockCompany(ctx, sub.CompanyID); err != nil {
		return err
	}
	existing, err := s.subscriptions.FindOverlapping(ctx, sub.CompanyID, sub.StartDate, sub.EndDate, sub.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	return apperrors.NewConflict("active subscription already exists for this period", map[string]any{
		"subscription_id": existing.ID,
	})
}

func (s *SubscriptionService) record(ctx context.Context, actor Actor, action domain.AuditAction, sub *domain.Subscription, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntitySubscription,
		EntityID:   sub.ID,
		EmployeeID: actor.employeeRef(),
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}
