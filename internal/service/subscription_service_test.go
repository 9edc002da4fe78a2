package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func (h *harness) seedCompany(t *testing.T, name string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, ContactPerson: "Owner", Email: name + "@example.com", Enabled: true}
	require.NoError(t, h.companies.Create(context.Background(), c))
	return c
}

func day(offset int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

type subscriptionFixture struct {
	h       *harness
	company *domain.Company
	branch  *domain.Branch
	senior  Actor
	bundle  *domain.Product
}

func newSubscriptionFixture(t *testing.T) subscriptionFixture {
	h := newHarness(t)
	company := h.seedCompany(t, "acme")
	branch := &domain.Branch{CompanyID: company.ID, Name: "main", Email: "main@example.com", Enabled: true}
	require.NoError(t, h.branches.Create(context.Background(), branch))
	senior := h.seedEmployee(t, "s@example.com", domain.RoleSuperAdmin, "")
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "card", branch.ID, svc.ID, 10)
	return subscriptionFixture{h: h, company: company, branch: branch, senior: actorFor(t, senior), bundle: bundle}
}

func TestSubscriptionCreateValidates(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	_, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: "missing", ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID, "missing"}, StartDate: day(0), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, StartDate: day(0), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(30), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeValidation)

	inactive := *f.bundle
	inactive.Active = false
	require.NoError(t, f.h.products.Update(ctx, &inactive))
	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeValidation)

	manager := f.h.seedEmployee(t, "m@example.com", domain.RoleManager, f.branch.ID)
	_, err = f.h.subscription.Create(ctx, actorFor(t, manager), SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	requireCode(t, err, apperrors.CodeForbidden)

	require.Empty(t, f.h.audits.ByAction(domain.ActionCreate))
}

func TestSubscriptionRejectsOverlappingActivePeriods(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	first, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID, f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	require.NoError(t, err)
	require.True(t, first.Active)
	require.Equal(t, []string{f.bundle.ID}, first.ProductIDs)

	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(30), EndDate: day(60)})
	requireCode(t, err, apperrors.CodeConflict)

	inactive := false
	paused, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(10), EndDate: day(20), Active: &inactive})
	require.NoError(t, err)

	_, err = f.h.subscription.ToggleStatus(ctx, f.senior, paused.ID)
	requireCode(t, err, apperrors.CodeConflict)

	next, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(31), EndDate: day(60)})
	require.NoError(t, err)

	newStart := day(25)
	_, err = f.h.subscription.Update(ctx, f.senior, next.ID, SubscriptionUpdateInput{StartDate: &newStart})
	requireCode(t, err, apperrors.CodeConflict)

	newEnd := day(90)
	extended, err := f.h.subscription.Update(ctx, f.senior, next.ID, SubscriptionUpdateInput{EndDate: &newEnd})
	require.NoError(t, err)
	require.Equal(t, day(90), extended.EndDate)

	other := f.h.seedCompany(t, "other")
	_, err = f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: other.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	require.NoError(t, err)

	require.Len(t, f.h.audits.ByAction(domain.ActionCreate), 4)
	require.Contains(t, f.h.subs.Locked, f.company.ID)
}

func TestSubscriptionToggleAndDelete(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	sub, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	require.NoError(t, err)

	toggled, err := f.h.subscription.ToggleStatus(ctx, f.senior, sub.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)
	toggled, err = f.h.subscription.ToggleStatus(ctx, f.senior, sub.ID)
	require.NoError(t, err)
	require.True(t, toggled.Active)
	require.Len(t, f.h.audits.ByAction(domain.ActionDeactivate), 1)
	require.Len(t, f.h.audits.ByAction(domain.ActionActivate), 1)

	require.NoError(t, f.h.subscription.Delete(ctx, f.senior, sub.ID))
	_, err = f.h.subscription.Get(ctx, f.senior, sub.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	records := f.h.audits.ByAction(domain.ActionDelete)
	require.Len(t, records, 1)
	require.Equal(t, domain.EntitySubscription, records[0].Entity)
	require.Equal(t, sub.ID, records[0].OldValues["id"])
}

func TestSubscriptionReadsAreCompanyScoped(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	other := f.h.seedCompany(t, "other")

	mine, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: f.company.ID, ProductIDs: []string{f.bundle.ID}, StartDate: time.Now().Add(-time.Hour), EndDate: time.Now().Add(10 * 24 * time.Hour)})
	require.NoError(t, err)
	theirs, err := f.h.subscription.Create(ctx, f.senior, SubscriptionInput{CompanyID: other.ID, ProductIDs: []string{f.bundle.ID}, StartDate: day(0), EndDate: day(30)})
	require.NoError(t, err)

	manager := actorFor(t, f.h.seedEmployee(t, "m@example.com", domain.RoleManager, f.branch.ID))

	list, err := f.h.subscription.List(ctx, manager, repository.SubscriptionFilter{CompanyID: &other.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	_, err = f.h.subscription.Get(ctx, manager, theirs.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = f.h.subscription.ActiveFor(ctx, manager, other.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	current, err := f.h.subscription.ActiveFor(ctx, manager, f.company.ID)
	require.NoError(t, err)
	require.Len(t, current, 1)

	stats, err := f.h.subscription.Stats(ctx, manager, nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 1, stats.Current)
	require.Equal(t, 1, stats.ExpiringSoon)

	all, err := f.h.subscription.Stats(ctx, f.senior, nil)
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	require.Equal(t, 2, all.Active)
}
