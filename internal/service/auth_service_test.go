package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func TestLoginIssuesCachedSession(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	emp := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	res, err := h.auth.Login(context.Background(), "  Anna@Example.com ", testPassword, testClient)
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, emp.ID, res.Principal.ID)
	require.Equal(t, domain.RoleManager, res.Principal.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), res.AccessExpiresAt, 5*time.Second)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), res.RefreshExpiresAt, 5*time.Second)

	principal, err := h.auth.ValidateBearer(context.Background(), res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, emp.ID, principal.SubjectID)
	require.Equal(t, branch.ID, principal.BranchID)

	ttl, ok := h.cache.TTL(principal.SessionID)
	require.True(t, ok)
	require.InDelta(t, (7 * 24 * time.Hour).Seconds(), ttl.Seconds(), 5)

	session, ok := h.sessions.Get(principal.SessionID)
	require.True(t, ok)
	require.True(t, session.Active)
	require.Equal(t, testClient.IPAddress, session.IPAddress)

	logins := h.audits.ByAction(domain.ActionLogin)
	require.Len(t, logins, 1)
	require.Equal(t, emp.ID, logins[0].EntityID)
	require.Equal(t, testClient.IPAddress, logins[0].IPAddress)
	require.Equal(t, float64(1), counterValue(t, h.metrics, "auth_logins_total", map[string]string{"kind": "employee", "result": "ok"}))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleOperator, branch.ID)
	disabled := h.seedEmployee(t, "off@example.com", domain.RoleOperator, branch.ID)
	disabled.Enabled = false
	require.NoError(t, h.employees.Update(context.Background(), disabled))

	_, wrongPassword := h.auth.Login(context.Background(), "anna@example.com", "nope", testClient)
	_, unknownEmail := h.auth.Login(context.Background(), "ghost@example.com", testPassword, testClient)
	_, disabledAccount := h.auth.Login(context.Background(), "off@example.com", testPassword, testClient)

	for _, err := range []error{wrongPassword, unknownEmail, disabledAccount} {
		requireCode(t, err, apperrors.CodeUnauthorized)
		require.Equal(t, wrongPassword.Error(), err.Error())
	}
	require.Empty(t, h.audits.ByAction(domain.ActionLogin))
	require.Equal(t, float64(3), counterValue(t, h.metrics, "auth_logins_total", map[string]string{"kind": "employee", "result": "rejected"}))
}

func TestLogoutRevokesAccessTokenImmediately(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleAdmin, branch.ID)

	res, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)
	principal, err := h.auth.ValidateBearer(context.Background(), res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, h.auth.Logout(context.Background(), *principal, testClient))

	_, err = h.auth.ValidateBearer(context.Background(), res.AccessToken)
	requireCode(t, err, apperrors.CodeUnauthorized)

	session, ok := h.sessions.Get(principal.SessionID)
	require.True(t, ok)
	require.False(t, session.Active)

	// a second logout is a no-op
	require.NoError(t, h.auth.Logout(context.Background(), *principal, testClient))
	require.Len(t, h.audits.ByAction(domain.ActionLogout), 1)
}

func TestRefreshTokenWorksOnce(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	first, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)
	oldPrincipal, err := h.auth.ValidateBearer(context.Background(), first.AccessToken)
	require.NoError(t, err)

	second, err := h.auth.Refresh(context.Background(), first.RefreshToken, testClient)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = h.auth.Refresh(context.Background(), first.RefreshToken, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)

	// the superseded session no longer authenticates, the new one does
	_, err = h.auth.ValidateBearer(context.Background(), first.AccessToken)
	requireCode(t, err, apperrors.CodeUnauthorized)
	newPrincipal, err := h.auth.ValidateBearer(context.Background(), second.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, oldPrincipal.SessionID, newPrincipal.SessionID)

	require.Len(t, h.audits.ByAction(domain.ActionTokenRefresh), 1)
}

func TestRefreshRejectsDisabledPrincipal(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	emp := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	res, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)

	emp.Enabled = false
	require.NoError(t, h.employees.Update(context.Background(), emp))

	_, err = h.auth.Refresh(context.Background(), res.RefreshToken, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	res, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)

	_, err = h.auth.Refresh(context.Background(), res.AccessToken, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = h.auth.ValidateBearer(context.Background(), res.RefreshToken)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestValidateBearerFailsClosedWhenCacheIsDown(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	res, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)

	h.cache.Down = true
	_, err = h.auth.ValidateBearer(context.Background(), res.AccessToken)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestQRCodeLoginIsSingleUse(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)

	qr, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), qr.ExpiresAt, 5*time.Second)

	res, err := h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	require.NoError(t, err)
	require.Equal(t, customer.ID, res.Principal.ID)
	require.Equal(t, domain.PrincipalCustomer, res.Principal.Kind)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), res.RefreshExpiresAt, 5*time.Second)

	stored, err := h.qrCodes.GetByCode(context.Background(), qr.Code)
	require.NoError(t, err)
	require.False(t, stored.Valid)
	require.NotNil(t, stored.UsedAt)

	_, err = h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)
	require.Contains(t, err.Error(), "invalid or expired QR code")

	reloaded, err := h.customers.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastVisit)
	require.Len(t, h.audits.ByAction(domain.ActionLoginQR), 1)
	require.Len(t, h.audits.ByAction(domain.ActionGenerateQR), 1)
}

func TestQRCodeConcurrentRedemptionHasOneWinner(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)

	qr, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	require.NoError(t, err)

	const callers = 16
	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
			switch {
			case err == nil:
				wins.Add(1)
			case apperrors.IsCode(err, apperrors.CodeUnauthorized):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
	require.Equal(t, int32(callers-1), rejected.Load())
}

func TestGenerateQRCodeInvalidatesPreviousCode(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	actor := actorFor(t, manager)

	first, err := h.auth.GenerateQRCode(context.Background(), actor, customer.ID)
	require.NoError(t, err)
	second, err := h.auth.GenerateQRCode(context.Background(), actor, customer.ID)
	require.NoError(t, err)

	_, err = h.auth.LoginWithQR(context.Background(), first.Code, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = h.auth.LoginWithQR(context.Background(), second.Code, testClient)
	require.NoError(t, err)

	reloaded, err := h.customers.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, *reloaded.QRCodeID)
}

func TestGenerateQRCodeOutsideBranchIsNotFound(t *testing.T) {
	h := newHarness(t)
	home := h.seedBranch(t, "home")
	other := h.seedBranch(t, "other")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, home.ID)
	customer := h.seedCustomer(t, "x@example.com", other.ID)

	_, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestQRLoginRejectsDisabledCustomer(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)

	qr, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	require.NoError(t, err)

	reloaded, err := h.customers.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	reloaded.Enabled = false
	require.NoError(t, h.customers.Update(context.Background(), reloaded))

	_, err = h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestQRLoginCountsFailureAfterRedemption(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)

	qr, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	require.NoError(t, err)

	h.sessions.FailCreate = true
	_, err = h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	require.Error(t, err)
	require.False(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	require.Equal(t, float64(1), counterValue(t, h.metrics, "partial_failures_total", map[string]string{"operation": "login_qr"}))
	require.Empty(t, h.audits.ByAction(domain.ActionLoginQR))
}

func TestQRLoginRollsBackRedemptionWhenCacheWriteFails(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)

	qr, err := h.auth.GenerateQRCode(context.Background(), actorFor(t, manager), customer.ID)
	require.NoError(t, err)

	h.cache.Down = true
	res, err := h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	requireCode(t, err, apperrors.CodeInternal)
	require.Nil(t, res)
	require.Equal(t, float64(1), counterValue(t, h.metrics, "partial_failures_total", map[string]string{"operation": "login_qr"}))
	require.Equal(t, int64(1), h.tx.Rollbacks())

	stored, err := h.qrCodes.GetByCode(context.Background(), qr.Code)
	require.NoError(t, err)
	require.True(t, stored.Valid)
	require.Nil(t, stored.UsedAt)
	active, err := h.sessions.ListActiveByPrincipal(context.Background(), customer.ID)
	require.NoError(t, err)
	require.Empty(t, active)
	require.Empty(t, h.audits.ByAction(domain.ActionLoginQR))

	h.cache.Down = false
	res, err = h.auth.LoginWithQR(context.Background(), qr.Code, testClient)
	require.NoError(t, err)
	_, err = h.auth.ValidateBearer(context.Background(), res.AccessToken)
	require.NoError(t, err)
}

func TestLoginFailsWhenCacheWriteFails(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	emp := h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	h.cache.Down = true
	_, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	requireCode(t, err, apperrors.CodeInternal)
	require.Equal(t, float64(1), counterValue(t, h.metrics, "partial_failures_total", map[string]string{"operation": "login"}))

	active, err := h.sessions.ListActiveByPrincipal(context.Background(), emp.ID)
	require.NoError(t, err)
	require.Empty(t, active)
	require.Empty(t, h.audits.ByAction(domain.ActionLogin))
}

func TestRefreshKeepsOldSessionWhenCacheWriteFails(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	h.seedEmployee(t, "anna@example.com", domain.RoleManager, branch.ID)

	res, err := h.auth.Login(context.Background(), "anna@example.com", testPassword, testClient)
	require.NoError(t, err)

	h.cache.Down = true
	_, err = h.auth.Refresh(context.Background(), res.RefreshToken, testClient)
	requireCode(t, err, apperrors.CodeInternal)
	require.Equal(t, float64(1), counterValue(t, h.metrics, "partial_failures_total", map[string]string{"operation": "refresh"}))

	h.cache.Down = false
	_, err = h.auth.Refresh(context.Background(), res.RefreshToken, testClient)
	require.NoError(t, err)
}

func TestChangePasswordRedactsAuditValues(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	emp := h.seedEmployee(t, "anna@example.com", domain.RoleOperator, branch.ID)
	principal := employeePrincipal(emp)

	err := h.auth.ChangePassword(context.Background(), principal, "wrong", "new-password-1", testClient)
	requireCode(t, err, apperrors.CodeUnauthorized)

	require.NoError(t, h.auth.ChangePassword(context.Background(), principal, testPassword, "new-password-1", testClient))
	_, err = h.auth.Login(context.Background(), "anna@example.com", "new-password-1", testClient)
	require.NoError(t, err)

	records := h.audits.ByAction(domain.ActionChangePassword)
	require.Len(t, records, 1)
	require.Equal(t, RedactedValue, records[0].OldValues["password"])
	require.Equal(t, RedactedValue, records[0].NewValues["password"])
}

func TestMeReflectsCurrentPrincipal(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	emp := h.seedEmployee(t, "anna@example.com", domain.RoleAdmin, branch.ID)

	me, err := h.auth.Me(context.Background(), employeePrincipal(emp))
	require.NoError(t, err)
	require.Equal(t, emp.Email, me.Email)
	require.Equal(t, domain.RoleAdmin, me.Role)

	sessions, err := h.auth.ListSessions(context.Background(), employeePrincipal(emp))
	require.NoError(t, err)
	require.Empty(t, sessions)
}
