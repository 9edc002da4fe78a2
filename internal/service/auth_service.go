package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgInvalidQRCode      = "invalid or expired QR code"
	msgInvalidRefresh     = "invalid or expired refresh token"
	msgInvalidToken       = "invalid or expired token"
)

// PrincipalSummary describes the authenticated principal in login responses.
type PrincipalSummary struct {
	ID        string
	Kind      domain.PrincipalKind
	Email     string
	Firstname string
	Lastname  string
	Username  string
	Role      domain.StaffRole
	BranchID  string
	Language  string
}

// AuthResult is a freshly issued credential pair.
type AuthResult struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Principal        PrincipalSummary
}

// AuthService is the identity and session broker.
type AuthService struct {
	employees   repository.EmployeeRepository
	customers   repository.CustomerRepository
	sessions    repository.SessionRepository
	cache       repository.SessionCache
	qrCodes     repository.QRCodeRepository
	tx          persistence.TxManager
	audit       *AuditService
	metrics     *observability.Metrics
	logger      *zap.Logger
	tokenMgr    *auth.TokenManager
	hasher      *auth.PasswordHasher
	accessTTL   time.Duration
	staffTTL    time.Duration
	customerTTL time.Duration
	qrTTL       time.Duration
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	CustomerRepo repository.CustomerRepository
	SessionRepo  repository.SessionRepository
	SessionCache repository.SessionCache
	QRCodeRepo   repository.QRCodeRepository
	TxManager    persistence.TxManager
	Audit        *AuditService
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		employees:   deps.EmployeeRepo,
		customers:   deps.CustomerRepo,
		sessions:    deps.SessionRepo,
		cache:       deps.SessionCache,
		qrCodes:     deps.QRCodeRepo,
		tx:          deps.TxManager,
		audit:       deps.Audit,
		metrics:     deps.Metrics,
		logger:      logger,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		hasher:      auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		accessTTL:   cfg.Auth.AccessTokenTTL(),
		staffTTL:    cfg.Auth.EmployeeSessionTTL(),
		customerTTL: cfg.Auth.CustomerSessionTTL(),
		qrTTL:       cfg.Auth.QRCodeTTL(),
		now:         time.Now,
	}
}

// Hasher exposes the password hasher so other services hash with the same cost.
func (s *AuthService) Hasher() *auth.PasswordHasher {
	return s.hasher
}

// Login authenticates an enabled employee by email and password. Unknown
// email, disabled account and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	emp, err := s.employees.FindEnabledByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.CompareDummy(password)
			s.metrics.RecordLogin(string(domain.PrincipalEmployee), "rejected")
			return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if err := s.hasher.Compare(emp.PasswordHash, password); err != nil {
		s.metrics.RecordLogin(string(domain.PrincipalEmployee), "rejected")
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}

	var (
		result *AuthResult
		bound  domain.PrincipalContext
		cached bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		result, bound, err = s.openSession(ctx, employeePrincipal(emp), s.staffTTL, client)
		if err != nil {
			return err
		}
		if err := s.cacheSession(ctx, bound, result.RefreshExpiresAt); err != nil {
			return err
		}
		cached = true
		return nil
	})
	if err != nil {
		return nil, s.sessionOpenFailed(ctx, "login", bound, cached, err)
	}
	result.Principal = employeeSummary(emp)

	if err := s.employees.UpdateLastLogin(ctx, emp.ID, s.now()); err != nil {
		s.logger.Warn("update last login", zap.String("employee_id", emp.ID), zap.Error(err))
	}

	s.metrics.RecordLogin(string(domain.PrincipalEmployee), "ok")
	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionLogin,
		Entity:     domain.EntityEmployee,
		EntityID:   emp.ID,
		EmployeeID: &emp.ID,
		BranchID:   strPtr(emp.BranchID()),
		NewValues:  map[string]any{"email": emp.Email, "role": string(emp.Role())},
		Client:     client,
	})
	return result, nil
}

// LoginWithQR redeems a one-time customer code and opens a customer session.
// Redemption, the durable session and its cache entry succeed or fail
// together, so a failed login leaves the code usable.
func (s *AuthService) LoginWithQR(ctx context.Context, code string, client ClientInfo) (*AuthResult, error) {
	if code == "" {
		return nil, apperrors.NewUnauthorized(msgInvalidQRCode)
	}

	var (
		result   *AuthResult
		bound    domain.PrincipalContext
		customer *domain.Customer
		qr       *domain.QRCode
		redeemed bool
		cached   bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		qr, err = s.qrCodes.Redeem(ctx, code, s.now())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized(msgInvalidQRCode)
			}
			return err
		}
		redeemed = true

		customer, err = s.customers.GetByID(ctx, qr.CustomerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized(msgInvalidQRCode)
			}
			return err
		}
		if !customer.Enabled {
			return apperrors.NewUnauthorized(msgInvalidQRCode)
		}

		result, bound, err = s.openSession(ctx, customerPrincipal(customer), s.customerTTL, client)
		if err != nil {
			return err
		}
		if err := s.cacheSession(ctx, bound, result.RefreshExpiresAt); err != nil {
			return err
		}
		cached = true
		return nil
	})
	if err != nil {
		s.metrics.RecordLogin(string(domain.PrincipalCustomer), "rejected")
		if redeemed && !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			s.logger.Error("qr login failed after redemption, redemption rolled back",
				zap.String("qr_code_id", qr.ID),
				zap.String("customer_id", qr.CustomerID),
				zap.Error(err))
			return nil, s.sessionOpenFailed(ctx, "login_qr", bound, cached, err)
		}
		return nil, err
	}

	result.Principal = customerSummary(customer)

	if err := s.customers.TouchLastVisit(ctx, customer.ID, s.now()); err != nil {
		s.logger.Warn("update last visit", zap.String("customer_id", customer.ID), zap.Error(err))
	}

	s.metrics.RecordLogin(string(domain.PrincipalCustomer), "ok")
	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionLoginQR,
		Entity:     domain.EntityCustomer,
		EntityID:   customer.ID,
		CustomerID: &customer.ID,
		BranchID:   strPtr(qr.BranchID),
		NewValues:  map[string]any{"qrCodeId": qr.ID},
		Client:     client,
	})
	return result, nil
}

// Refresh exchanges a refresh token for a new credential pair. The presented
// session is superseded, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	claims, err := s.tokenMgr.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
	}

	session, err := s.sessions.FindActiveByToken(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
		}
		return nil, err
	}
	if session.PrincipalID != claims.Subject || session.Kind != claims.Kind {
		return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
	}

	principal, summary, ttl, err := s.reloadPrincipal(ctx, claims.Subject, claims.Kind)
	if err != nil {
		return nil, err
	}

	var (
		result *AuthResult
		bound  domain.PrincipalContext
		cached bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.sessions.Deactivate(ctx, claims.SessionID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewUnauthorized(msgInvalidRefresh)
		}
		result, bound, err = s.openSession(ctx, principal, ttl, client)
		if err != nil {
			return err
		}
		if err := s.cacheSession(ctx, bound, result.RefreshExpiresAt); err != nil {
			return err
		}
		cached = true
		return nil
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			return nil, err
		}
		return nil, s.sessionOpenFailed(ctx, "refresh", bound, cached, err)
	}

	s.cache.Delete(ctx, claims.SessionID)
	result.Principal = summary

	entry := AuditEntry{
		Action:    domain.ActionTokenRefresh,
		EntityID:  principal.SubjectID,
		BranchID:  strPtr(principal.BranchID),
		NewValues: map[string]any{"kind": string(principal.Kind)},
		Client:    client,
	}
	if principal.IsEmployee() {
		entry.Entity = domain.EntityEmployee
		entry.EmployeeID = &principal.SubjectID
	} else {
		entry.Entity = domain.EntityCustomer
		entry.CustomerID = &principal.SubjectID
	}
	s.audit.Record(ctx, entry)
	return result, nil
}

// Logout revokes the session behind a validated principal. Logging out an
// already inactive or unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, principal domain.PrincipalContext, client ClientInfo) error {
	if principal.SessionID == "" {
		return nil
	}
	s.cache.Delete(ctx, principal.SessionID)

	ok, err := s.sessions.Deactivate(ctx, principal.SessionID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	entry := AuditEntry{
		Action:   domain.ActionLogout,
		EntityID: principal.SubjectID,
		BranchID: strPtr(principal.BranchID),
		Client:   client,
	}
	if principal.IsEmployee() {
		entry.Entity = domain.EntityEmployee
		entry.EmployeeID = &principal.SubjectID
	} else {
		entry.Entity = domain.EntityCustomer
		entry.CustomerID = &principal.SubjectID
	}
	s.audit.Record(ctx, entry)
	return nil
}

// ValidateBearer resolves an access token to its principal. The token must
// verify and its session must still be live in the session cache.
func (s *AuthService) ValidateBearer(ctx context.Context, token string) (*domain.PrincipalContext, error) {
	claims, err := s.tokenMgr.Parse(token, auth.TokenAccess)
	if err != nil {
		return nil, apperrors.NewUnauthorized(msgInvalidToken)
	}
	entry, ok := s.cache.Get(ctx, claims.SessionID)
	if !ok || entry.PrincipalID != claims.Subject || entry.Kind != claims.Kind {
		return nil, apperrors.NewUnauthorized(msgInvalidToken)
	}
	principal := claims.Principal()
	return &principal, nil
}

// Me returns the summary of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, principal domain.PrincipalContext) (*PrincipalSummary, error) {
	_, summary, _, err := s.reloadPrincipal(ctx, principal.SubjectID, principal.Kind)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListSessions returns the live sessions of the principal.
func (s *AuthService) ListSessions(ctx context.Context, principal domain.PrincipalContext) ([]domain.Session, error) {
	return s.sessions.ListActiveByPrincipal(ctx, principal.SubjectID)
}

// GenerateQRCode issues a new one-time login code for a customer and
// invalidates earlier ones.
func (s *AuthService) GenerateQRCode(ctx context.Context, actor Actor, customerID string) (*domain.QRCode, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": customerID})
		}
		return nil, err
	}
	if !actor.CanAccess(customer.BranchID) {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": customerID})
	}
	if !customer.Enabled {
		return nil, apperrors.NewConflict("customer is disabled", nil)
	}

	qr, err := s.issueQRCode(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionGenerateQR,
		Entity:     domain.EntityQRCode,
		EntityID:   qr.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &customer.ID,
		BranchID:   &customer.BranchID,
		NewValues:  map[string]any{"customerId": customer.ID, "expiresAt": qr.ExpiresAt},
		Client:     actor.Client,
	})
	return qr, nil
}

// issueQRCode replaces the customer's codes with a fresh one. It joins the
// caller's transaction when there is one.
func (s *AuthService) issueQRCode(ctx context.Context, customer *domain.Customer) (*domain.QRCode, error) {
	qr := &domain.QRCode{
		Code:       uuid.NewString(),
		CustomerID: customer.ID,
		BranchID:   customer.BranchID,
		ExpiresAt:  s.now().Add(s.qrTTL),
		Valid:      true,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.qrCodes.InvalidateForCustomer(ctx, customer.ID); err != nil {
			return err
		}
		if err := s.qrCodes.Create(ctx, qr); err != nil {
			return err
		}
		customer.QRCodeID = &qr.ID
		return s.customers.Update(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return qr, nil
}

// ChangePassword replaces an employee's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, principal domain.PrincipalContext, current, next string, client ClientInfo) error {
	if !principal.IsEmployee() {
		return apperrors.NewForbidden("only employees have passwords")
	}
	if len(next) < minPasswordLength {
		return apperrors.NewValidationError("new password is too short", map[string]any{"min_length": minPasswordLength})
	}

	emp, err := s.employees.GetByID(ctx, principal.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return err
	}
	if err := s.hasher.Compare(emp.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized(msgInvalidCredentials)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	oldHash := emp.PasswordHash
	emp.PasswordHash = hash
	if err := s.employees.Update(ctx, emp); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionChangePassword,
		Entity:     domain.EntityEmployee,
		EntityID:   emp.ID,
		EmployeeID: &emp.ID,
		BranchID:   strPtr(emp.BranchID()),
		OldValues:  map[string]any{"password": oldHash},
		NewValues:  map[string]any{"password": hash},
		Client:     client,
	})
	return nil
}

// openSession persists a durable session for principal and signs the
// credential pair bound to it. It joins the caller's transaction and returns
// principal with its new session id.
func (s *AuthService) openSession(ctx context.Context, principal domain.PrincipalContext, ttl time.Duration, client ClientInfo) (*AuthResult, domain.PrincipalContext, error) {
	now := s.now()
	session := &domain.Session{
		Token:        uuid.NewString(),
		PrincipalID:  principal.SubjectID,
		Kind:         principal.Kind,
		ExpiresAt:    now.Add(ttl),
		Active:       true,
		LastActivity: now,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, principal, err
	}

	principal.SessionID = session.Token
	accessTTL := s.accessTTL
	if accessTTL > ttl {
		accessTTL = ttl
	}
	access, accessExp, err := s.tokenMgr.Issue(principal, auth.TokenAccess, accessTTL)
	if err != nil {
		return nil, principal, err
	}
	refresh, refreshExp, err := s.tokenMgr.Issue(principal, auth.TokenRefresh, ttl)
	if err != nil {
		return nil, principal, err
	}
	return &AuthResult{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		Principal:        PrincipalSummary{ID: principal.SubjectID, Kind: principal.Kind},
	}, principal, nil
}

// cacheSession writes the cache entry ValidateBearer depends on. It runs
// inside the transaction that persists the session.
func (s *AuthService) cacheSession(ctx context.Context, principal domain.PrincipalContext, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, principal.SessionID, domain.SessionEntry{
		PrincipalID: principal.SubjectID,
		Kind:        principal.Kind,
		BranchID:    principal.BranchID,
		Role:        principal.Role,
	}, ttl)
}

// sessionOpenFailed handles a rolled back session open. A cache entry written
// before a failed commit is removed so no token outlives its session row.
func (s *AuthService) sessionOpenFailed(ctx context.Context, operation string, bound domain.PrincipalContext, cached bool, err error) error {
	if cached {
		s.cache.Delete(ctx, bound.SessionID)
	}
	s.metrics.RecordPartialFailure(operation)
	s.logger.Error("session open rolled back",
		zap.String("operation", operation),
		zap.String("principal_id", bound.SubjectID),
		zap.Error(err))
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}

// reloadPrincipal loads the current state of a principal and rejects
// disabled or deleted ones.
func (s *AuthService) reloadPrincipal(ctx context.Context, id string, kind domain.PrincipalKind) (domain.PrincipalContext, PrincipalSummary, time.Duration, error) {
	switch kind {
	case domain.PrincipalEmployee:
		emp, err := s.employees.GetByID(ctx, id)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.PrincipalContext{}, PrincipalSummary{}, 0, err
		}
		if emp == nil || !emp.Enabled {
			return domain.PrincipalContext{}, PrincipalSummary{}, 0, apperrors.NewUnauthorized(msgInvalidToken)
		}
		return employeePrincipal(emp), employeeSummary(emp), s.staffTTL, nil
	case domain.PrincipalCustomer:
		c, err := s.customers.GetByID(ctx, id)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.PrincipalContext{}, PrincipalSummary{}, 0, err
		}
		if c == nil || !c.Enabled {
			return domain.PrincipalContext{}, PrincipalSummary{}, 0, apperrors.NewUnauthorized(msgInvalidToken)
		}
		return customerPrincipal(c), customerSummary(c), s.customerTTL, nil
	default:
		return domain.PrincipalContext{}, PrincipalSummary{}, 0, apperrors.NewUnauthorized(msgInvalidToken)
	}
}

func employeePrincipal(e *domain.Employee) domain.PrincipalContext {
	return domain.PrincipalContext{
		SubjectID: e.ID,
		Kind:      domain.PrincipalEmployee,
		Role:      e.Role(),
		BranchID:  e.BranchID(),
	}
}

func customerPrincipal(c *domain.Customer) domain.PrincipalContext {
	return domain.PrincipalContext{
		SubjectID: c.ID,
		Kind:      domain.PrincipalCustomer,
		BranchID:  c.BranchID,
	}
}

func employeeSummary(e *domain.Employee) PrincipalSummary {
	return PrincipalSummary{
		ID:        e.ID,
		Kind:      domain.PrincipalEmployee,
		Email:     e.Email,
		Firstname: e.Firstname,
		Lastname:  e.Lastname,
		Username:  e.Username,
		Role:      e.Role(),
		BranchID:  e.BranchID(),
		Language:  e.Language,
	}
}

func customerSummary(c *domain.Customer) PrincipalSummary {
	return PrincipalSummary{
		ID:        c.ID,
		Kind:      domain.PrincipalCustomer,
		Email:     c.Email,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		BranchID:  c.BranchID,
	}
}
