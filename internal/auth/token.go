package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wahid-dev1/semina/internal/domain"
)

// ErrInvalidToken is returned for every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// TokenType separates access from refresh credentials.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	issuer string
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// Claims describes JWT payload.
type Claims struct {
	SessionID string               `json:"sid"`
	Kind      domain.PrincipalKind `json:"kind"`
	Role      domain.StaffRole     `json:"role,omitempty"`
	BranchID  string               `json:"branch_id,omitempty"`
	Type      TokenType            `json:"typ"`
	jwt.RegisteredClaims
}

// Principal returns the principal context embedded in the claims.
func (c *Claims) Principal() domain.PrincipalContext {
	return domain.PrincipalContext{
		SubjectID: c.Subject,
		Kind:      c.Kind,
		Role:      c.Role,
		BranchID:  c.BranchID,
		SessionID: c.SessionID,
	}
}

// Issue signs a token of the given type for principal, valid for ttl.
func (tm *TokenManager) Issue(principal domain.PrincipalContext, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		SessionID: principal.SessionID,
		Kind:      principal.Kind,
		Role:      principal.Role,
		BranchID:  principal.BranchID,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   principal.SubjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates tokenStr and requires it to be of type typ. Any failure
// yields ErrInvalidToken.
func (tm *TokenManager) Parse(tokenStr string, typ TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ || claims.SessionID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
