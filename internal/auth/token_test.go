package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
)

func testPrincipal() domain.PrincipalContext {
	return domain.PrincipalContext{
		SubjectID: "emp-1",
		Kind:      domain.PrincipalEmployee,
		Role:      domain.RoleManager,
		BranchID:  "branch-1",
		SessionID: "sess-1",
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "semina")

	token, exp, err := tm.Issue(testPrincipal(), TokenAccess, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := tm.Parse(token, TokenAccess)
	require.NoError(t, err)
	require.Equal(t, testPrincipal(), claims.Principal())
}

func TestParseRejectsWrongType(t *testing.T) {
	tm := NewTokenManager("secret", "semina")

	refresh, _, err := tm.Issue(testPrincipal(), TokenRefresh, time.Hour)
	require.NoError(t, err)

	_, err = tm.Parse(refresh, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseCollapsesFailures(t *testing.T) {
	tm := NewTokenManager("secret", "semina")
	other := NewTokenManager("other-secret", "semina")
	foreignIssuer := NewTokenManager("secret", "someone-else")

	expired, _, err := tm.Issue(testPrincipal(), TokenAccess, -time.Minute)
	require.NoError(t, err)
	wrongKey, _, err := other.Issue(testPrincipal(), TokenAccess, time.Hour)
	require.NoError(t, err)
	wrongIssuer, _, err := foreignIssuer.Issue(testPrincipal(), TokenAccess, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"malformed":    "not.a.jwt",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Parse(token, TokenAccess)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseRequiresSession(t *testing.T) {
	tm := NewTokenManager("secret", "semina")
	p := testPrincipal()
	p.SessionID = ""

	token, _, err := tm.Issue(p, TokenAccess, time.Hour)
	require.NoError(t, err)

	_, err = tm.Parse(token, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}
