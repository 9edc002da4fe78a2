package errorutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func TestToDomainError(t *testing.T) {
	t.Run("passes domain errors through", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", apperrors.NewConflict("taken", nil))
		de := apperrors.ToDomainError(wrapped)
		require.Equal(t, apperrors.CodeConflict, de.Code)
		require.Equal(t, http.StatusConflict, de.HTTPStatus)
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		de := apperrors.ToDomainError(fmt.Errorf("get: %w", pgx.ErrNoRows))
		require.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("hides unknown errors behind internal", func(t *testing.T) {
		de := apperrors.ToDomainError(errors.New("connection reset"))
		require.Equal(t, apperrors.CodeInternal, de.Code)
		require.Equal(t, "internal server error", de.Message)
	})

	require.Nil(t, apperrors.ToDomainError(nil))
	require.NoError(t, apperrors.MapError(nil))
}

func TestIsCode(t *testing.T) {
	require.True(t, apperrors.IsCode(apperrors.NewUnauthorized("x"), apperrors.CodeUnauthorized))
	require.False(t, apperrors.IsCode(errors.New("x"), apperrors.CodeUnauthorized))
}
