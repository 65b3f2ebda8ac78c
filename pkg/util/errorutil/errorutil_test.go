package errorutil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewNoEligibleStaff(map[string]any{"complaint_id": "c1"})
	mapped := ToDomainError(original)
	require.NotNil(t, mapped)
	assert.Equal(t, "NO_ELIGIBLE_STAFF", mapped.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, mapped.HTTPStatus)
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, mapped)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
}

func TestToDomainErrorTransient(t *testing.T) {
	cases := []error{
		context.DeadlineExceeded,
		&pgconn.PgError{Code: "08006"},
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40P01"},
	}
	for _, err := range cases {
		mapped := ToDomainError(err)
		require.NotNil(t, mapped)
		assert.Equal(t, "TRANSIENT_STORE", mapped.Code, "for %v", err)
		assert.Equal(t, http.StatusServiceUnavailable, mapped.HTTPStatus)
	}
}

func TestToDomainErrorUnknownIsInternal(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	require.NotNil(t, mapped)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
}

func TestIsCode(t *testing.T) {
	err := NewConflict("already assigned", nil)
	assert.True(t, IsCode(err, "CONFLICT"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("plain"), "CONFLICT"))
}
