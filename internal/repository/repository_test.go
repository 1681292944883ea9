package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped cancel", fmt.Errorf("query: %w", context.Canceled), true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrStoreUnavailable))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, mapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

func TestIncrementQueriesCoverEveryCategory(t *testing.T) {
	for _, c := range domain.Categories {
		q, ok := incrementEarnings[c]
		if assert.True(t, ok, c) {
			col := categoryColumns[c]
			assert.Contains(t, q, fmt.Sprintf("%s = earnings_accounts.%s + EXCLUDED.%s", col, col, col))
			assert.Contains(t, q, "all_time_total = earnings_accounts.all_time_total + EXCLUDED.all_time_total")
			assert.True(t, strings.HasPrefix(q, "INSERT INTO earnings_accounts"))
		}
	}
}

func TestIncrementEarningsRejectsUnknownCategory(t *testing.T) {
	q := New(nil)
	_, err := q.IncrementEarnings(context.Background(), uuid.Nil, domain.Category("lottery"), 10)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}
