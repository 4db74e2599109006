// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/auth/postgres"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/ids"
	"github.com/chatterhq/chatter/pkg/errutil"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestSessionRepository_Create(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	session := &auth.Session{ID: "tok", UserID: ids.New(), CreatedAt: created}

	tests := []struct {
		name    string
		execErr error
		kind    fault.Kind
	}{
		{"success", nil, 0},
		{"duplicate token", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, fault.KindConflict},
		{"unknown user", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, fault.KindNotFound},
		{"connection failure", errors.New("connection refused"), fault.KindStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`INSERT INTO sessions`).
				WithArgs("tok", session.UserID.String(), created)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := postgres.NewSessionRepository(mock).Create(context.Background(), session)
			if tt.execErr == nil {
				require.NoError(t, err)
				return
			}
			errutil.AssertKind(t, err, tt.kind)
			assert.NotContains(t, err.Error(), "tok")
		})
	}
}

func TestSessionRepository_Get(t *testing.T) {
	userID := ids.New()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT user_id, created_at FROM sessions WHERE id = \$1`).
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow(userID.String(), created))

		got, err := postgres.NewSessionRepository(mock).Get(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "tok", got.ID)
		assert.Equal(t, userID, got.UserID)
		assert.True(t, got.CreatedAt.Equal(created))
		assert.Equal(t, time.UTC, got.CreatedAt.Location())
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT user_id, created_at FROM sessions`).
			WithArgs("tok").
			WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewSessionRepository(mock).Get(context.Background(), "tok")
		errutil.AssertKind(t, err, fault.KindNotFound)
		errutil.AssertErrorCode(t, err, "SESSION_NOT_FOUND")
	})

	t.Run("corrupt user id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT user_id, created_at FROM sessions`).
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow("nope", created))

		_, err := postgres.NewSessionRepository(mock).Get(context.Background(), "tok")
		errutil.AssertKind(t, err, fault.KindStore)
		errutil.AssertErrorCode(t, err, "STORE_CORRUPT_ID")
	})

	t.Run("deadline", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT user_id, created_at FROM sessions`).
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow(userID.String(), created)).
			WillDelayFor(time.Second)

		repo := postgres.NewSessionRepository(mock, postgres.WithQueryTimeout(10*time.Millisecond))
		_, err := repo.Get(context.Background(), "tok")
		errutil.AssertKind(t, err, fault.KindStore)
		errutil.AssertErrorCode(t, err, "STORE_TIMEOUT")
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	t.Run("missing row is success", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
			WithArgs("tok").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, postgres.NewSessionRepository(mock).Delete(context.Background(), "tok"))
	})

	t.Run("failure", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
			WithArgs("tok").
			WillReturnError(errors.New("connection reset"))

		err := postgres.NewSessionRepository(mock).Delete(context.Background(), "tok")
		errutil.AssertKind(t, err, fault.KindStore)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestSessionRepository_DeleteCreatedBefore(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM sessions WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := postgres.NewSessionRepository(mock).DeleteCreatedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
