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
	"github.com/chatterhq/chatter/pkg/errutil"
)

var userColumns = []string{"id", "username", "email", "password_hash", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	user, err := auth.NewUser("alice", "alice@example.com", "$argon2id$hash", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), "alice", "alice@example.com", "$argon2id$hash", user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, postgres.NewUserRepository(mock).Create(context.Background(), user))
	})

	t.Run("taken email", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), "alice", "alice@example.com", "$argon2id$hash", user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		err := postgres.NewUserRepository(mock).Create(context.Background(), user)
		errutil.AssertKind(t, err, fault.KindConflict)
	})
}

func TestUserRepository_Lookups(t *testing.T) {
	user, err := auth.NewUser("alice", "alice@example.com", "hash", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		arg   string
		call  func(*postgres.UserRepository) (*auth.User, error)
	}{
		{
			name:  "by id",
			query: `FROM users WHERE id = \$1`,
			arg:   user.ID.String(),
			call: func(r *postgres.UserRepository) (*auth.User, error) {
				return r.GetByID(context.Background(), user.ID)
			},
		},
		{
			name:  "by email",
			query: `FROM users WHERE lower\(email\) = lower\(\$1\)`,
			arg:   "ALICE@example.com",
			call: func(r *postgres.UserRepository) (*auth.User, error) {
				return r.GetByEmail(context.Background(), "ALICE@example.com")
			},
		},
		{
			name:  "by username",
			query: `FROM users WHERE lower\(username\) = lower\(\$1\)`,
			arg:   "Alice",
			call: func(r *postgres.UserRepository) (*auth.User, error) {
				return r.GetByUsername(context.Background(), "Alice")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name+" found", func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(tt.query).
				WithArgs(tt.arg).
				WillReturnRows(pgxmock.NewRows(userColumns).
					AddRow(user.ID.String(), user.Username, user.Email, user.PasswordHash, user.CreatedAt))

			got, err := tt.call(postgres.NewUserRepository(mock))
			require.NoError(t, err)
			assert.Equal(t, user, got)
		})

		t.Run(tt.name+" missing", func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(tt.query).WithArgs(tt.arg).WillReturnError(pgx.ErrNoRows)

			_, err := tt.call(postgres.NewUserRepository(mock))
			errutil.AssertKind(t, err, fault.KindNotFound)
		})

		t.Run(tt.name+" failure", func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(tt.query).WithArgs(tt.arg).WillReturnError(errors.New("connection refused"))

			_, err := tt.call(postgres.NewUserRepository(mock))
			errutil.AssertKind(t, err, fault.KindStore)
		})
	}
}
