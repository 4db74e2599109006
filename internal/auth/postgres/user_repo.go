// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/store"
)

const selectUser = `SELECT id, username, email, password_hash, created_at FROM users`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db   store.Querier
	opts options
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.Querier, opts ...Option) *UserRepository {
	return &UserRepository{db: db, opts: newOptions(opts)}
}

// Create stores a new user. A taken email or username returns fault.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	return r.getOne(ctx, "get user by id", selectUser+` WHERE id = $1`, id.String())
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, "get user by email", selectUser+` WHERE lower(email) = lower($1)`, email)
}

// GetByUsername retrieves a user by username, ignoring case.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, "get user by username", selectUser+` WHERE lower(username) = lower($1)`, username)
}

func (r *UserRepository) getOne(ctx context.Context, operation, query string, arg string) (*auth.User, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	var u auth.User
	var idStr string
	err := r.db.QueryRow(ctx, query, arg).Scan(&idStr, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("operation", operation).Wrap(fault.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("operation", operation).Wrap(store.Classify(ctx, err))
	}

	u.ID, err = store.ParseID("users.id", idStr)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
