// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/store"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// Tokens are bearer credentials and never appear in error context.
type SessionRepository struct {
	db   store.Querier
	opts options
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db store.Querier, opts ...Option) *SessionRepository {
	return &SessionRepository{db: db, opts: newOptions(opts)}
}

// Create stores a new session. A duplicate token returns fault.ErrConflict
// and an unknown user fault.ErrNotFound.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, session.ID, session.UserID.String(), session.CreatedAt)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// Get retrieves a session by its token.
func (r *SessionRepository) Get(ctx context.Context, token string) (*auth.Session, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	var userIDStr string
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `
		SELECT user_id, created_at FROM sessions WHERE id = $1
	`, token).Scan(&userIDStr, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "select session").
			Wrap(store.Classify(ctx, err))
	}

	userID, err := store.ParseID("sessions.user_id", userIDStr)
	if err != nil {
		return nil, err
	}
	return &auth.Session{ID: token, UserID: userID, CreatedAt: createdAt.UTC()}, nil
}

// Delete removes a session. Deleting a missing session succeeds.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, token); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// DeleteCreatedBefore removes sessions created before cutoff.
func (r *SessionRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			With("cutoff", cutoff).
			Wrap(store.Classify(ctx, err))
	}
	return tag.RowsAffected(), nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
