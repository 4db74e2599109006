// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/ids"
)

// Session lifetime configuration.
const (
	// SessionTTLDays is the maximum session age in whole days. A session
	// whose age is exactly SessionTTLDays is still valid.
	SessionTTLDays = 30

	day = 24 * time.Hour
)

// Session is an authenticated identity bound to a bearer token.
// The token itself is the session ID.
type Session struct {
	ID        string
	UserID    ulid.ULID
	CreatedAt time.Time
}

// NewSession creates a validated Session instance.
// CreatedAt is truncated to millisecond resolution.
func NewSession(token string, userID ulid.ULID, createdAt time.Time) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("session token cannot be empty")
	}
	if ids.IsZero(userID) {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if createdAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_CREATED").Errorf("creation time cannot be zero")
	}
	return &Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}, nil
}

// AgeDays returns the number of whole days between CreatedAt and now,
// truncated toward zero.
func (s *Session) AgeDays(now time.Time) int64 {
	return int64(now.Sub(s.CreatedAt) / day)
}

// IsExpiredAt returns true if the session is older than SessionTTLDays at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return s.AgeDays(t) > SessionTTLDays
}

// ExpiryCutoff returns the creation time before which sessions are expired
// at now: a session created strictly before the cutoff is at least
// SessionTTLDays+1 whole days old.
func ExpiryCutoff(now time.Time) time.Time {
	return now.Add(-(SessionTTLDays+1)*day + time.Nanosecond)
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	// Returns fault.ErrConflict if a session with the same ID already exists.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by its token.
	// Returns fault.ErrNotFound if no session has the given token.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteCreatedBefore removes every session created strictly before
	// cutoff and returns the number of deleted records.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
