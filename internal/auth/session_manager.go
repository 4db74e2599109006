// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/ids"
	"github.com/chatterhq/chatter/pkg/errutil"
)

// DefaultCreateAttempts is how many tokens Create tries before giving up
// when the store reports a token collision.
const DefaultCreateAttempts = 3

// Status is the result of a session verification.
type Status int

// Verification statuses.
const (
	StatusInvalid Status = iota
	StatusValid
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusValid {
		return "valid"
	}
	return "invalid"
}

// Reason says why a token was rejected.
type Reason string

// Rejection reasons. ReasonNone accompanies a valid verification.
const (
	ReasonNone      Reason = ""
	ReasonAbsent    Reason = "absent"
	ReasonMalformed Reason = "malformed"
	ReasonUnknown   Reason = "unknown"
	ReasonExpired   Reason = "expired"
)

// Verification is the outcome of SessionManager.Verify.
// Session is set only when Status is StatusValid.
type Verification struct {
	Status  Status
	Reason  Reason
	Session *Session
}

// Valid reports whether the verification produced a usable session.
func (v Verification) Valid() bool {
	return v.Status == StatusValid && v.Session != nil
}

func invalid(reason Reason) Verification {
	recordVerification(string(reason))
	return Verification{Status: StatusInvalid, Reason: reason}
}

// SessionManager creates, verifies and expires sessions.
// It holds no per-request state and is safe for concurrent use.
type SessionManager struct {
	sessions       SessionRepository
	issuer         TokenIssuer
	logger         *slog.Logger
	clock          func() time.Time
	createAttempts uint64
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithClock overrides the time source. Useful for expiry tests.
func WithClock(clock func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		m.clock = clock
	}
}

// WithLogger sets the logger used for best-effort failures and store errors.
func WithLogger(logger *slog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

// WithTokenIssuer overrides the token source.
func WithTokenIssuer(issuer TokenIssuer) SessionManagerOption {
	return func(m *SessionManager) {
		m.issuer = issuer
	}
}

// WithCreateAttempts sets how many tokens Create tries on collision.
// Values below 1 are treated as 1.
func WithCreateAttempts(n int) SessionManagerOption {
	return func(m *SessionManager) {
		if n < 1 {
			n = 1
		}
		m.createAttempts = uint64(n)
	}
}

// NewSessionManager creates a SessionManager backed by sessions.
func NewSessionManager(sessions SessionRepository, opts ...SessionManagerOption) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("sessions repository is required")
	}

	m := &SessionManager{
		sessions:       sessions,
		issuer:         RandomTokenIssuer{},
		logger:         slog.Default(),
		clock:          time.Now,
		createAttempts: DefaultCreateAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.issuer == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("token issuer is required")
	}
	if m.logger == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("logger is required")
	}
	if m.clock == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("clock is required")
	}
	return m, nil
}

// Create issues a token for userID and persists a new session keyed by it.
// A token collision reported by the store is retried with a fresh token.
func (m *SessionManager) Create(ctx context.Context, userID ulid.ULID) (string, error) {
	if ids.IsZero(userID) {
		return "", oops.Code("SESSION_INVALID_USER").Wrapf(fault.ErrInvalid, "user ID cannot be zero")
	}

	var token string
	backoff := retry.WithMaxRetries(m.createAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := m.issuer.Generate()
		if err != nil {
			return err
		}

		session, err := NewSession(candidate, userID, m.clock())
		if err != nil {
			return err
		}

		if err := m.sessions.Create(ctx, session); err != nil {
			if errors.Is(err, fault.ErrConflict) {
				SessionTokenCollisions.Inc()
				return retry.RetryableError(err)
			}
			return err
		}

		token = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return "", oops.Code("SESSION_CREATE_FAILED").
				With("user_id", userID.String()).
				Wrap(err)
		}
		return "", m.storeFailure(ctx, "create session", err)
	}

	SessionsCreated.Inc()
	return token, nil
}

// Verify checks a presented token.
//
// An absent, malformed, unknown or expired token yields an invalid
// Verification and a nil error. Expired sessions are deleted best-effort.
// A non-nil error means the store failed; its cause is logged, not returned.
func (m *SessionManager) Verify(ctx context.Context, token string) (Verification, error) {
	if token == "" {
		return invalid(ReasonAbsent), nil
	}
	if _, err := DecodeSessionToken(token); err != nil {
		return invalid(ReasonMalformed), nil
	}

	session, err := m.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return invalid(ReasonUnknown), nil
		}
		recordVerification(outcomeStoreError)
		return Verification{}, m.storeFailure(ctx, "get session", err)
	}

	if session.IsExpiredAt(m.clock()) {
		if err := m.sessions.Delete(ctx, token); err != nil {
			m.logger.WarnContext(ctx, "best-effort expired session delete failed",
				"operation", "delete_expired_session",
				"user_id", session.UserID.String(),
				"error", err.Error(),
			)
		}
		return invalid(ReasonExpired), nil
	}

	recordVerification(outcomeValid)
	return Verification{Status: StatusValid, Session: session}, nil
}

// Authenticate verifies token and returns the session, mapping every
// invalid outcome to fault.ErrUnauthenticated.
func (m *SessionManager) Authenticate(ctx context.Context, token string) (*Session, error) {
	v, err := m.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !v.Valid() {
		return nil, oops.Code("SESSION_INVALID").
			With("reason", string(v.Reason)).
			Wrap(fault.ErrUnauthenticated)
	}
	return v.Session, nil
}

// Revoke deletes the session for token. Revoking an unknown or empty
// token succeeds.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, token); err != nil {
		return m.storeFailure(ctx, "delete session", err)
	}
	return nil
}

// SweepExpired deletes every session older than the TTL and returns the
// number removed.
func (m *SessionManager) SweepExpired(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteCreatedBefore(ctx, ExpiryCutoff(m.clock()))
	if err != nil {
		return 0, m.storeFailure(ctx, "sweep expired sessions", err)
	}
	return n, nil
}

// storeFailure logs err for operators and returns an opaque error that
// classifies as a store failure.
func (m *SessionManager) storeFailure(ctx context.Context, operation string, err error) error {
	errutil.LogErrorContext(ctx, m.logger, "session store failure", err, "operation", operation)
	return oops.Code("SESSION_STORE_ERROR").
		With("operation", operation).
		Errorf("session store failure")
}
