// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/pkg/errutil"
)

// Auth attempt results used as metric labels.
const (
	resultSuccess            = "success"
	resultInvalidCredentials = "invalid_credentials"
	resultRejected           = "rejected"
	resultError              = "error"
)

// Service provides account operations: registration, login and logout.
type Service struct {
	users    UserRepository
	sessions *SessionManager
	hasher   PasswordHasher
	logger   *slog.Logger
	clock    func() time.Time
}

// NewAuthService creates a new Service using the default logger.
func NewAuthService(users UserRepository, sessions *SessionManager, hasher PasswordHasher) (*Service, error) {
	return NewAuthServiceWithLogger(users, sessions, hasher, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service that logs store failures to logger.
func NewAuthServiceWithLogger(users UserRepository, sessions *SessionManager, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("user repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session manager is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
		clock:    time.Now,
	}, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterRequest carries the fields needed to open an account.
// Password is wiped once Register returns.
type RegisterRequest struct {
	Username string
	Email    string
	Password []byte
}

// Register creates a user and signs them in.
// Returns the new user and a session token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	defer Wipe(req.Password)

	if err := ValidateUsername(req.Username); err != nil {
		recordAuthAttempt("register", resultRejected)
		return nil, "", err
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		recordAuthAttempt("register", resultRejected)
		return nil, "", err
	}
	if len(req.Password) == 0 {
		recordAuthAttempt("register", resultRejected)
		return nil, "", oops.Code("AUTH_EMPTY_PASSWORD").Wrapf(fault.ErrInvalid, "password cannot be empty")
	}

	var hash string
	err = WithPassword(req.Password, func(password []byte) error {
		var hashErr error
		hash, hashErr = s.hasher.Hash(password)
		return hashErr
	})
	if err != nil {
		recordAuthAttempt("register", resultError)
		return nil, "", s.credentialFailure(ctx, "AUTH_REGISTER_FAILED", "hash password", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		recordAuthAttempt("register", resultRejected)
		return nil, "", oops.Code("AUTH_EMAIL_TAKEN").Wrapf(fault.ErrConflict, "email is already registered")
	} else if !errors.Is(err, fault.ErrNotFound) {
		recordAuthAttempt("register", resultError)
		return nil, "", s.storeFailure(ctx, "get user by email", err)
	}

	user, err := NewUser(req.Username, email, hash, s.clock())
	if err != nil {
		recordAuthAttempt("register", resultRejected)
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, fault.ErrConflict) {
			recordAuthAttempt("register", resultRejected)
			return nil, "", oops.Code("AUTH_ACCOUNT_EXISTS").
				With("username", user.Username).
				Wrap(err)
		}
		recordAuthAttempt("register", resultError)
		return nil, "", s.storeFailure(ctx, "create user", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		recordAuthAttempt("register", resultError)
		return nil, "", err
	}

	recordAuthAttempt("register", resultSuccess)
	return user, token, nil
}

// Login authenticates a user by email and password and creates a session.
// Returns the user and a session token. Password is wiped once Login returns.
// Unknown emails and wrong passwords produce the same error, and both paths
// run a full hash verification so response time does not reveal which.
func (s *Service) Login(ctx context.Context, email string, password []byte) (*User, string, error) {
	var user *User
	var valid bool

	err := WithPassword(password, func(password []byte) error {
		var targetHash string
		var userExists bool

		normalized, emailErr := NormalizeEmail(email)
		if emailErr == nil {
			found, lookupErr := s.users.GetByEmail(ctx, normalized)
			switch {
			case lookupErr == nil:
				user = found
				targetHash = found.PasswordHash
				userExists = true
			case !errors.Is(lookupErr, fault.ErrNotFound):
				return s.storeFailure(ctx, "get user by email", lookupErr)
			}
		}
		if !userExists {
			// Use dummy hash - still perform verification to maintain constant time
			targetHash = dummyPasswordHash
		}

		// Always verify password (constant-time operation for timing attack prevention)
		ok, verifyErr := s.hasher.Verify(password, targetHash)
		if verifyErr != nil {
			if !userExists {
				return nil
			}
			return s.credentialFailure(ctx, "AUTH_LOGIN_FAILED", "verify password", verifyErr,
				"user_id", user.ID.String())
		}
		valid = ok && userExists
		return nil
	})
	if err != nil {
		recordAuthAttempt("login", resultError)
		return nil, "", err
	}
	if !valid {
		recordAuthAttempt("login", resultInvalidCredentials)
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").
			Wrapf(fault.ErrUnauthenticated, "invalid email or password")
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		recordAuthAttempt("login", resultError)
		return nil, "", err
	}

	recordAuthAttempt("login", resultSuccess)
	return user, token, nil
}

// Logout revokes the session for token. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	return s.sessions.Authenticate(ctx, token)
}

// credentialFailure logs a hashing or stored-hash problem and returns an
// opaque error carrying code. The cause never reaches the caller.
func (s *Service) credentialFailure(ctx context.Context, code, operation string, err error, attrs ...any) error {
	attrs = append([]any{"operation", operation}, attrs...)
	errutil.LogErrorContext(ctx, s.logger, "credential processing failure", err, attrs...)
	return oops.Code(code).
		With("operation", operation).
		Errorf("credential processing failure")
}

func (s *Service) storeFailure(ctx context.Context, operation string, err error) error {
	errutil.LogErrorContext(ctx, s.logger, "user store failure", err, "operation", operation)
	return oops.Code("AUTH_STORE_ERROR").
		With("operation", operation).
		Errorf("user store failure")
}
