// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package authtest

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/chatterhq/chatter/internal/auth"
)

// MockSessionRepository is a testify mock of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock that asserts its expectations at test cleanup.
func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements auth.SessionRepository.
func (m *MockSessionRepository) Create(ctx context.Context, s *auth.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// Get implements auth.SessionRepository.
func (m *MockSessionRepository) Get(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

// Delete implements auth.SessionRepository.
func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// DeleteCreatedBefore implements auth.SessionRepository.
func (m *MockSessionRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a testify mock of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock that asserts its expectations at test cleanup.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserRepository {
	m := &MockUserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements auth.UserRepository.
func (m *MockUserRepository) Create(ctx context.Context, u *auth.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// GetByID implements auth.UserRepository.
func (m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

// GetByEmail implements auth.UserRepository.
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

// GetByUsername implements auth.UserRepository.
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

// MockPasswordHasher is a testify mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations at test cleanup.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password []byte) (string, error) {
	args := m.Called(string(password))
	return args.String(0), args.Error(1)
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(password []byte, encoded string) (bool, error) {
	args := m.Called(string(password), encoded)
	return args.Bool(0), args.Error(1)
}

// Verify interfaces are satisfied.
var (
	_ auth.SessionRepository = (*MockSessionRepository)(nil)
	_ auth.UserRepository    = (*MockUserRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
)
