// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package authtest provides test doubles for the auth package.
package authtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
)

// MemorySessions is a SessionRepository backed by a map.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

// NewMemorySessions creates an empty MemorySessions.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]auth.Session)}
}

// Create implements auth.SessionRepository.
func (m *MemorySessions) Create(_ context.Context, s *auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return oops.Code("SESSION_EXISTS").Wrap(fault.ErrConflict)
	}
	m.sessions[s.ID] = *s
	return nil
}

// Get implements auth.SessionRepository.
func (m *MemorySessions) Get(_ context.Context, token string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	return &s, nil
}

// Delete implements auth.SessionRepository.
func (m *MemorySessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// DeleteCreatedBefore implements auth.SessionRepository.
func (m *MemorySessions) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Put stores s directly, bypassing the duplicate check. Used to plant
// sessions with a chosen creation time.
func (m *MemorySessions) Put(s auth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Has reports whether a session with token is stored.
func (m *MemorySessions) Has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

// Len returns the number of stored sessions.
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryUsers is a UserRepository backed by a map.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[ulid.ULID]auth.User
}

// NewMemoryUsers creates an empty MemoryUsers.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[ulid.ULID]auth.User)}
}

// Create implements auth.UserRepository.
func (m *MemoryUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			return oops.Code("USER_EXISTS").Wrap(fault.ErrConflict)
		}
	}
	m.users[u.ID] = *u
	return nil
}

// GetByID implements auth.UserRepository.
func (m *MemoryUsers) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	return &u, nil
}

// GetByEmail implements auth.UserRepository.
func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	return m.find(func(u auth.User) bool { return strings.EqualFold(u.Email, email) })
}

// GetByUsername implements auth.UserRepository.
func (m *MemoryUsers) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	return m.find(func(u auth.User) bool { return strings.EqualFold(u.Username, username) })
}

// Len returns the number of stored users.
func (m *MemoryUsers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryUsers) find(match func(auth.User) bool) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").Wrap(fault.ErrNotFound)
}

// SequenceIssuer hands out Tokens in order, then falls back to random tokens.
type SequenceIssuer struct {
	mu     sync.Mutex
	Tokens []string
}

// Generate implements auth.TokenIssuer.
func (s *SequenceIssuer) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Tokens) == 0 {
		return auth.GenerateSessionToken()
	}
	t := s.Tokens[0]
	s.Tokens = s.Tokens[1:]
	return t, nil
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock reading t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set changes the current reading.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Verify interfaces are satisfied.
var (
	_ auth.SessionRepository = (*MemorySessions)(nil)
	_ auth.UserRepository    = (*MemoryUsers)(nil)
	_ auth.TokenIssuer       = (*SequenceIssuer)(nil)
)
