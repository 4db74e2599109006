// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chattest

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/chatterhq/chatter/internal/chat"
)

// MockGroupRepository is a testify mock of chat.GroupRepository.
type MockGroupRepository struct {
	mock.Mock
}

// NewMockGroupRepository creates a mock that asserts its expectations at test cleanup.
func NewMockGroupRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockGroupRepository {
	m := &MockGroupRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements chat.GroupRepository.
func (m *MockGroupRepository) Create(ctx context.Context, g *chat.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

// Get implements chat.GroupRepository.
func (m *MockGroupRepository) Get(ctx context.Context, id ulid.ULID) (*chat.Group, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*chat.Group)
	return g, args.Error(1)
}

// AddMember implements chat.GroupRepository.
func (m *MockGroupRepository) AddMember(ctx context.Context, groupID, userID ulid.ULID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

// RemoveMember implements chat.GroupRepository.
func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID, userID ulid.ULID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

// ListByMember implements chat.GroupRepository.
func (m *MockGroupRepository) ListByMember(ctx context.Context, userID ulid.ULID, page chat.Page) ([]*chat.Group, error) {
	args := m.Called(ctx, userID, page)
	gs, _ := args.Get(0).([]*chat.Group)
	return gs, args.Error(1)
}

// MockMessageRepository is a testify mock of chat.MessageRepository.
type MockMessageRepository struct {
	mock.Mock
}

// NewMockMessageRepository creates a mock that asserts its expectations at test cleanup.
func NewMockMessageRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockMessageRepository {
	m := &MockMessageRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements chat.MessageRepository.
func (m *MockMessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Get implements chat.MessageRepository.
func (m *MockMessageRepository) Get(ctx context.Context, id ulid.ULID) (*chat.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*chat.Message)
	return msg, args.Error(1)
}

// ListByGroup implements chat.MessageRepository.
func (m *MockMessageRepository) ListByGroup(ctx context.Context, groupID ulid.ULID, page chat.Page) ([]*chat.Message, error) {
	args := m.Called(ctx, groupID, page)
	msgs, _ := args.Get(0).([]*chat.Message)
	return msgs, args.Error(1)
}

// Verify interfaces are satisfied.
var (
	_ chat.GroupRepository   = (*MockGroupRepository)(nil)
	_ chat.MessageRepository = (*MockMessageRepository)(nil)
)
