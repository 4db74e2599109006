// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package chattest provides test doubles for the chat package.
package chattest

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/chat"
	"github.com/chatterhq/chatter/internal/fault"
)

// MemoryGroups is a GroupRepository backed by a map.
type MemoryGroups struct {
	mu     sync.Mutex
	groups map[ulid.ULID]chat.Group
}

// NewMemoryGroups creates an empty MemoryGroups.
func NewMemoryGroups() *MemoryGroups {
	return &MemoryGroups{groups: make(map[ulid.ULID]chat.Group)}
}

// Create implements chat.GroupRepository.
func (m *MemoryGroups) Create(_ context.Context, g *chat.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[g.ID]; ok {
		return oops.Code("GROUP_EXISTS").Wrap(fault.ErrConflict)
	}
	stored := *g
	stored.Members = slices.Clone(g.Members)
	m.groups[g.ID] = stored
	return nil
}

// Get implements chat.GroupRepository.
func (m *MemoryGroups) Get(_ context.Context, id ulid.ULID) (*chat.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, oops.Code("GROUP_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	return cloneGroup(g), nil
}

// AddMember implements chat.GroupRepository.
func (m *MemoryGroups) AddMember(_ context.Context, groupID, userID ulid.ULID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return oops.Code("GROUP_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	if !slices.Contains(g.Members, userID) {
		g.Members = append(g.Members, userID)
		m.groups[groupID] = g
	}
	return nil
}

// RemoveMember implements chat.GroupRepository.
func (m *MemoryGroups) RemoveMember(_ context.Context, groupID, userID ulid.ULID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil
	}
	g.Members = slices.DeleteFunc(g.Members, func(id ulid.ULID) bool { return id == userID })
	m.groups[groupID] = g
	return nil
}

// ListByMember implements chat.GroupRepository.
func (m *MemoryGroups) ListByMember(_ context.Context, userID ulid.ULID, page chat.Page) ([]*chat.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*chat.Group
	for _, g := range m.groups {
		if slices.Contains(g.Members, userID) {
			out = append(out, cloneGroup(g))
		}
	}
	slices.SortFunc(out, func(a, b *chat.Group) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), a.ID.Compare(b.ID))
	})
	return window(out, page), nil
}

func cloneGroup(g chat.Group) *chat.Group {
	g.Members = slices.Clone(g.Members)
	return &g
}

// MemoryMessages is a MessageRepository backed by a slice.
type MemoryMessages struct {
	mu       sync.Mutex
	messages []chat.Message
}

// NewMemoryMessages creates an empty MemoryMessages.
func NewMemoryMessages() *MemoryMessages {
	return &MemoryMessages{}
}

// Create implements chat.MessageRepository.
func (m *MemoryMessages) Create(_ context.Context, msg *chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.messages {
		if existing.ID == msg.ID {
			return oops.Code("MESSAGE_EXISTS").Wrap(fault.ErrConflict)
		}
	}
	m.messages = append(m.messages, *msg)
	return nil
}

// Get implements chat.MessageRepository.
func (m *MemoryMessages) Get(_ context.Context, id ulid.ULID) (*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return &msg, nil
		}
	}
	return nil, oops.Code("MESSAGE_NOT_FOUND").Wrap(fault.ErrNotFound)
}

// ListByGroup implements chat.MessageRepository.
func (m *MemoryMessages) ListByGroup(_ context.Context, groupID ulid.ULID, page chat.Page) ([]*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*chat.Message
	for _, msg := range m.messages {
		if msg.Group == groupID {
			out = append(out, &msg)
		}
	}
	slices.SortFunc(out, func(a, b *chat.Message) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), b.ID.Compare(a.ID))
	})
	return window(out, page), nil
}

// Len returns the number of stored messages.
func (m *MemoryMessages) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func window[T any](items []T, page chat.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Count < len(items) {
		items = items[:page.Count]
	}
	return items
}

// Verify interfaces are satisfied.
var (
	_ chat.GroupRepository   = (*MemoryGroups)(nil)
	_ chat.MessageRepository = (*MemoryMessages)(nil)
)
