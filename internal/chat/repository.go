// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chat

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// GroupRepository manages group and membership persistence.
type GroupRepository interface {
	// Create stores a new group together with its initial members.
	Create(ctx context.Context, group *Group) error

	// Get retrieves a group with its full member list.
	// Returns fault.ErrNotFound if the group does not exist.
	Get(ctx context.Context, id ulid.ULID) (*Group, error)

	// AddMember adds userID to the group. Adding an existing member is not
	// an error. Returns fault.ErrNotFound if the group or user vanished.
	AddMember(ctx context.Context, groupID, userID ulid.ULID) error

	// RemoveMember removes userID from the group. Removing a non-member is
	// not an error.
	RemoveMember(ctx context.Context, groupID, userID ulid.ULID) error

	// ListByMember returns the groups userID belongs to, oldest first.
	ListByMember(ctx context.Context, userID ulid.ULID, page Page) ([]*Group, error)
}

// MessageRepository manages message persistence. Messages are never updated.
type MessageRepository interface {
	// Create stores a new message.
	// Returns fault.ErrNotFound if the group or author vanished.
	Create(ctx context.Context, msg *Message) error

	// Get retrieves a message by ID.
	// Returns fault.ErrNotFound if no message has the given ID.
	Get(ctx context.Context, id ulid.ULID) (*Message, error)

	// ListByGroup returns a group's messages newest first. Messages created
	// in the same millisecond are ordered by descending ID.
	ListByGroup(ctx context.Context, groupID ulid.ULID, page Page) ([]*Message, error)
}
