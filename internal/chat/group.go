// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chat

import (
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/ids"
)

// Input limits, counted in characters.
const (
	MaxGroupNameLength = 100
	MaxMessageLength   = 4000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Group is a named set of members. The owner is always a member.
type Group struct {
	ID        ulid.ULID
	Owner     ulid.ULID
	Name      string
	Members   []ulid.ULID
	CreatedAt time.Time
}

// NewGroup creates a group owned by owner with owner as its only member.
func NewGroup(owner ulid.ULID, name string, now time.Time) (*Group, error) {
	if ids.IsZero(owner) {
		return nil, oops.Code("GROUP_INVALID_OWNER").Wrapf(fault.ErrInvalid, "owner cannot be zero")
	}
	if err := validate.Var(name, "required,max=100"); err != nil {
		return nil, oops.Code("GROUP_INVALID_NAME").
			With("max", MaxGroupNameLength).
			Wrapf(fault.ErrInvalid, "group name must be 1 to %d characters", MaxGroupNameLength)
	}
	return &Group{
		ID:        ids.New(),
		Owner:     owner,
		Name:      name,
		Members:   []ulid.ULID{owner},
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}, nil
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID ulid.ULID) bool {
	return slices.Contains(g.Members, userID)
}

// Message is an immutable post in a group.
type Message struct {
	ID        ulid.ULID
	Group     ulid.ULID
	Author    ulid.ULID
	Text      string
	CreatedAt time.Time
}

// NewMessage creates a message. The ID is drawn from the monotonic source
// so messages created within one millisecond still sort in creation order.
func NewMessage(groupID, author ulid.ULID, text string, now time.Time) (*Message, error) {
	if err := validate.Var(text, "required,max=4000"); err != nil {
		return nil, oops.Code("MESSAGE_INVALID_TEXT").
			With("max", MaxMessageLength).
			Wrapf(fault.ErrInvalid, "message text must be 1 to %d characters", MaxMessageLength)
	}
	now = now.UTC().Truncate(time.Millisecond)
	return &Message{
		ID:        ids.NewAt(now),
		Group:     groupID,
		Author:    author,
		Text:      text,
		CreatedAt: now,
	}, nil
}

// Page selects a window of a listing.
type Page struct {
	Offset int
	Count  int
}

// Validate rejects negative offsets and counts.
func (p Page) Validate() error {
	if p.Offset < 0 || p.Count < 0 {
		return oops.Code("PAGE_INVALID").
			With("offset", p.Offset).
			With("count", p.Count).
			Wrapf(fault.ErrInvalid, "offset and count must be non-negative")
	}
	return nil
}
