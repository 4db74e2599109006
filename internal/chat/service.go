// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/pkg/errutil"
)

// Authenticator resolves a session token to a live session.
// auth.SessionManager and auth.Service satisfy it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// UserDirectory looks up users. auth.UserRepository satisfies it.
type UserDirectory interface {
	GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error)
	GetByUsername(ctx context.Context, username string) (*auth.User, error)
}

// Service implements the group and message operations.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	sessions Authenticator
	users    UserDirectory
	groups   GroupRepository
	messages MessageRepository
	logger   *slog.Logger
	clock    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a chat Service.
func NewService(sessions Authenticator, users UserDirectory, groups GroupRepository, messages MessageRepository, opts ...ServiceOption) (*Service, error) {
	switch {
	case sessions == nil:
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("authenticator is required")
	case users == nil:
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("user directory is required")
	case groups == nil:
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("group repository is required")
	case messages == nil:
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("message repository is required")
	}

	s := &Service{
		sessions: sessions,
		users:    users,
		groups:   groups,
		messages: messages,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("logger is required")
	}
	if s.clock == nil {
		return nil, oops.Code("CHAT_SERVICE_INVALID").Errorf("clock is required")
	}
	return s, nil
}

// CreateGroup creates a group owned by the caller.
func (s *Service) CreateGroup(ctx context.Context, token, name string) (*Group, error) {
	session, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	group, err := NewGroup(session.UserID, name, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, s.fail(ctx, "create group", err)
	}

	GroupsCreated.Inc()
	return group, nil
}

// ListGroups returns a page of the groups the caller belongs to.
func (s *Service) ListGroups(ctx context.Context, token string, page Page) ([]*Group, error) {
	session, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	groups, err := s.groups.ListByMember(ctx, session.UserID, page)
	if err != nil {
		return nil, s.fail(ctx, "list groups", err)
	}
	return groups, nil
}

// ChangeMember adds userID to, or removes it from, a group the caller owns.
// Adding a member twice and removing a non-member both succeed.
func (s *Service) ChangeMember(ctx context.Context, token string, groupID, userID ulid.ULID, remove bool) error {
	group, err := s.managedGroup(ctx, token, groupID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return oops.Code("CHAT_USER_NOT_FOUND").
				With("user_id", userID.String()).
				Wrapf(fault.ErrNotFound, "user does not exist")
		}
		return s.fail(ctx, "get user", err)
	}
	return s.applyMember(ctx, group, userID, remove)
}

// ChangeMemberByUsername is ChangeMember with the target named by username,
// matched without regard to case.
func (s *Service) ChangeMemberByUsername(ctx context.Context, token string, groupID ulid.ULID, username string, remove bool) error {
	group, err := s.managedGroup(ctx, token, groupID)
	if err != nil {
		return err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return oops.Code("CHAT_USER_NOT_FOUND").
				With("username", username).
				Wrapf(fault.ErrNotFound, "user does not exist")
		}
		return s.fail(ctx, "get user by username", err)
	}
	return s.applyMember(ctx, group, user.ID, remove)
}

// managedGroup authenticates token and loads a group the caller may manage.
func (s *Service) managedGroup(ctx context.Context, token string, groupID ulid.ULID) (*Group, error) {
	session, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !CanManageMembers(session, group) {
		return nil, s.deny("change_member", group, "only the group owner can change members")
	}
	return group, nil
}

func (s *Service) applyMember(ctx context.Context, group *Group, userID ulid.ULID, remove bool) error {
	if remove {
		if userID == group.Owner {
			return oops.Code("CHAT_REMOVE_OWNER").
				With("group_id", group.ID.String()).
				Wrapf(fault.ErrInvalid, "the owner cannot be removed from a group")
		}
		if err := s.groups.RemoveMember(ctx, group.ID, userID); err != nil {
			return s.fail(ctx, "remove member", err)
		}
		return nil
	}

	if err := s.groups.AddMember(ctx, group.ID, userID); err != nil {
		return s.fail(ctx, "add member", err)
	}
	return nil
}

// ListMessages returns a page of a group's messages, newest first.
// Only members may read.
func (s *Service) ListMessages(ctx context.Context, token string, groupID ulid.ULID, page Page) ([]*Message, error) {
	session, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !CanViewGroup(session, group) {
		return nil, s.deny("list_messages", group, "you are not in this group")
	}

	msgs, err := s.messages.ListByGroup(ctx, groupID, page)
	if err != nil {
		return nil, s.fail(ctx, "list messages", err)
	}
	return msgs, nil
}

// SendMessage posts text to a group. Only members may post.
func (s *Service) SendMessage(ctx context.Context, token string, groupID ulid.ULID, text string) (*Message, error) {
	session, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !CanPostMessage(session, group) {
		return nil, s.deny("send_message", group, "you are not in this group")
	}

	msg, err := NewMessage(groupID, session.UserID, text, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, s.fail(ctx, "create message", err)
	}

	MessagesSent.Inc()
	return msg, nil
}

func (s *Service) loadGroup(ctx context.Context, id ulid.ULID) (*Group, error) {
	group, err := s.groups.Get(ctx, id)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return nil, oops.Code("CHAT_GROUP_NOT_FOUND").
				With("group_id", id.String()).
				Wrapf(fault.ErrNotFound, "group does not exist")
		}
		return nil, s.fail(ctx, "get group", err)
	}
	return group, nil
}

func (s *Service) deny(operation string, group *Group, msg string) error {
	AuthorizationDenials.WithLabelValues(operation).Inc()
	return oops.Code("CHAT_FORBIDDEN").
		With("operation", operation).
		With("group_id", group.ID.String()).
		Wrapf(fault.ErrUnauthorized, "%s", msg)
}

// fail passes classified repository errors through and turns anything else
// into an opaque store failure after logging the cause.
func (s *Service) fail(ctx context.Context, operation string, err error) error {
	if fault.KindOf(err) != fault.KindStore {
		return err
	}
	errutil.LogErrorContext(ctx, s.logger, "chat store failure", err, "operation", operation)
	return oops.Code("CHAT_STORE_ERROR").
		With("operation", operation).
		Errorf("chat store failure")
}
