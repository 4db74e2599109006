// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/chat"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/store"
)

const selectMessage = `SELECT id, group_id, author_id, text, created_at FROM messages`

// MessageRepository implements chat.MessageRepository using PostgreSQL.
type MessageRepository struct {
	db   store.Querier
	opts options
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db store.Querier, opts ...Option) *MessageRepository {
	return &MessageRepository{db: db, opts: newOptions(opts)}
}

// Create stores a message. A vanished group or author returns fault.ErrNotFound.
func (r *MessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, group_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		msg.ID.String(),
		msg.Group.String(),
		msg.Author.String(),
		msg.Text,
		msg.CreatedAt,
	)
	if err != nil {
		return oops.Code("MESSAGE_CREATE_FAILED").
			With("group_id", msg.Group.String()).
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// Get retrieves a message by ID.
func (r *MessageRepository) Get(ctx context.Context, id ulid.ULID) (*chat.Message, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	msg, err := scanMessage(r.db.QueryRow(ctx, selectMessage+` WHERE id = $1`, id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MESSAGE_NOT_FOUND").
			With("message_id", id.String()).
			Wrap(fault.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MESSAGE_GET_FAILED").
			With("message_id", id.String()).
			Wrap(store.Classify(ctx, err))
	}
	return msg, nil
}

// ListByGroup returns a page of a group's messages, newest first.
func (r *MessageRepository) ListByGroup(ctx context.Context, groupID ulid.ULID, page chat.Page) ([]*chat.Message, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, selectMessage+`
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`, groupID.String(), page.Offset, page.Count)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("group_id", groupID.String()).
			Wrap(store.Classify(ctx, err))
	}
	defer rows.Close()

	msgs := []*chat.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, oops.Code("MESSAGE_LIST_FAILED").
				With("group_id", groupID.String()).
				Wrap(store.Classify(ctx, err))
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("group_id", groupID.String()).
			Wrap(store.Classify(ctx, err))
	}
	return msgs, nil
}

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	var idStr, groupStr, authorStr string
	if err := row.Scan(&idStr, &groupStr, &authorStr, &m.Text, &m.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = store.ParseID("messages.id", idStr); err != nil {
		return nil, err
	}
	if m.Group, err = store.ParseID("messages.group_id", groupStr); err != nil {
		return nil, err
	}
	if m.Author, err = store.ParseID("messages.author_id", authorStr); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

var _ chat.MessageRepository = (*MessageRepository)(nil)
