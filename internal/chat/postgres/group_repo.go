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

const selectGroup = `
	SELECT g.id, g.owner_id, g.name, g.created_at,
	       ARRAY(SELECT m.user_id FROM group_members m
	             WHERE m.group_id = g.id
	             ORDER BY m.joined_at, m.user_id) AS members
	FROM chat_groups g`

// GroupRepository implements chat.GroupRepository using PostgreSQL.
type GroupRepository struct {
	db   store.DB
	opts options
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db store.DB, opts ...Option) *GroupRepository {
	return &GroupRepository{db: db, opts: newOptions(opts)}
}

// Create inserts the group and its initial members in one transaction.
func (r *GroupRepository) Create(ctx context.Context, group *chat.Group) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("GROUP_CREATE_FAILED").
			With("operation", "begin transaction").
			Wrap(store.Classify(ctx, err))
	}
	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_groups (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		group.ID.String(),
		group.Owner.String(),
		group.Name,
		group.CreatedAt,
	)
	if err != nil {
		return oops.Code("GROUP_CREATE_FAILED").
			With("operation", "insert group").
			With("group_id", group.ID.String()).
			Wrap(store.Classify(ctx, err))
	}

	for _, member := range group.Members {
		_, err = tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, group.ID.String(), member.String(), group.CreatedAt)
		if err != nil {
			return oops.Code("GROUP_CREATE_FAILED").
				With("operation", "insert member").
				With("group_id", group.ID.String()).
				With("user_id", member.String()).
				Wrap(store.Classify(ctx, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("GROUP_CREATE_FAILED").
			With("operation", "commit transaction").
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// Get retrieves a group with its members.
func (r *GroupRepository) Get(ctx context.Context, id ulid.ULID) (*chat.Group, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	g, err := scanGroup(r.db.QueryRow(ctx, selectGroup+` WHERE g.id = $1`, id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("GROUP_NOT_FOUND").
			With("group_id", id.String()).
			Wrap(fault.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("GROUP_GET_FAILED").
			With("group_id", id.String()).
			Wrap(store.Classify(ctx, err))
	}
	return g, nil
}

// AddMember inserts a membership row. An existing membership is left alone.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID ulid.ULID) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, groupID.String(), userID.String())
	if err != nil {
		return oops.Code("GROUP_ADD_MEMBER_FAILED").
			With("group_id", groupID.String()).
			With("user_id", userID.String()).
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// RemoveMember deletes a membership row. Zero rows affected is success.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID ulid.ULID) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID.String(), userID.String())
	if err != nil {
		return oops.Code("GROUP_REMOVE_MEMBER_FAILED").
			With("group_id", groupID.String()).
			With("user_id", userID.String()).
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// ListByMember returns the groups userID belongs to, oldest first.
func (r *GroupRepository) ListByMember(ctx context.Context, userID ulid.ULID, page chat.Page) ([]*chat.Group, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, selectGroup+`
		WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
		ORDER BY g.created_at, g.id
		OFFSET $2 LIMIT $3
	`, userID.String(), page.Offset, page.Count)
	if err != nil {
		return nil, oops.Code("GROUP_LIST_FAILED").
			With("user_id", userID.String()).
			Wrap(store.Classify(ctx, err))
	}
	defer rows.Close()

	groups := []*chat.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, oops.Code("GROUP_LIST_FAILED").
				With("user_id", userID.String()).
				Wrap(store.Classify(ctx, err))
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("GROUP_LIST_FAILED").
			With("user_id", userID.String()).
			Wrap(store.Classify(ctx, err))
	}
	return groups, nil
}

func scanGroup(row pgx.Row) (*chat.Group, error) {
	var g chat.Group
	var idStr, ownerStr string
	var memberStrs []string
	if err := row.Scan(&idStr, &ownerStr, &g.Name, &g.CreatedAt, &memberStrs); err != nil {
		return nil, err
	}

	var err error
	if g.ID, err = store.ParseID("chat_groups.id", idStr); err != nil {
		return nil, err
	}
	if g.Owner, err = store.ParseID("chat_groups.owner_id", ownerStr); err != nil {
		return nil, err
	}
	g.Members = make([]ulid.ULID, 0, len(memberStrs))
	for _, s := range memberStrs {
		id, err := store.ParseID("group_members.user_id", s)
		if err != nil {
			return nil, err
		}
		g.Members = append(g.Members, id)
	}
	g.CreatedAt = g.CreatedAt.UTC()
	return &g, nil
}

var _ chat.GroupRepository = (*GroupRepository)(nil)
