// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package redis implements auth.SessionRepository on Redis.
//
// Each session is a string key holding "<user id>|<created unix ms>" that
// Redis expires once the session can no longer verify. A sorted set scored
// by creation time indexes every token so expired sessions can be swept.
//
// The key lapses at the first instant the session fails verification. From
// then on Get reports it as not found, so SessionManager.Verify yields
// ReasonUnknown for a TTL-expired session rather than ReasonExpired.
package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/store"
)

// DefaultPrefix namespaces the repository's keys.
const DefaultPrefix = "chatter"

// createSessionScript stores the session only if the token is unused and
// indexes it in the same step.
//
// KEYS[1] session key, KEYS[2] index key
// ARGV[1] value, ARGV[2] expiry unix ms, ARGV[3] created unix ms, ARGV[4] token
const createSessionScript = `
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PXAT", ARGV[2]) then
  redis.call("ZADD", KEYS[2], ARGV[3], ARGV[4])
  return 1
end
return 0
`

var createSessionLua = goredis.NewScript(createSessionScript)

// SessionRepository stores sessions in Redis.
type SessionRepository struct {
	client goredis.UniversalClient
	prefix string
	opts   options
}

// NewSessionRepository creates a SessionRepository. An empty prefix uses DefaultPrefix.
func NewSessionRepository(client goredis.UniversalClient, prefix string, opts ...Option) *SessionRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionRepository{client: client, prefix: prefix, opts: newOptions(opts)}
}

func (r *SessionRepository) key(token string) string {
	return r.prefix + ":session:" + token
}

func (r *SessionRepository) indexKey() string {
	return r.prefix + ":sessions:by_created"
}

// expiresAt is the first instant at which a session created at createdAt
// fails verification.
func expiresAt(createdAt time.Time) time.Time {
	return createdAt.Add((auth.SessionTTLDays + 1) * 24 * time.Hour)
}

// Create implements auth.SessionRepository.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	createdMs := session.CreatedAt.UnixMilli()
	value := session.UserID.String() + "|" + strconv.FormatInt(createdMs, 10)

	created, err := createSessionLua.Run(ctx, r.client,
		[]string{r.key(session.ID), r.indexKey()},
		value,
		expiresAt(session.CreatedAt).UnixMilli(),
		createdMs,
		session.ID,
	).Int()
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "create session").
			With("user_id", session.UserID.String()).
			Wrap(store.Classify(ctx, err))
	}
	if created == 0 {
		return oops.Code("SESSION_EXISTS").Wrap(fault.ErrConflict)
	}
	return nil
}

// Get implements auth.SessionRepository. Sessions whose key Redis has
// expired return fault.ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, token string) (*auth.Session, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, r.key(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(fault.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session").
			Wrap(store.Classify(ctx, err))
	}

	userPart, createdPart, ok := strings.Cut(value, "|")
	if !ok {
		return nil, oops.Code("STORE_CORRUPT_SESSION").Errorf("session value has no separator")
	}
	userID, err := parseUserID(userPart)
	if err != nil {
		return nil, err
	}
	createdMs, err := strconv.ParseInt(createdPart, 10, 64)
	if err != nil {
		return nil, oops.Code("STORE_CORRUPT_SESSION").With("field", "created_at").Wrap(err)
	}
	return &auth.Session{ID: token, UserID: userID, CreatedAt: time.UnixMilli(createdMs).UTC()}, nil
}

// Delete implements auth.SessionRepository.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, r.key(token))
		pipe.ZRem(ctx, r.indexKey(), token)
		return nil
	})
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(store.Classify(ctx, err))
	}
	return nil
}

// DeleteCreatedBefore implements auth.SessionRepository.
func (r *SessionRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()

	tokens, err := r.client.ZRangeByScore(ctx, r.indexKey(), &goredis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(ceilMillis(cutoff), 10),
	}).Result()
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "range expired sessions").
			Wrap(store.Classify(ctx, err))
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]string, len(tokens))
	members := make([]any, len(tokens))
	for i, token := range tokens {
		keys[i] = r.key(token)
		members[i] = token
	}

	var removed *goredis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		removed = pipe.ZRem(ctx, r.indexKey(), members...)
		return nil
	})
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			With("count", len(tokens)).
			Wrap(store.Classify(ctx, err))
	}
	return removed.Val(), nil
}

// ceilMillis rounds t up to a whole millisecond, so that a millisecond
// score s satisfies s < ceilMillis(t) exactly when UnixMilli(s) is before t.
func ceilMillis(t time.Time) int64 {
	ms := t.UnixMilli()
	if time.UnixMilli(ms).Before(t) {
		ms++
	}
	return ms
}

func parseUserID(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("STORE_CORRUPT_SESSION").With("field", "user_id").Wrap(err)
	}
	return id, nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
