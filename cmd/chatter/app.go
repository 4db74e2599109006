// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/auth"
	authpg "github.com/chatterhq/chatter/internal/auth/postgres"
	authredis "github.com/chatterhq/chatter/internal/auth/redis"
	"github.com/chatterhq/chatter/internal/chat"
	chatpg "github.com/chatterhq/chatter/internal/chat/postgres"
	"github.com/chatterhq/chatter/internal/config"
	"github.com/chatterhq/chatter/internal/store"
)

// sessionStore is the configured session backend plus its lifecycle hooks.
type sessionStore struct {
	repo  auth.SessionRepository
	ping  func(ctx context.Context) error
	close func() error
}

// openSessionStore builds the session repository selected by
// cfg.Sessions.Backend. The postgres backend shares db.
func openSessionStore(ctx context.Context, cfg *config.Config, db store.Querier) (*sessionStore, error) {
	switch cfg.Sessions.Backend {
	case config.BackendRedis:
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, oops.Code("REDIS_CONFIG_INVALID").With("operation", "parse redis url").Wrap(err)
		}
		opts.ContextTimeoutEnabled = true
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, oops.Code("REDIS_CONNECT_FAILED").With("operation", "ping").Wrap(err)
		}
		repo := authredis.NewSessionRepository(client, cfg.Redis.Prefix,
			authredis.WithQueryTimeout(cfg.Store.QueryTimeout))
		return &sessionStore{
			repo:  repo,
			ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil
	default:
		return &sessionStore{
			repo:  authpg.NewSessionRepository(db, authpg.WithQueryTimeout(cfg.Store.QueryTimeout)),
			ping:  func(context.Context) error { return nil },
			close: func() error { return nil },
		}, nil
	}
}

// app holds the wired services for one process.
type app struct {
	pool     *pgxpool.Pool
	sessions *sessionStore
	logger   *slog.Logger

	Manager  *auth.SessionManager
	Accounts *auth.Service
	Chat     *chat.Service
}

// openApp connects to the configured stores and builds the services.
// Callers must Close the returned app.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	pool, err := store.OpenPool(ctx, cfg.Database.URL, store.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return nil, err
	}

	sessions, err := openSessionStore(ctx, cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &app{pool: pool, sessions: sessions, logger: logger}
	if err := a.build(cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(cfg *config.Config) error {
	timeout := cfg.Store.QueryTimeout
	users := authpg.NewUserRepository(a.pool, authpg.WithQueryTimeout(timeout))

	manager, err := auth.NewSessionManager(a.sessions.repo,
		auth.WithLogger(a.logger),
		auth.WithCreateAttempts(cfg.Sessions.CreateAttempts),
	)
	if err != nil {
		return err
	}
	a.Manager = manager

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	accounts, err := auth.NewAuthServiceWithLogger(users, manager, hasher, a.logger)
	if err != nil {
		return err
	}
	a.Accounts = accounts

	a.Chat, err = chat.NewService(manager, users,
		chatpg.NewGroupRepository(a.pool, chatpg.WithQueryTimeout(timeout)),
		chatpg.NewMessageRepository(a.pool, chatpg.WithQueryTimeout(timeout)),
		chat.WithLogger(a.logger),
	)
	return err
}

// newHasher builds the password hasher from the configured argon2 cost.
func newHasher(cfg *config.Config) (*auth.Argon2idHasher, error) {
	return auth.NewArgon2idHasherWithParams(cfg.Auth.Argon2.Params())
}

// ready reports whether every backing store answers.
func (a *app) ready(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return oops.Code("STORE_UNAVAILABLE").With("store", "postgres").Wrap(err)
	}
	if err := a.sessions.ping(ctx); err != nil {
		return oops.Code("STORE_UNAVAILABLE").With("store", "redis").Wrap(err)
	}
	return nil
}

// Close releases the store connections.
func (a *app) Close() {
	if err := a.sessions.close(); err != nil {
		a.logger.Warn("error closing session store", "operation", "close_session_store", "error", err)
	}
	a.pool.Close()
}
