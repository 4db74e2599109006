// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package storetest starts throwaway PostgreSQL databases for integration tests.
package storetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chatterhq/chatter/internal/store"
)

// Database is a migrated PostgreSQL instance running in a container.
type Database struct {
	DSN       string
	Pool      *pgxpool.Pool
	container *postgres.PostgresContainer
}

// StartPostgres runs a PostgreSQL container, applies every migration and
// opens a pool against it.
func StartPostgres(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("chatter_test"),
		postgres.WithUsername("chatter"),
		postgres.WithPassword("chatter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.Code("TEST_DB_START_FAILED").Wrap(err)
	}
	db := &Database{container: container}

	db.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		db.Terminate(ctx)
		return nil, oops.Code("TEST_DB_START_FAILED").With("operation", "connection string").Wrap(err)
	}

	migrator, err := store.NewMigrator(db.DSN)
	if err != nil {
		db.Terminate(ctx)
		return nil, err
	}
	upErr := migrator.Up()
	_ = migrator.Close() //nolint:errcheck // migration result is what matters
	if upErr != nil {
		db.Terminate(ctx)
		return nil, upErr
	}

	db.Pool, err = store.OpenPool(ctx, db.DSN, store.PoolOptions{})
	if err != nil {
		db.Terminate(ctx)
		return nil, err
	}
	return db, nil
}

// Truncate empties every table, leaving the schema in place.
func (d *Database) Truncate(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, `TRUNCATE messages, group_members, chat_groups, sessions, users`)
	return err
}

// Terminate closes the pool and removes the container.
func (d *Database) Terminate(ctx context.Context) {
	if d.Pool != nil {
		d.Pool.Close()
	}
	_ = d.container.Terminate(ctx) //nolint:errcheck // best effort teardown
}
