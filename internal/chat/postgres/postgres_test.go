// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/chatterhq/chatter/internal/store/storetest"
)

// testDB is the shared database for integration tests.
var testDB *storetest.Database

// TestMain sets up a PostgreSQL testcontainer for integration tests.
func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := storetest.StartPostgres(ctx)
	if err != nil {
		panic("failed to start postgres: " + err.Error())
	}
	testDB = db

	code := m.Run()
	db.Terminate(ctx)
	os.Exit(code)
}
