// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/fault"
	"github.com/chatterhq/chatter/internal/store"
)

var _ = Describe("PostgreSQL error classification", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		Expect(db.Truncate(ctx)).To(Succeed())
	})

	insertUser := func(id ulid.ULID, username, email string) error {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
			id.String(), username, email)
		return store.Classify(ctx, err)
	}

	codeOf := func(err error) string {
		oopsErr, ok := oops.AsOops(err)
		Expect(ok).To(BeTrue(), "expected an oops error, got %v", err)
		code, _ := oopsErr.Code().(string)
		return code
	}

	It("maps a case-insensitive email collision to Conflict", func() {
		Expect(insertUser(ulid.Make(), "alice", "a@x.com")).To(Succeed())

		err := insertUser(ulid.Make(), "alice2", "A@X.COM")
		Expect(err).To(HaveOccurred())
		Expect(fault.KindOf(err)).To(Equal(fault.KindConflict))
		Expect(codeOf(err)).To(Equal("STORE_UNIQUE_VIOLATION"))
	})

	It("maps a missing referenced row to NotFound", func() {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO sessions (id, user_id, created_at) VALUES ($1, $2, now())`,
			"token", ulid.Make().String())
		err = store.Classify(ctx, err)
		Expect(err).To(HaveOccurred())
		Expect(fault.KindOf(err)).To(Equal(fault.KindNotFound))
		Expect(codeOf(err)).To(Equal("STORE_FOREIGN_KEY_VIOLATION"))
	})

	It("maps an expired deadline to STORE_TIMEOUT", func() {
		qctx, cancel := store.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := db.Pool.Exec(qctx, `SELECT pg_sleep(2)`)
		err = store.Classify(qctx, err)
		Expect(err).To(HaveOccurred())
		Expect(codeOf(err)).To(Equal("STORE_TIMEOUT"))
		Expect(fault.KindOf(err)).To(Equal(fault.KindStore))
	})

	It("passes other errors through unchanged", func() {
		_, err := db.Pool.Exec(ctx, `SELECT * FROM no_such_table`)
		Expect(err).To(HaveOccurred())
		Expect(store.Classify(ctx, err)).To(BeIdenticalTo(err))
	})
})

var _ = Describe("OpenPool", func() {
	It("connects and honours MaxConns", func() {
		ctx := context.Background()
		pool, err := store.OpenPool(ctx, db.DSN, store.PoolOptions{MaxConns: 2})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		Expect(pool.Config().MaxConns).To(Equal(int32(2)))
		Expect(pool.Ping(ctx)).To(Succeed())
	})

	It("rejects an unparseable DSN", func() {
		_, err := store.OpenPool(context.Background(), "postgres://%zz", store.PoolOptions{})
		Expect(err).To(HaveOccurred())
		oopsErr, ok := oops.AsOops(err)
		Expect(ok).To(BeTrue())
		Expect(oopsErr.Code()).To(Equal("STORE_CONFIG_INVALID"))
	})
})
