// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/chatterhq/chatter/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var migrator *store.Migrator

	tableExists := func(name string) bool {
		var exists bool
		err := db.Pool.QueryRow(context.Background(),
			`SELECT to_regclass($1) IS NOT NULL`, "public."+name).Scan(&exists)
		Expect(err).NotTo(HaveOccurred())
		return exists
	}

	BeforeAll(func() {
		var err error
		migrator, err = store.NewMigrator(db.DSN)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			// Leave the schema fully applied for the other specs.
			Expect(migrator.Up()).To(Succeed())
			Expect(migrator.Close()).To(Succeed())
			// Recreated tables invalidate statements cached on pooled connections.
			db.Pool.Reset()
		})
	})

	It("starts fully migrated with nothing pending", func() {
		all, err := store.MigrationVersions()
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(Equal([]uint{1, 2, 3, 4}))

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(4)))
		Expect(dirty).To(BeFalse())

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())

		for _, table := range []string{"users", "sessions", "chat_groups", "group_members", "messages"} {
			Expect(tableExists(table)).To(BeTrue(), "missing table %s", table)
		}
	})

	It("steps one migration down and back up", func() {
		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(3)))
		Expect(tableExists("messages")).To(BeFalse())

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{4}))

		Expect(migrator.Steps(1)).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(4)))
		Expect(tableExists("messages")).To(BeTrue())
	})

	It("rolls everything back and reapplies", func() {
		Expect(migrator.Down()).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(0)))
		Expect(dirty).To(BeFalse())
		Expect(tableExists("users")).To(BeFalse())

		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Up()).To(Succeed(), "Up with nothing pending is a no-op")
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(4)))
	})

	It("forces a version without running migrations", func() {
		Expect(migrator.Force(3)).To(Succeed())
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(3)))
		Expect(dirty).To(BeFalse())
		Expect(tableExists("messages")).To(BeTrue())

		Expect(migrator.Force(4)).To(Succeed())
	})
})
