// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package integration

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/fault"
)

var _ = Describe("Accounts", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("registering and logging in", func() {
		It("issues a valid session on register and again on login", func() {
			alice, registerToken := register(ctx, "alice", "a@x.com", "pw1")

			v, err := env.Manager.Verify(ctx, registerToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Valid()).To(BeTrue())
			Expect(v.Session.UserID).To(Equal(alice.ID))

			user, loginToken, err := env.Accounts.Login(ctx, "a@x.com", []byte("pw1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(alice.ID))

			v, err = env.Manager.Verify(ctx, loginToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Valid()).To(BeTrue())
			Expect(v.Session.UserID).To(Equal(alice.ID))
		})

		It("matches the email case-insensitively on login", func() {
			register(ctx, "alice", "a@x.com", "pw1")

			_, _, err := env.Accounts.Login(ctx, "A@X.com", []byte("pw1"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a wrong password as unauthenticated", func() {
			register(ctx, "alice", "a@x.com", "pw1")

			_, token, err := env.Accounts.Login(ctx, "a@x.com", []byte("wrong"))
			Expect(err).To(HaveOccurred())
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthenticated))
			Expect(token).To(BeEmpty())
		})

		It("rejects an unknown email the same way as a wrong password", func() {
			_, _, err := env.Accounts.Login(ctx, "nobody@x.com", []byte("pw1"))
			Expect(err).To(HaveOccurred())
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthenticated))
		})
	})

	Describe("duplicate registration", func() {
		It("returns Conflict for a reused email", func() {
			register(ctx, "alice", "a@x.com", "pw1")

			_, token, err := env.Accounts.Register(ctx, auth.RegisterRequest{
				Username: "alice2",
				Email:    "a@x.com",
				Password: []byte("pw2"),
			})
			Expect(err).To(HaveOccurred())
			Expect(fault.KindOf(err)).To(Equal(fault.KindConflict))
			Expect(token).To(BeEmpty())
		})

		It("returns Conflict for a reused username", func() {
			register(ctx, "alice", "a@x.com", "pw1")

			_, _, err := env.Accounts.Register(ctx, auth.RegisterRequest{
				Username: "alice",
				Email:    "b@x.com",
				Password: []byte("pw2"),
			})
			Expect(err).To(HaveOccurred())
			Expect(fault.KindOf(err)).To(Equal(fault.KindConflict))
		})
	})

	Describe("logging out", func() {
		It("invalidates only the revoked session", func() {
			register(ctx, "alice", "a@x.com", "pw1")
			_, first, err := env.Accounts.Login(ctx, "a@x.com", []byte("pw1"))
			Expect(err).NotTo(HaveOccurred())
			_, second, err := env.Accounts.Login(ctx, "a@x.com", []byte("pw1"))
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Accounts.Logout(ctx, first)).To(Succeed())

			_, err = env.Accounts.Authenticate(ctx, first)
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthenticated))
			_, err = env.Accounts.Authenticate(ctx, second)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Accounts.Logout(ctx, first)).To(Succeed())
		})
	})
})
