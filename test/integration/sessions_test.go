// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/chatterhq/chatter/internal/auth"
)

var _ = Describe("Session expiry", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	// managerAt returns a SessionManager over the shared store whose clock
	// reads now.
	managerAt := func(now time.Time) *auth.SessionManager {
		GinkgoHelper()
		m, err := auth.NewSessionManager(env.Sessions, auth.WithClock(func() time.Time { return now }))
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	It("keeps a session valid on its last day and rejects it the day after", func() {
		alice, _ := register(ctx, "alice", "a@x.com", "pw1")
		created := time.Now().UTC().Add(-40 * 24 * time.Hour)

		token, err := managerAt(created).Create(ctx, alice.ID)
		Expect(err).NotTo(HaveOccurred())

		lastDay := created.Add(auth.SessionTTLDays*24*time.Hour + 23*time.Hour)
		v, err := managerAt(lastDay).Verify(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Valid()).To(BeTrue())

		dayAfter := created.Add((auth.SessionTTLDays + 1) * 24 * time.Hour)
		v, err = managerAt(dayAfter).Verify(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Valid()).To(BeFalse())
		Expect(v.Reason).To(Equal(auth.ReasonExpired))
	})

	It("sweeps expired sessions and leaves live ones", func() {
		alice, live := register(ctx, "alice", "a@x.com", "pw1")

		stale, err := managerAt(time.Now().UTC().Add(-40*24*time.Hour)).Create(ctx, alice.ID)
		Expect(err).NotTo(HaveOccurred())

		n, err := env.Manager.SweepExpired(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		v, err := env.Manager.Verify(ctx, stale)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Reason).To(Equal(auth.ReasonUnknown))

		v, err = env.Manager.Verify(ctx, live)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Valid()).To(BeTrue())
	})
})
