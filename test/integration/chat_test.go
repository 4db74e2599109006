// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

//go:build integration

package integration

import (
	"context"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/chat"
	"github.com/chatterhq/chatter/internal/fault"
)

var _ = Describe("Chat", func() {
	var (
		ctx        context.Context
		alice, bob *auth.User
		aliceToken string
		bobToken   string
	)

	BeforeEach(func() {
		ctx = context.Background()
		alice, aliceToken = register(ctx, "alice", "a@x.com", "pw1")
		bob, bobToken = register(ctx, "bob", "b@x.com", "pw2")
	})

	session := func(token string) *auth.Session {
		GinkgoHelper()
		s, err := env.Manager.Authenticate(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Describe("group membership", func() {
		It("lets only members view and only the owner manage", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())
			Expect(group.Owner).To(Equal(alice.ID))
			Expect(group.Members).To(ConsistOf(alice.ID))

			Expect(chat.CanViewGroup(session(bobToken), group)).To(BeFalse())

			Expect(env.Chat.ChangeMemberByUsername(ctx, aliceToken, group.ID, "bob", false)).To(Succeed())

			// Authorization reads the stored group, not the in-memory copy.
			groups, err := env.Chat.ListGroups(ctx, bobToken, chat.Page{Offset: 0, Count: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(1))
			stored := groups[0]
			Expect(stored.Members).To(Equal([]ulid.ULID{alice.ID, bob.ID}))

			Expect(chat.CanViewGroup(session(bobToken), stored)).To(BeTrue())
			Expect(chat.CanManageMembers(session(bobToken), stored)).To(BeFalse())
		})

		It("adds a member idempotently", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Chat.ChangeMember(ctx, aliceToken, group.ID, bob.ID, false)).To(Succeed())
			Expect(env.Chat.ChangeMember(ctx, aliceToken, group.ID, bob.ID, false)).To(Succeed())

			groups, err := env.Chat.ListGroups(ctx, aliceToken, chat.Page{Count: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(groups[0].Members).To(HaveLen(2))
		})

		It("forbids a non-owner from changing members", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Chat.ChangeMember(ctx, aliceToken, group.ID, bob.ID, false)).To(Succeed())

			err = env.Chat.ChangeMember(ctx, bobToken, group.ID, bob.ID, true)
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthorized))
		})

		It("rejects an unknown username", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())

			err = env.Chat.ChangeMemberByUsername(ctx, aliceToken, group.ID, "mallory", false)
			Expect(fault.KindOf(err)).To(Equal(fault.KindNotFound))
		})

		It("removes a member who then loses access", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Chat.ChangeMember(ctx, aliceToken, group.ID, bob.ID, false)).To(Succeed())
			Expect(env.Chat.ChangeMember(ctx, aliceToken, group.ID, bob.ID, true)).To(Succeed())

			_, err = env.Chat.SendMessage(ctx, bobToken, group.ID, "still here?")
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthorized))
		})
	})

	Describe("messages", func() {
		It("lists the newest message first", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())

			first, err := env.Chat.SendMessage(ctx, aliceToken, group.ID, "first")
			Expect(err).NotTo(HaveOccurred())
			second, err := env.Chat.SendMessage(ctx, aliceToken, group.ID, "second")
			Expect(err).NotTo(HaveOccurred())

			msgs, err := env.Chat.ListMessages(ctx, aliceToken, group.ID, chat.Page{Offset: 0, Count: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].ID).To(Equal(second.ID))
			Expect(msgs[1].ID).To(Equal(first.ID))
			Expect(msgs[0].Author).To(Equal(alice.ID))
			Expect(msgs[0].Text).To(Equal("second"))
		})

		It("pages with offset and count", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())
			for _, text := range []string{"one", "two", "three"} {
				_, err := env.Chat.SendMessage(ctx, aliceToken, group.ID, text)
				Expect(err).NotTo(HaveOccurred())
			}

			msgs, err := env.Chat.ListMessages(ctx, aliceToken, group.ID, chat.Page{Offset: 1, Count: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Text).To(Equal("two"))

			msgs, err = env.Chat.ListMessages(ctx, aliceToken, group.ID, chat.Page{Offset: 5, Count: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(BeEmpty())
		})

		It("hides messages from non-members", func() {
			group, err := env.Chat.CreateGroup(ctx, aliceToken, "friends")
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Chat.ListMessages(ctx, bobToken, group.ID, chat.Page{Count: 10})
			Expect(fault.KindOf(err)).To(Equal(fault.KindUnauthorized))
		})
	})
})
