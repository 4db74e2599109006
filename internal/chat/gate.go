// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chat

import "github.com/chatterhq/chatter/internal/auth"

// CanViewGroup reports whether the session's user is a member of g.
func CanViewGroup(s *auth.Session, g *Group) bool {
	if s == nil || g == nil {
		return false
	}
	return g.HasMember(s.UserID)
}

// CanManageMembers reports whether the session's user owns g.
func CanManageMembers(s *auth.Session, g *Group) bool {
	if s == nil || g == nil {
		return false
	}
	return s.UserID == g.Owner
}

// CanPostMessage reports whether the session's user may post to g.
// Any member may post.
func CanPostMessage(s *auth.Session, g *Group) bool {
	return CanViewGroup(s, g)
}
