// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package chat implements groups, membership and messages.
//
// Every Service operation authenticates the caller's session token first
// and then consults the authorization gate. The gate functions are pure:
// they see only the session and the group as loaded from the store, so a
// membership change is visible to the next request without invalidation.
package chat
