// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package auth provides credentials, sessions and account operations for Chatter.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their constructors:
//   - NewUser - creates a User with a validated username, normalized email and password hash
//   - NewSession - creates a Session bound to a token and user
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Sessions
//
// A session is identified by its bearer token: 64 random bytes, unpadded
// URL-safe base64. A session is valid while its age in whole days is at
// most SessionTTLDays. Sessions are never renewed; SessionManager deletes
// expired sessions it encounters, and SweepExpired removes the rest.
//
// # Services
//
// Service types coordinate domain operations:
//   - SessionManager - session create, verify, revoke and sweep
//   - Service - register, login, logout
//
// Constructors validate their dependencies. Errors wrap the sentinels in
// package fault; storage failures are logged and returned without their cause.
package auth
