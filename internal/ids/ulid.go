// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package ids generates entity identifiers.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/fault"
)

var (
	entropyLock sync.Mutex
	entropy     = ulid.Monotonic(rand.Reader, 0)
	last        ulid.ULID
)

// New generates a new ULID. IDs generated within the same millisecond are
// strictly increasing, so ordering by ID breaks creation-time ties.
func New() ulid.ULID {
	return NewAt(time.Now())
}

// NewAt generates a new ULID with the timestamp of t. Every ID is greater
// than all IDs issued before it in this process, so a t earlier than the
// last issued timestamp is raised to that timestamp.
func NewAt(t time.Time) ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	ms := ulid.Timestamp(t)
	if prev := last.Time(); ms < prev {
		ms = prev
	}
	last = ulid.MustNew(ms, entropy)
	return last
}

// Parse parses a ULID string. Malformed input wraps fault.ErrInvalid.
func Parse(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("ID_INVALID").
			With("id", s).
			Wrapf(fault.ErrInvalid, "invalid id %q: %v", s, err)
	}
	return id, nil
}

// IsZero reports whether id is the zero ULID.
func IsZero(id ulid.ULID) bool {
	return id.Compare(ulid.ULID{}) == 0
}
