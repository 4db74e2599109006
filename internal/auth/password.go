// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

// WithPassword runs fn with a cleartext password buffer and clears the
// buffer when fn returns or panics.
//
// Scrubbing is best-effort. The Go runtime may already have copied the
// bytes (request decoding, string conversions, stack growth) and those
// copies are out of reach; this narrows the exposure window, it is not a
// security boundary. Callers should avoid converting the buffer to a string.
func WithPassword(password []byte, fn func(password []byte) error) error {
	defer Wipe(password)
	return fn(password)
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	clear(b)
}
