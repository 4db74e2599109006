// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/samber/oops"
)

// SessionTokenBytes is the number of random bytes in a session token.
// 64 bytes encode to 86 URL-safe characters.
const SessionTokenBytes = 64

// TokenIssuer produces unguessable session identifiers.
type TokenIssuer interface {
	Generate() (string, error)
}

// RandomTokenIssuer draws tokens from the operating system CSPRNG.
type RandomTokenIssuer struct{}

// Generate returns a new session token.
func (RandomTokenIssuer) Generate() (string, error) {
	return GenerateSessionToken()
}

// GenerateSessionToken creates a token from SessionTokenBytes bytes of
// crypto/rand output, encoded with unpadded URL-safe base64.
func GenerateSessionToken() (string, error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

// DecodeSessionToken returns the raw bytes of a token and rejects anything
// that is not exactly SessionTokenBytes long.
func DecodeSessionToken(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, oops.Code("SESSION_TOKEN_MALFORMED").Wrap(err)
	}
	if len(raw) != SessionTokenBytes {
		return nil, oops.Code("SESSION_TOKEN_MALFORMED").
			With("length", len(raw)).
			Errorf("session token must decode to %d bytes", SessionTokenBytes)
	}
	return raw, nil
}

var _ TokenIssuer = RandomTokenIssuer{}
