// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatterhq/chatter/internal/auth"
)

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, auth.TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	assert.Equal(t, "abc", auth.TokenFromRequest(r))
}

func TestNewSessionCookie(t *testing.T) {
	c := auth.NewSessionCookie("abc", true)
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 31*24*60*60, c.MaxAge)
}

func TestExpiredSessionCookie(t *testing.T) {
	c := auth.ExpiredSessionCookie(false)
	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.False(t, c.Secure)

	rec := httptest.NewRecorder()
	http.SetCookie(rec, c)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}
