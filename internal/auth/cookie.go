// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"net/http"
	"time"
)

// CookieName is the name of the cookie that carries the session token.
const CookieName = "session"

// TokenFromRequest returns the session token presented with r, or "" if
// the request carries no session cookie.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// NewSessionCookie builds the cookie that hands token to a client.
// The cookie outlives the session by a day so that the server, not the
// browser, decides when a session has expired.
func NewSessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((SessionTTLDays + 1) * day / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds a cookie that tells the client to drop its
// session token.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
