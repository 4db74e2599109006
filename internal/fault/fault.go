// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package fault defines the outcome taxonomy shared by the auth and chat
// packages.
//
// Core operations never expose storage details to callers. They wrap one of
// the sentinel errors below (usually through an oops error carrying a code
// and context for operators) and the boundary layer maps the result to a
// Kind with KindOf. Anything that does not wrap a sentinel is a store
// failure.
package fault

import (
	"errors"
	"net/http"
)

// Sentinel errors. Wrap them; compare with errors.Is.
var (
	// ErrUnauthenticated means no session, an unknown session, or an expired one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized means the caller is authenticated but lacks permission
	// on a specific resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("conflict")

	// ErrInvalid is returned when caller input fails validation.
	ErrInvalid = errors.New("invalid input")
)

// Kind classifies an error for the boundary layer.
type Kind int

// Outcome kinds. KindStore is the fallback for anything unclassified.
const (
	KindStore Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInvalid
)

// KindOf classifies err. A nil error has no kind and reports KindStore;
// callers check err != nil first.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindStore
	}
}

// String returns the lower-case kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	default:
		return "store_error"
	}
}

// HTTPStatus maps the kind to a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns text that is safe to show to end users. It never
// includes details of the underlying error.
func (k Kind) PublicMessage() string {
	switch k {
	case KindUnauthenticated:
		return "You need to log in."
	case KindUnauthorized:
		return "You are not allowed to do that."
	case KindNotFound:
		return "The requested resource does not exist."
	case KindConflict:
		return "That resource already exists."
	case KindInvalid:
		return "The request was invalid."
	default:
		return "Internal error, try again later."
	}
}
