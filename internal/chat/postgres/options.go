// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package postgres implements the chat repositories on PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/chatterhq/chatter/internal/store"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	queryTimeout time.Duration
}

// WithQueryTimeout bounds every repository call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) {
		o.queryTimeout = d
	}
}

func newOptions(opts []Option) options {
	o := options{queryTimeout: store.DefaultQueryTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return store.WithTimeout(ctx, o.queryTimeout)
}
