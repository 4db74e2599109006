// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatterhq/chatter/internal/fault"
)

// DefaultQueryTimeout bounds a single repository call.
const DefaultQueryTimeout = 5 * time.Second

// WithTimeout derives a context that expires after d. A zero or negative d
// returns ctx unchanged.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Classify maps driver errors onto the fault taxonomy:
//   - unique violations wrap fault.ErrConflict
//   - foreign-key violations wrap fault.ErrNotFound
//   - deadline expiry, of err or of ctx, gets code STORE_TIMEOUT
//   - network timeouts also get code STORE_TIMEOUT
//
// Anything else is returned unchanged.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return oops.Code("STORE_UNIQUE_VIOLATION").
				With("constraint", pgErr.ConstraintName).
				Wrapf(fault.ErrConflict, "%s", pgErr.Message)
		case pgerrcode.ForeignKeyViolation:
			return oops.Code("STORE_FOREIGN_KEY_VIOLATION").
				With("constraint", pgErr.ConstraintName).
				Wrapf(fault.ErrNotFound, "%s", pgErr.Message)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return oops.Code("STORE_TIMEOUT").Wrap(err)
	}
	return err
}

// ParseID parses a ULID read from column. Stored IDs are always canonical,
// so a parse failure means the row is corrupt.
func ParseID(column, value string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(value)
	if err != nil {
		return ulid.ULID{}, oops.Code("STORE_CORRUPT_ID").
			With("column", column).
			With("value", value).
			Wrap(err)
	}
	return id, nil
}
