package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"todo-tracker/pkg/logger"
)

// IntegrityError marks a failed write. It means the database is in a state
// the program cannot reason about (broken schema, disk failure) and is never
// a normal "not found" outcome.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("database integrity failure during %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// FatalHook is invoked with every IntegrityError before it is returned.
type FatalHook func(ctx context.Context, err *IntegrityError)

// Store is the persistence layer for todos, tags and their association.
// It holds no locks of its own; SQLite serializes writers.
type Store struct {
	db    *sqlx.DB
	now   func() time.Time
	fatal FatalHook
}

type Option func(*Store)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithFatalHook replaces the default handler, which logs and exits.
func WithFatalHook(h FatalHook) Option {
	return func(s *Store) { s.fatal = h }
}

// New wraps an open database handle.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		now:   time.Now,
		fatal: exitOnIntegrityError,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func exitOnIntegrityError(ctx context.Context, err *IntegrityError) {
	logger.Fatal(ctx, "Database write failed", "op", err.Op, "error", err.Err)
}

// writeFailed escalates a failed INSERT/UPDATE/DELETE.
func (s *Store) writeFailed(ctx context.Context, op string, err error) error {
	ie := &IntegrityError{Op: op, Err: err}
	if s.fatal != nil {
		s.fatal(ctx, ie)
	}
	return ie
}

func (s *Store) timestamp() int64 {
	return s.now().Unix()
}
