package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"todo-tracker/internal/database"
	"todo-tracker/internal/repository"
)

// NewDB opens a fresh SQLite file under t.TempDir with the schema applied.
// It is closed when the test completes.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "todo.sqlite"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})
	return db
}

// NewStore returns a Store over NewDB. Integrity failures fail the test
// instead of exiting; later options override that.
func NewStore(t *testing.T, opts ...repository.Option) *repository.Store {
	t.Helper()

	failOnIntegrity := repository.WithFatalHook(func(_ context.Context, err *repository.IntegrityError) {
		t.Errorf("unexpected integrity failure: %v", err)
	})
	return repository.New(NewDB(t), append([]repository.Option{failOnIntegrity}, opts...)...)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
