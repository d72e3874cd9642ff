package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"todo-tracker/internal/config"
	"todo-tracker/internal/models"
	"todo-tracker/internal/notify"
	"todo-tracker/internal/queue"
	"todo-tracker/internal/snapshot"
	"todo-tracker/internal/worker"
	"todo-tracker/pkg/logger"
)

// Store is everything a sync round reads from or writes to.
type Store interface {
	snapshot.Source
	worker.Store
}

// Inbox drains remote commands into the store.
type Inbox interface {
	Drain(ctx context.Context, idle time.Duration) (int, error)
	Close() error
}

// Publisher stores the latest snapshot remotely.
type Publisher interface {
	Push(ctx context.Context, snap models.Snapshot) error
	Close() error
}

// Syncer runs sync rounds. Nil collaborators are skipped.
type Syncer struct {
	Store     Store
	Inbox     Inbox
	Publisher Publisher
	Notifier  notify.Notifier
	Idle      time.Duration
	Now       func() time.Time
}

// Result summarizes one round.
type Result struct {
	Applied   int
	Published bool
	Stats     models.Stats
}

func (r Result) String() string {
	msg := fmt.Sprintf("%d todos, %d active", r.Stats.Total, r.Stats.Active)
	if r.Applied > 0 {
		msg = fmt.Sprintf("%d remote changes applied; %s", r.Applied, msg)
	}
	if r.Published {
		msg += "; snapshot published"
	}
	return msg
}

// Open connects the configured targets concurrently. Targets left empty in
// cfg are not connected.
func Open(ctx context.Context, cfg config.SyncConfig, store Store, secrets snapshot.Secrets) (*Syncer, error) {
	s := &Syncer{Store: store, Idle: cfg.IdleTimeout, Now: time.Now}
	if cfg.Notify {
		s.Notifier = notify.NewDesktop()
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.KafkaEnabled() {
		g.Go(func() error {
			if err := queue.EnsureTopic(gctx, cfg); err != nil {
				return err
			}
			s.Inbox = worker.NewConsumer(cfg, store)
			return nil
		})
	}
	if cfg.RedisEnabled() {
		g.Go(func() error {
			p, err := snapshot.Connect(gctx, cfg, secrets)
			if err != nil {
				return err
			}
			s.Publisher = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting sync targets: %w", err)
	}
	return s, nil
}

// Run drains the inbox, publishes a snapshot and then notifies. A failed
// notification is logged and does not fail the round.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	var res Result

	if s.Inbox != nil {
		applied, err := s.Inbox.Drain(ctx, s.Idle)
		res.Applied = applied
		if err != nil {
			return res, fmt.Errorf("draining inbox: %w", err)
		}
	}

	snap, err := snapshot.Build(ctx, s.Store, s.now())
	if err != nil {
		return res, fmt.Errorf("building snapshot: %w", err)
	}
	res.Stats = snap.Stats

	if s.Publisher != nil {
		if err := s.Publisher.Push(ctx, snap); err != nil {
			return res, fmt.Errorf("publishing snapshot: %w", err)
		}
		res.Published = true
	}

	logger.Info(ctx, "Sync round finished", "applied", res.Applied, "published", res.Published, "todos", res.Stats.Total)

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, "Todo", "Sync complete: "+res.String()); err != nil {
			logger.Warn(ctx, "Notification failed", "error", err)
		}
	}
	return res, nil
}

func (s *Syncer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Close releases every connected target.
func (s *Syncer) Close() error {
	var errs []error
	if s.Inbox != nil {
		errs = append(errs, s.Inbox.Close())
	}
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	return errors.Join(errs...)
}
