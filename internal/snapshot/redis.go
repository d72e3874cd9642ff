package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-tracker/internal/config"
	"todo-tracker/internal/credential"
	"todo-tracker/internal/models"
	"todo-tracker/pkg/logger"
)

// Source is the part of the store a snapshot is built from.
type Source interface {
	List(ctx context.Context) ([]models.Todo, error)
	ListAllTags(ctx context.Context) ([]models.Tag, error)
}

// Secrets resolves credentials that are not part of the config file.
type Secrets interface {
	Get(key string) (string, error)
}

// Build reads the full current state.
func Build(ctx context.Context, src Source, now time.Time) (models.Snapshot, error) {
	todos, err := src.List(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	tags, err := src.ListAllTags(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{
		GeneratedAt: now.UTC(),
		Todos:       todos,
		Tags:        tags,
		Stats:       models.ComputeStats(todos),
	}, nil
}

// Publisher stores the latest snapshot in Redis under a single key.
type Publisher struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New wraps an existing client. A zero ttl keeps the key forever.
func New(client *redis.Client, key string, ttl time.Duration) *Publisher {
	return &Publisher{client: client, key: key, ttl: ttl}
}

// Connect parses the configured URL and pings the server. When the URL has no
// password, the keyring entry redis-password is used if present.
func Connect(ctx context.Context, cfg config.SyncConfig, secrets Secrets) (*Publisher, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.Password == "" && secrets != nil {
		pw, err := secrets.Get(credential.RedisPassword)
		switch {
		case err == nil:
			opts.Password = pw
		case !errors.Is(err, credential.ErrNotFound):
			logger.Warn(ctx, "Reading redis password from keyring failed", "error", err)
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Debug(ctx, "Redis client initialized", "addr", opts.Addr, "db", opts.DB)
	return New(client, cfg.RedisKey, cfg.RedisTTL), nil
}

// Push overwrites the stored snapshot.
func (p *Publisher) Push(ctx context.Context, snap models.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := p.client.Set(ctx, p.key, b, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.key, err)
	}
	logger.Info(ctx, "Snapshot published", "key", p.key, "todos", len(snap.Todos), "bytes", len(b))
	return nil
}

// Fetch returns the stored snapshot, or nil when none has been published.
func (p *Publisher) Fetch(ctx context.Context) (*models.Snapshot, error) {
	b, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", p.key, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
