package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/internal/kv"
	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

const memorySweepInterval = 10 * time.Minute

// SessionBackend is the selected session store plus its lifecycle hooks.
// Purger is set only for the Postgres store, which has no native expiry.
type SessionBackend struct {
	Name   string
	Store  session.Store
	Purger *kv.PostgresStore
	Close  func()
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore selects the backend named by SESSION_STORE. A Redis
// server that is down at startup is not fatal: the client reconnects and the
// session reducer degrades to defaults until it does. awsCfg is only read for
// dynamodb.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (SessionBackend, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	switch cfg.SessionStore {
	case "", "redis":
		client := BuildRedisClient(ctx, cfg, logger, false)
		if client == nil {
			logger.Warn("REDIS_ADDR empty, sessions will not persist")
			return SessionBackend{Name: "none", Close: noop}, nil
		}
		store := kv.NewRedisStore(client, nil)
		if err := store.Ping(ctx); err != nil {
			logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
		return SessionBackend{Name: "redis", Store: store, Close: func() { _ = client.Close() }}, nil

	case "dynamodb":
		client := dynamodb.NewFromConfig(awsCfg)
		return SessionBackend{Name: "dynamodb", Store: kv.NewDynamoStore(client, cfg.SessionTable), Close: noop}, nil

	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return SessionBackend{}, fmt.Errorf("bootstrap: DATABASE_URL is required for SESSION_STORE=postgres")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return SessionBackend{}, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		store := kv.NewPostgresStore(pool)
		return SessionBackend{Name: "postgres", Store: store, Purger: store, Close: pool.Close}, nil

	case "memory":
		return SessionBackend{Name: "memory", Store: kv.NewMemoryStore(memorySweepInterval), Close: noop}, nil

	default:
		return SessionBackend{}, fmt.Errorf("bootstrap: unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

// StartPurger deletes expired Postgres sessions every interval until ctx is
// done. It is a no-op for backends with native expiry.
func StartPurger(ctx context.Context, purger *kv.PostgresStore, interval time.Duration, logger *logging.Logger) {
	if purger == nil || interval <= 0 {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := purger.PurgeExpired(ctx)
				if err != nil {
					logger.Warn("session purge failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("purged expired sessions", "count", n)
				}
			}
		}
	}()
}
