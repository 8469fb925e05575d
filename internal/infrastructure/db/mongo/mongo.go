package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultTimeout = 10 * time.Second

// ErrNotConnected is returned by repositories built without a database.
var ErrNotConnected = errors.New("mongo: database not connected")

// DefaultDatabase is used when neither the config nor the URI names one.
const DefaultDatabase = "todolist"

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect builds a MongoDB client and selects the database. The driver dials
// lazily, so Connect only fails on an unusable URI; use Ping to check that
// the server is reachable.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	name := cfg.Database
	if name == "" {
		name = DatabaseFromURI(cfg.URI)
	}
	return client, client.Database(name), nil
}

// Ping verifies connectivity to the primary.
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	if client == nil {
		return ErrNotConnected
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// DatabaseFromURI returns the database named in the URI path, or
// DefaultDatabase when the URI names none or cannot be parsed.
func DatabaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return DefaultDatabase
	}
	return cs.Database
}

// EnsureIndexes creates the indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := NewTodoRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("todos indexes: %w", err)
	}
	if err := NewUserRepository(db, nil).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := NewActivityRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("todo_events indexes: %w", err)
	}
	return nil
}

// KeepEnsuringIndexes calls ensure until it succeeds or ctx ends. The wait
// between attempts starts at initial and doubles up to maxWait.
func KeepEnsuringIndexes(ctx context.Context, ensure func(context.Context) error, initial, maxWait time.Duration, log zerolog.Logger) error {
	wait := initial
	for attempt := 1; ; attempt++ {
		err := ensure(ctx)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("indexes ensured")
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("failed to ensure indexes")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if wait *= 2; wait > maxWait {
			wait = maxWait
		}
	}
}

// collection returns nil when db is nil so repositories can report
// ErrNotConnected instead of panicking.
func collection(db *mongo.Database, name string) *mongo.Collection {
	if db == nil {
		return nil
	}
	return db.Collection(name)
}
