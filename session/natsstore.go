package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// SessionsBucket is the KV bucket name for stored sessions.
const SessionsBucket = "COVMAP_SESSIONS"

// DefaultSessionTTL is how long stored sessions are retained (30 days).
const DefaultSessionTTL = 30 * 24 * time.Hour

// NATSStore persists sessions in a JetStream KV bucket so analyses
// survive process restarts and are shareable across hosts.
type NATSStore struct {
	bucket jetstream.KeyValue
	ttl    time.Duration
	logger *slog.Logger
}

// NATSStoreOption configures a NATSStore.
type NATSStoreOption func(*NATSStore)

// WithSessionTTL sets the retention period for stored sessions.
func WithSessionTTL(ttl time.Duration) NATSStoreOption {
	return func(s *NATSStore) {
		s.ttl = ttl
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) NATSStoreOption {
	return func(s *NATSStore) {
		s.logger = logger
	}
}

// NewNATSStore creates a session store over a NATS connection. The
// context covers the initial bucket creation only.
func NewNATSStore(ctx context.Context, nc *nats.Conn, opts ...NATSStoreOption) (*NATSStore, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS connection required")
	}

	s := &NATSStore{
		ttl:    DefaultSessionTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}

	// CreateOrUpdateKeyValue is idempotent and handles race conditions
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      SessionsBucket,
		Description: "Assessment coverage sessions",
		TTL:         s.ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("create/update kv bucket: %w", err)
	}

	s.bucket = bucket
	return s, nil
}

// Put stores or replaces a session.
func (s *NATSStore) Put(ctx context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if _, err := s.bucket.Put(ctx, sess.ID, data); err != nil {
		return fmt.Errorf("put session %s: %w", sess.ID, err)
	}
	return nil
}

// Get loads a session by id.
func (s *NATSStore) Get(ctx context.Context, id string) (*Session, error) {
	entry, err := s.bucket.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(entry.Value(), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

// Delete removes a session.
func (s *NATSStore) Delete(ctx context.Context, id string) error {
	if err := s.bucket.Delete(ctx, id); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List returns all stored session ids, sorted.
func (s *NATSStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		// No keys is not an error - return empty slice
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}
