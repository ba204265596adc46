package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 30 * time.Minute
	keyPrefix  = "entitlement:intent:"
)

// RedisStore shares pending intents across instances. Consume uses GETDEL so
// two instances handling the same sign-in cannot both see the intent.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func key(sessionID string) string { return keyPrefix + sessionID }

func (s *RedisStore) Record(ctx context.Context, sessionID string, in Intent) error {
	const op = "intent.RedisStore.Record"
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if in.RecordedAt.IsZero() {
		in.RecordedAt = s.now()
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.rdb.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, sessionID string) (Intent, error) {
	const op = "intent.RedisStore.Consume"
	val, err := s.rdb.GetDel(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Intent{}, ErrNoIntent
	}
	if err != nil {
		return Intent{}, fmt.Errorf("%s: %w", op, err)
	}
	var in Intent
	if err := json.Unmarshal(val, &in); err != nil {
		return Intent{}, fmt.Errorf("%s: %w", op, err)
	}
	return in, nil
}
