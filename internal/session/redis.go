package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edgard/friendbook/internal/config"
	apperrors "github.com/edgard/friendbook/internal/errors"
)

// RedisStore keeps sessions as JSON values whose key expiry is the idle timeout,
// so several bot replicas can share dialogues and restarts keep them.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisClient opens a client for cfg and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewPersistenceError("failed to connect to redis", err)
	}
	return client, nil
}

// NewRedisStore returns a store writing keys "<prefix><user id>".
func NewRedisStore(client redis.Cmdable, prefix string, idleTimeout time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: idleTimeout}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load session", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.NewPersistenceError("failed to decode session", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return apperrors.NewPersistenceError("failed to encode session", err)
	}
	if err := r.client.Set(ctx, r.key(s.UserID), data, r.ttl).Err(); err != nil {
		return apperrors.NewPersistenceError("failed to save session", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return apperrors.NewPersistenceError("failed to delete session", err)
	}
	return nil
}
