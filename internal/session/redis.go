package session

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"

    "github.com/luhambo/before-you-sign/internal/model"
)

// RedisStore keeps sessions in Redis under "sess:<id>" keys with the TTL
// applied by Redis itself, so logins survive process restarts. It is used
// only when a Redis server is configured and reachable at startup.
type RedisStore struct {
    client *redis.Client
    ttl    time.Duration
}

// NewRedisStore wraps an established Redis client. Pass 0 for the TTL to
// use DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
    if ttl <= 0 {
        ttl = DefaultTTL
    }
    return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string { return "sess:" + id }

func (s *RedisStore) Create(ctx context.Context, userID int64, username, email string, role model.Role) (*Session, error) {
    sess := &Session{
        ID:        uuid.NewString(),
        UserID:    userID,
        Username:  username,
        Email:     email,
        Role:      role,
        ExpiresAt: time.Now().UTC().Add(s.ttl),
    }
    b, err := json.Marshal(sess)
    if err != nil {
        return nil, err
    }
    if err := s.client.Set(ctx, key(sess.ID), b, s.ttl).Err(); err != nil {
        return nil, err
    }
    return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
    b, err := s.client.Get(ctx, key(id)).Bytes()
    if err == redis.Nil {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    var sess Session
    if err := json.Unmarshal(b, &sess); err != nil {
        return nil, err
    }
    if time.Now().UTC().After(sess.ExpiresAt) {
        _ = s.client.Del(ctx, key(id)).Err()
        return nil, ErrNotFound
    }
    return &sess, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
    // DEL of a missing key is a no-op, which keeps logout idempotent.
    return s.client.Del(ctx, key(id)).Err()
}
