package session

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/luhambo/before-you-sign/internal/model"
)

// MemoryStore keeps sessions in process memory. This is the default
// configuration: sessions do not survive a restart. Expired entries are
// dropped lazily on Get and swept periodically in the background.
type MemoryStore struct {
    mu       sync.RWMutex
    sessions map[string]*Session
    ttl      time.Duration
    stop     chan struct{}
    stopOnce sync.Once
}

// NewMemoryStore returns a MemoryStore with the given session lifetime and
// starts its background sweeper. Pass 0 to use DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
    if ttl <= 0 {
        ttl = DefaultTTL
    }
    s := &MemoryStore{
        sessions: make(map[string]*Session),
        ttl:      ttl,
        stop:     make(chan struct{}),
    }
    go s.sweep()
    return s
}

func (s *MemoryStore) Create(_ context.Context, userID int64, username, email string, role model.Role) (*Session, error) {
    sess := &Session{
        ID:        uuid.NewString(),
        UserID:    userID,
        Username:  username,
        Email:     email,
        Role:      role,
        ExpiresAt: time.Now().UTC().Add(s.ttl),
    }
    s.mu.Lock()
    s.sessions[sess.ID] = sess
    s.mu.Unlock()
    return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
    s.mu.RLock()
    sess, ok := s.sessions[id]
    s.mu.RUnlock()
    if !ok {
        return nil, ErrNotFound
    }
    if time.Now().UTC().After(sess.ExpiresAt) {
        s.mu.Lock()
        delete(s.sessions, id)
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    cp := *sess
    return &cp, nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
    s.mu.Lock()
    delete(s.sessions, id)
    s.mu.Unlock()
    return nil
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
    s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweep() {
    t := time.NewTicker(10 * time.Minute)
    defer t.Stop()
    for {
        select {
        case <-s.stop:
            return
        case now := <-t.C:
            s.mu.Lock()
            for id, sess := range s.sessions {
                if now.UTC().After(sess.ExpiresAt) {
                    delete(s.sessions, id)
                }
            }
            s.mu.Unlock()
        }
    }
}
