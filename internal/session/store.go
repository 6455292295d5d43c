// Package session implements the cookie-addressed login session store.
// A session is an opaque UUID handed to the browser in an httpOnly cookie;
// the server-side record carries the authenticated user's identity and role
// for the lifetime of the login. Role is fixed at creation time and is not
// re-read from storage until the next login.
package session

import (
    "context"
    "errors"
    "time"

    "github.com/luhambo/before-you-sign/internal/model"
)

// CookieName is the name of the browser cookie carrying the session ID.
const CookieName = "bys_session"

// DefaultTTL is the fixed session lifetime measured from creation.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned by Get when no live session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Session is the server-held record for one authenticated browser.
type Session struct {
    ID        string     `json:"id"`
    UserID    int64      `json:"user_id"`
    Username  string     `json:"username"`
    Email     string     `json:"email"`
    Role      model.Role `json:"role"`
    ExpiresAt time.Time  `json:"expires_at"`
}

// Store persists sessions between requests. Create issues a fresh opaque ID,
// Get returns ErrNotFound for unknown or expired IDs, and Destroy is a no-op
// when the ID does not exist so logout stays idempotent.
type Store interface {
    Create(ctx context.Context, userID int64, username, email string, role model.Role) (*Session, error)
    Get(ctx context.Context, id string) (*Session, error)
    Destroy(ctx context.Context, id string) error
}
