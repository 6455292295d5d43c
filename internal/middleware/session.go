package middleware // middleware provides shared request processing for handlers

import (
    "errors"

    "github.com/labstack/echo/v4"

    "github.com/luhambo/before-you-sign/internal/session"
)

// sessionKey is the Echo context key under which the request's session is
// stored. Session data is request-scoped: it is loaded once per request by
// LoadSession and read through CurrentSession, never held in a global.
const sessionKey = "session"

// LoadSession returns middleware that resolves the session cookie against
// the store and attaches the resulting record to the request context. The
// chain continues either way; guards downstream decide what an absent
// session means for their route.
func LoadSession(store session.Store) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(session.CookieName)
            if err != nil || cookie.Value == "" {
                return next(c)
            }
            sess, err := store.Get(c.Request().Context(), cookie.Value)
            if err != nil {
                if !errors.Is(err, session.ErrNotFound) {
                    // Store unavailable; treat the request as anonymous
                    // rather than failing every page.
                    c.Logger().Errorf("session lookup failed: %v", err)
                }
                return next(c)
            }
            c.Set(sessionKey, sess)
            return next(c)
        }
    }
}

// CurrentSession returns the session attached to the request, or nil when
// the request is anonymous.
func CurrentSession(c echo.Context) *session.Session {
    if s, ok := c.Get(sessionKey).(*session.Session); ok {
        return s
    }
    return nil
}
