package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/luhambo/before-you-sign/internal/model"
)

// RequireAuth gates routes that need any authenticated session. Anonymous
// requests are redirected to the login page. It assumes LoadSession ran
// earlier in the chain.
func RequireAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentSession(c) == nil {
                return c.Redirect(http.StatusSeeOther, "/login")
            }
            return next(c)
        }
    }
}

// RequireRole enforces that the session's role matches the expected role
// exactly. Mismatches render the shared error page with a 403 status so
// denial looks like every other error in the system. Role is fixed at
// session creation; a role changed directly in storage takes effect on the
// next login.
func RequireRole(role model.Role) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            sess := CurrentSession(c)
            if sess == nil {
                return c.Redirect(http.StatusSeeOther, "/login")
            }
            if sess.Role != role {
                return c.Render(http.StatusForbidden, "error.html", echo.Map{
                    "Title":   "Access Denied",
                    "Message": "You do not have permission to view this page.",
                    "User":    sess,
                })
            }
            return next(c)
        }
    }
}
