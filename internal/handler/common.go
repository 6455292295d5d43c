package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/luhambo/before-you-sign/internal/middleware"
	"github.com/luhambo/before-you-sign/internal/session"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// page assembles the data every template expects: the title plus the
// current session (nil for anonymous requests) under "User". Extra
// key/value pairs are merged in.
func page(c echo.Context, title string, extra echo.Map) echo.Map {
	data := echo.Map{
		"Title": title,
		"User":  middleware.CurrentSession(c),
		// Templates repopulate submitted forms from this map; an empty one
		// keeps first renders from dereferencing a missing key.
		"Form": map[string]string{},
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// renderError writes the shared error page with a real error status.
// Storage-level failures go through here so no failure path leaks a 200.
func renderError(c echo.Context, status int, title, message string) error {
	return c.Render(status, "error.html", page(c, title, echo.Map{"Message": message}))
}

// serverError logs a failed request with its correlation id and renders
// the 500 page.
func serverError(c echo.Context, err error, during string) error {
	logger.Error().Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg(during)
	return renderError(c, http.StatusInternalServerError, "Server Error",
		"Something went wrong! Please try again later.")
}

// NotFound renders the 404 page for unmatched routes.
func NotFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, "404.html", page(c, "Page Not Found", echo.Map{
		"Message": "The page you are looking for does not exist.",
	}))
}

// formMap captures the given form fields for re-rendering a submitted form
// after a validation failure. Passwords are never captured.
func formMap(c echo.Context, keys ...string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = c.FormValue(k)
	}
	return m
}

// sessionCookie builds the browser cookie carrying a session id. An empty
// id with maxAge < 0 clears the cookie on logout.
func sessionCookie(id string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
