// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings themselves: ErrUserExists signals a
// username/email uniqueness violation during registration, while
// ErrForbidden indicates that the current user is not authorized to
// operate on a resource owned by someone else.
package repository

import (
    "errors"
    "strings"
)

// ErrUserExists is returned when a registration collides with an existing
// username or email. Handlers translate this into the user-facing
// "Username or email already exists" message.
var ErrUserExists = errors.New("username or email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// isUniqueViolation reports whether the driver error is an SQLite UNIQUE
// constraint failure. The check happens at this boundary only; nothing
// above the repository layer looks at driver error text.
func isUniqueViolation(err error) bool {
    return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
