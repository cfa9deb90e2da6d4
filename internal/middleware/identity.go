package middleware

// identity.go holds the context key that JWTAuth fills and the helpers that
// read it back.  Handlers and the rate limiter share them so the key name
// lives in one place.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key under which JWTAuth stores the
// authenticated user id as an int64.
const UserIDKey = "user_id"

// UserID returns the authenticated user id, or false when the request did
// not pass through JWTAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(UserIDKey).(int64)
	return id, ok && id > 0
}

// userKey is the rate limiter's view of the caller: the decimal id, or
// "anon" before authentication.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
