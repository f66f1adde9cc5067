package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for path prefix checks

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/user-auth-service/internal/session"
)

// Context keys populated by SessionAuth for downstream handlers.
const (
	CtxSession = "session" // *session.Session
	CtxUserID  = "user_id" // uint64
	CtxRole    = "role"    // string
)

// SessionAuth returns an Echo middleware that resolves the signed
// session cookie into a server-side session record and requires an
// identity claim on it. On failure the rendering depends on the
// caller's interface class: requests under /api receive a structured
// 401 payload, while browser navigation is redirected to the login
// page. Handlers behind this middleware can read the session and the
// identity via c.Get(CtxSession), c.Get(CtxUserID) and c.Get(CtxRole).
func SessionAuth(secret string, store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := resolveSession(c, secret, store)
			if !ok || sess.Identity == nil {
				return unauthenticated(c)
			}
			c.Set(CtxSession, sess)
			c.Set(CtxUserID, sess.Identity.UserID)
			c.Set(CtxRole, sess.Identity.Role)
			return next(c)
		}
	}
}

// resolveSession decodes the session cookie and loads the record it
// names. Missing cookies, bad signatures and expired or deleted
// records all count as "no session".
func resolveSession(c echo.Context, secret string, store session.Store) (*session.Session, bool) {
	ck, err := c.Cookie(session.CookieName)
	if err != nil || ck.Value == "" {
		return nil, false
	}
	sid, err := session.DecodeCookie(secret, ck.Value)
	if err != nil {
		return nil, false
	}
	sess, err := store.Get(c.Request().Context(), sid)
	if err != nil {
		return nil, false
	}
	return sess, true
}

// unauthenticated renders the failure for the caller's interface
// class: JSON for API clients, a redirect for page navigation.
func unauthenticated(c echo.Context) error {
	if strings.HasPrefix(c.Request().URL.Path, "/api") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized. Please login."})
	}
	return c.Redirect(http.StatusFound, "/login.html")
}
