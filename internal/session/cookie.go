package session // signed cookie codec for session identifiers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for signing cookie payloads
)

// CookieName is the name under which the signed session identifier is
// set on the client.
const CookieName = "session_id"

// ErrBadCookie is returned when a cookie value fails signature or
// claim checks. Callers treat it exactly like a missing session.
var ErrBadCookie = errors.New("invalid session cookie")

// EncodeCookie wraps a session id in a signed HS256 token. Only the id
// travels to the client; the session payload itself stays server-side.
// The token expiry mirrors the session record's expiry so a stale
// cookie fails fast without a store lookup.
func EncodeCookie(secret, sid string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": expiresAt.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// DecodeCookie verifies the signature and returns the embedded session
// id. Tokens signed with another method or secret, expired tokens and
// tokens without a sid claim all yield ErrBadCookie.
func DecodeCookie(secret, value string) (string, error) {
	tok, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadCookie
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrBadCookie
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrBadCookie
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrBadCookie
	}
	return sid, nil
}
