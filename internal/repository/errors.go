// Package repository defines error types that are reused across
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios without string
// matching. ErrEmailExists maps to a duplicate-email 400, while
// ErrOTPNotFound is the single failure for wrong, expired and
// already-consumed codes alike; callers must not distinguish which.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrOTPNotFound is returned when no matching, unused, unexpired OTP
// row exists for the given email/code/purpose triple.
var ErrOTPNotFound = errors.New("otp not found")
