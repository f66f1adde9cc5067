package model

import "time"

// OTP purposes. Codes issued for one purpose are never accepted for
// another.
const (
	PurposeRegister       = "register"
	PurposeForgotPassword = "forgot-password"
)

// OTP models an entry in the `otps` table. A code is valid only while
// Used is false and ExpiresAt lies in the future. Registration codes
// are deleted on successful verification; forgot-password codes are
// marked used instead, leaving a record of the consumed reset.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – address the code was mailed to.
//  Code      – six decimal digits, zero-padded.
//  Purpose   – PurposeRegister or PurposeForgotPassword.
//  ExpiresAt – expiration timestamp (issuance time + TTL).
//  Used      – set once a forgot-password code is consumed.
//  CreatedAt – timestamp of issuance.
type OTP struct {
	ID        uint64    // otps.id
	Email     string    // otps.email
	Code      string    // otps.code
	Purpose   string    // otps.purpose
	ExpiresAt time.Time // otps.expires_at
	Used      bool      // otps.used
	CreatedAt time.Time // otps.created_at
}
