package utils

import "regexp"

// emailRe accepts addresses with a restricted set of TLDs. The set is
// deliberately conservative; addresses outside it are rejected at the
// API boundary before any OTP is issued.
var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.(com|org|net|edu|gov|info|biz|co|in)$`)

// ValidEmail reports whether the address matches the accepted format.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
