package utils // package utils provides helper functions for codes and validation

import (
	"crypto/rand" // secure random number generation
	"fmt"
	"math/big"
)

// GenerateOTP returns a uniformly random six-digit decimal code as a
// zero-padded string ("000000".."999999"). It draws from crypto/rand
// so codes are not guessable from previous issuances.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
