package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// One-time codes are drawn from [OneTimeCodeMin, OneTimeCodeMax), so they
// always have exactly six digits.
const (
	OneTimeCodeMin = 100000
	OneTimeCodeMax = 999999
)

// GenerateRandByteArray returns size bytes from the system CSPRNG.
// It panics if the random source fails, which only happens on a broken host.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return b
}

// WipeByteArray overwrites b with zeros. It is used to drop passwords from
// memory once they have been hashed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// NewOneTimeCode returns a uniformly distributed six-digit numeric code
// rendered as a decimal string.
func NewOneTimeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OneTimeCodeMax-OneTimeCodeMin))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+OneTimeCodeMin), nil
}
