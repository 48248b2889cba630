package common

import (
	"crypto/rand"
)

const alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandAlphanumString generates a random alphanumeric string of the given
// length using crypto/rand. The 62-character alphabet keeps the result safe
// to carry in cookie values and URLs without escaping.
//
// It returns an error only if the random number generator fails.
func MakeRandAlphanumString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphanum[int(b[i])%len(alphanum)]
	}
	return string(b), nil
}

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system RNG is unavailable, which is unrecoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
