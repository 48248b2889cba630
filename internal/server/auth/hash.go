package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the lowercase hex SHA-256 digest of a raw refresh
// secret. The digest is the only form of the secret ever persisted, and it
// doubles as the lookup key, which is why a deterministic hash is used here
// rather than a salted one.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
