package quantum

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the hex SHA3-256 digest of the circuit's OpenQASM text.
// Structurally identical circuits share a fingerprint.
func Fingerprint(c *Circuit) string {
	sum := sha3.Sum256([]byte(c.ToQASM()))
	return hex.EncodeToString(sum[:])
}
