package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short, stable, non-reversible tag for an external id.
// It keys per-user Redis state and appears in logs in place of the raw id.
func Fingerprint(externalID string) string {
	sum := blake2b.Sum256([]byte(externalID))
	return hex.EncodeToString(sum[:8])
}
