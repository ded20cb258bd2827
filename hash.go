package mwalimu

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the deterministic cache key for a request from its
// mode and its normalized parameter (chapter identifier or question text).
// Two requests with identical normalized inputs always map to the same key.
func Fingerprint(mode Mode, param string) string {
	material := string(mode) + "|" + strings.TrimSpace(param)
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}
