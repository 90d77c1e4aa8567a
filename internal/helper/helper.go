package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash8 returns a short stable digest, used to log emails without the address itself.
func Hash8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
