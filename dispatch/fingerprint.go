package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// fingerprint hashes resolved configuration so the instance cache can tell
// when effective settings changed. Map keys marshal in sorted order, so
// equal configs always hash equal.
func fingerprint(cfg map[string]any) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
