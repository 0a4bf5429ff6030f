package article

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies an article for deduplication. Fields are hashed
// exactly as given, so titles differing only in case or spacing do not collide.
func Fingerprint(source, url, title string) string {
	hash := sha256.Sum256([]byte(source + "-" + url + "-" + title))
	return hex.EncodeToString(hash[:])
}
