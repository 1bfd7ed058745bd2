package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// Sign computes the lowercase hex HMAC-SHA1 of message under key.
func Sign(message, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	_, _ = mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
