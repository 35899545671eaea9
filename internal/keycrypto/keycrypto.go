// Package keycrypto generates and hashes raw API key secrets. Hashing is a
// keyed HMAC-SHA256 over the raw secret using a process-wide pepper, so a
// leaked database cannot be brute-forced offline without the pepper.
package keycrypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	// KeyTag is the recognizable prefix on every raw secret.
	KeyTag = "fs_"
	// KeyBytes is the entropy budget of a raw secret. At 32 random bytes no
	// uniqueness check against existing records is needed.
	KeyBytes = 32
	// PrefixLen is how many leading characters of the raw secret are stored
	// as the public prefix (includes the tag).
	PrefixLen = 8
	// FingerprintLen is how many trailing hash characters form the
	// fingerprint used for log correlation.
	FingerprintLen = 8

	// testPepper is the deterministic fallback used only when the hasher is
	// constructed with the explicit test-mode flag.
	testPepper = "test_pepper"
)

// ErrPepperRequired is returned by New when no pepper is configured outside
// test mode. This is a startup precondition, not a per-request error.
var ErrPepperRequired = errors.New("api key pepper is required; set auth.pepper or FIELDSCRIPT_AUTH_PEPPER")

// Hasher computes peppered key hashes. Construct one at startup and inject
// it wherever hashing is needed.
type Hasher struct {
	pepper []byte
}

// New builds a Hasher from the configured pepper. An empty pepper is fatal
// unless testFallback is set, in which case a fixed test pepper is used.
func New(pepper string, testFallback bool) (*Hasher, error) {
	if pepper == "" {
		if !testFallback {
			return nil, ErrPepperRequired
		}
		pepper = testPepper
	}
	return &Hasher{pepper: []byte(pepper)}, nil
}

// Generate returns a new high-entropy raw secret: the fixed tag followed by
// KeyBytes of cryptographic randomness, URL-safe encoded without padding.
func Generate() (string, error) {
	buf := make([]byte, KeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return KeyTag + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the hex-encoded HMAC-SHA256 of the raw secret.
func (h *Hasher) Hash(raw string) string {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// Compare reports whether two hashes are equal in constant time.
func Compare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// Prefix returns the first n characters of the raw secret, the public
// identifier shown to users.
func Prefix(raw string, n int) string {
	if n > len(raw) {
		n = len(raw)
	}
	return raw[:n]
}

// Fingerprint returns the last FingerprintLen characters of a hash. Unlike
// the prefix it derives from the hash, not the secret, so it is safe to log.
func Fingerprint(hash string) string {
	if len(hash) <= FingerprintLen {
		return hash
	}
	return hash[len(hash)-FingerprintLen:]
}
