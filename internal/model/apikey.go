package model

import "time"

// APIKey represents a project-scoped API key used to authenticate requests.
// The raw secret is never stored; only a peppered HMAC-SHA256 hash, a short
// public prefix, and a fingerprint derived from the hash are persisted.
// Records are never deleted: revocation sets RevokedAt and the row stays as
// an audit trail.
type APIKey struct {
	ID             string     `json:"api_key_id" db:"id"`
	ProjectID      string     `json:"project_id" db:"project_id"`
	KeyPrefix      string     `json:"key_prefix" db:"key_prefix"`           // First chars of the raw secret, shown to users
	KeyHash        string     `json:"-" db:"key_hash"`                      // Peppered hash, never expose
	KeyFingerprint string     `json:"key_fingerprint" db:"key_fingerprint"` // Last 8 hash chars, for log correlation
	Name           string     `json:"name,omitempty" db:"name"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Revoked reports whether the key has been revoked. Revocation is monotonic:
// once RevokedAt is set it is never cleared or changed.
func (k *APIKey) Revoked() bool {
	return k.RevokedAt != nil
}

// AuthContext is the per-request identity resolved from a verified API key.
// It lives only for the duration of the request and is never persisted.
type AuthContext struct {
	ProjectID      string `json:"project_id"`
	APIKeyID       string `json:"api_key_id"`
	KeyFingerprint string `json:"key_fingerprint"`
}
