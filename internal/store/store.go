// Package store persists project API key records. The contract is identical
// across backends: callers depend on APIKeyStore only and may swap the
// in-memory implementation for the SQL one without behavior changes.
package store

import (
	"context"
	"errors"

	"github.com/fieldscript/fieldscript/internal/model"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the caller. Cross-project ids are deliberately indistinguishable
// from nonexistent ones.
var ErrNotFound = errors.New("not found")

// APIKeyStore is the persistence contract for project API keys.
//
// Create is the only operation that ever returns the raw secret. Revoke is
// idempotent: the first call sets the revocation timestamp and every later
// call returns that same record unchanged. Verify excludes revoked keys and
// advances last_used_at on a best-effort basis; a failed timestamp update
// never fails the verification itself.
//
// VerifyAllowRevoked exists solely for the revoke endpoint's auth check: a
// key's owner must be able to re-revoke an already-revoked key and still get
// the idempotent success. No other caller should use it.
type APIKeyStore interface {
	Create(ctx context.Context, projectID, name string) (rawKey string, rec *model.APIKey, err error)
	List(ctx context.Context, projectID string) ([]model.APIKey, error)
	Revoke(ctx context.Context, projectID, keyID string) (*model.APIKey, error)
	Verify(ctx context.Context, rawKey string) (*model.APIKey, error)
	VerifyAllowRevoked(ctx context.Context, rawKey, projectID string) (*model.APIKey, error)
}
