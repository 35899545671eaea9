package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fieldscript/fieldscript/internal/keycrypto"
)

func testHasher(t *testing.T) *keycrypto.Hasher {
	t.Helper()
	h, err := keycrypto.New("", true)
	if err != nil {
		t.Fatalf("keycrypto.New: %v", err)
	}
	return h
}

// Both backends share one contract; every test below runs against each.
func eachBackend(t *testing.T, fn func(t *testing.T, s APIKeyStore)) {
	t.Helper()
	h := testHasher(t)

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore(h))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite("", h)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestCreateReturnsRawSecretOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, s APIKeyStore) {
		ctx := context.Background()
		raw, rec, err := s.Create(ctx, "proj-a", "ci")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !strings.HasPrefix(raw, "fs_") {
			t.Errorf("raw secret %q missing fs_ tag", raw)
		}
		if rec.KeyPrefix != raw[:8] {
			t.Errorf("prefix = %q, want first 8 chars of secret", rec.KeyPrefix)
		}
		if rec.KeyHash == "" || strings.Contains(rec.KeyHash, raw) {
			t.Error("record must carry a hash, never the raw secret")
		}
		if len(rec.KeyFingerprint) != 8 || !strings.HasSuffix(rec.KeyHash, rec.KeyFingerprint) {
			t.Errorf("fingerprint %q is not the hash tail", rec.KeyFingerprint)
		}
		if rec.Name != "ci" || rec.ProjectID != "proj-a" {
			t.Errorf("record fields: %+v", rec)
		}

		// List must never expose the hash or raw secret.
		keys, err := s.List(ctx, "proj-a")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(keys) != 1 {
			t.Fatalf("List returned %d keys, want 1", len(keys))
		}
		if keys[0].KeyHash != "" {
			t.Error("List leaked the key hash")
		}
	})
}

func TestVerifyRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, s APIKeyStore) {
		ctx := context.Background()
		raw, rec, err := s.Create(ctx, "proj-a", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := s.Verify(ctx, raw)
		if err != nil {
			t.Fatalf("Verify of freshly created key: %v", err)
		}
		if got.ID != rec.ID {
			t.Errorf("Verify resolved id %q, want %q", got.ID, rec.ID)
		}
		if got.LastUsedAt == nil {
			t.Error("Verify did not advance last_used_at")
		}

		// A distinct secret never verifies.
		other, err := keycrypto.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if _, err := s.Verify(ctx, other); err != ErrNotFound {
			t.Errorf("Verify of unknown secret: err = %v, want ErrNotFound", err)
		}
	})
}

func TestVerifyExcludesRevoked(t *testing.T) {
	eachBackend(t, func(t *testing.T, s APIKeyStore) {
		ctx := context.Background()
		raw, rec, err := s.Create(ctx, "proj-a", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := s.Revoke(ctx, "proj-a", rec.ID); err != nil {
			t.Fatalf("Revoke: %v", err)
		}

		if _, err := s.Verify(ctx, raw); err != ErrNotFound {
			t.Errorf("Verify of revoked key: err = %v, want ErrNotFound", err)
		}

		// The revoke endpoint's auth path still resolves the revoked key for
		// its own project.
		got, err := s.VerifyAllowRevoked(ctx, raw, "proj-a")
		if err != nil {
			t.Fatalf("VerifyAllowRevoked: %v", err)
		}
		if got.RevokedAt == nil {
			t.Error("VerifyAllowRevoked returned a record without revoked_at")
		}
		// But never for another project.
		if _, err := s.VerifyAllowRevoked(ctx, raw, "proj-b"); err != ErrNotFound {
			t.Errorf("VerifyAllowRevoked cross-project: err = %v, want ErrNotFound", err)
		}
	})
}

func TestRevokeIdempotent(t *testing.T) {
	eachBackend(t, func(t *testing.T, s APIKeyStore) {
		ctx := context.Background()
		_, rec, err := s.Create(ctx, "proj-a", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		first, err := s.Revoke(ctx, "proj-a", rec.ID)
		if err != nil {
			t.Fatalf("first Revoke: %v", err)
		}
		if first.RevokedAt == nil {
			t.Fatal("first Revoke did not set revoked_at")
		}

		second, err := s.Revoke(ctx, "proj-a", rec.ID)
		if err != nil {
			t.Fatalf("second Revoke: %v", err)
		}
		if second.RevokedAt == nil || !second.RevokedAt.Equal(*first.RevokedAt) {
			t.Errorf("second Revoke timestamp %v, want original %v", second.RevokedAt, first.RevokedAt)
		}
	})
}

func TestRevokeCrossProjectIsNotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, s APIKeyStore) {
		ctx := context.Background()
		_, rec, err := s.Create(ctx, "proj-a", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := s.Revoke(ctx, "proj-b", rec.ID); err != ErrNotFound {
			t.Errorf("cross-project Revoke: err = %v, want ErrNotFound", err)
		}
		if _, err := s.Revoke(ctx, "proj-a", "no-such-id"); err != ErrNotFound {
			t.Errorf("unknown id Revoke: err = %v, want ErrNotFound", err)
		}
	})
}

func TestListNewestFirstAndScoped(t *testing.T) {
	h := testHasher(t)
	s := NewMemoryStore(h)
	// Pin the clock so ordering is deterministic.
	base := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	step := 0
	s.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		_, rec, err := s.Create(ctx, "proj-a", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, rec.ID)
	}
	if _, _, err := s.Create(ctx, "proj-b", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	keys, err := s.List(ctx, "proj-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("List returned %d keys, want 3", len(keys))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if keys[i].ID != want {
			t.Errorf("keys[%d].ID = %q, want %q (newest first)", i, keys[i].ID, want)
		}
	}
}
