package keycrypto

import (
	"strings"
	"testing"
)

func TestNewRequiresPepper(t *testing.T) {
	if _, err := New("", false); err != ErrPepperRequired {
		t.Errorf("New with empty pepper: err = %v, want ErrPepperRequired", err)
	}
	if _, err := New("", true); err != nil {
		t.Errorf("New with test fallback: err = %v, want nil", err)
	}
	if _, err := New("s3cret", false); err != nil {
		t.Errorf("New with pepper: err = %v, want nil", err)
	}
}

func TestGenerateFormat(t *testing.T) {
	raw, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(raw, KeyTag) {
		t.Errorf("raw key %q does not start with %q", raw, KeyTag)
	}
	// 32 bytes base64 raw-url encoded is 43 chars plus the tag.
	if len(raw) != len(KeyTag)+43 {
		t.Errorf("raw key length = %d, want %d", len(raw), len(KeyTag)+43)
	}
	if strings.ContainsAny(raw, "=+/") {
		t.Errorf("raw key %q contains non-URL-safe characters", raw)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[raw] {
			t.Fatalf("duplicate key generated: %q", raw)
		}
		seen[raw] = true
	}
}

func TestHashDeterministicPerPepper(t *testing.T) {
	h1, _ := New("pepper-one", false)
	h2, _ := New("pepper-two", false)

	a := h1.Hash("fs_example")
	b := h1.Hash("fs_example")
	c := h2.Hash("fs_example")

	if a != b {
		t.Error("same pepper, same input: hashes differ")
	}
	if a == c {
		t.Error("different peppers produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestCompare(t *testing.T) {
	h, _ := New("", true)
	a := h.Hash("fs_one")
	b := h.Hash("fs_two")

	if !Compare(a, a) {
		t.Error("Compare(a, a) = false")
	}
	if Compare(a, b) {
		t.Error("Compare of distinct hashes = true")
	}
}

func TestPrefixAndFingerprint(t *testing.T) {
	if got := Prefix("fs_abcdefgh", 8); got != "fs_abcde" {
		t.Errorf("Prefix = %q, want %q", got, "fs_abcde")
	}
	if got := Prefix("fs_a", 8); got != "fs_a" {
		t.Errorf("Prefix of short key = %q, want %q", got, "fs_a")
	}

	h, _ := New("", true)
	hash := h.Hash("fs_anything")
	fp := Fingerprint(hash)
	if len(fp) != FingerprintLen {
		t.Errorf("fingerprint length = %d, want %d", len(fp), FingerprintLen)
	}
	if !strings.HasSuffix(hash, fp) {
		t.Errorf("fingerprint %q is not a suffix of the hash", fp)
	}
	// Fingerprint must differ from the prefix: one derives from the hash,
	// the other from the secret.
	if fp == Prefix("fs_anything", PrefixLen) {
		t.Error("fingerprint collided with prefix")
	}
}
