package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/model"
)

// MemoryStore is the in-memory APIKeyStore backend, used in tests and for
// single-process dev runs. All state is owned by the instance; there are no
// package-level registries.
type MemoryStore struct {
	hasher *keycrypto.Hasher

	mu   sync.Mutex
	keys map[string]*model.APIKey // by key id
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(hasher *keycrypto.Hasher) *MemoryStore {
	return &MemoryStore{
		hasher: hasher,
		keys:   make(map[string]*model.APIKey),
		now:    time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, projectID, name string) (string, *model.APIKey, error) {
	raw, err := keycrypto.Generate()
	if err != nil {
		return "", nil, err
	}
	hash := s.hasher.Hash(raw)
	rec := &model.APIKey{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		KeyPrefix:      keycrypto.Prefix(raw, keycrypto.PrefixLen),
		KeyHash:        hash,
		KeyFingerprint: keycrypto.Fingerprint(hash),
		Name:           name,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	s.keys[rec.ID] = rec
	s.mu.Unlock()

	return raw, cloned(rec), nil
}

func (s *MemoryStore) List(ctx context.Context, projectID string) ([]model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.APIKey
	for _, rec := range s.keys {
		if rec.ProjectID != projectID {
			continue
		}
		c := *cloned(rec)
		c.KeyHash = "" // the hash never leaves the store on list
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, projectID, keyID string) (*model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.keys[keyID]
	if !ok || rec.ProjectID != projectID {
		return nil, ErrNotFound
	}
	if rec.RevokedAt == nil {
		t := s.now().UTC()
		rec.RevokedAt = &t
	}
	return cloned(rec), nil
}

func (s *MemoryStore) Verify(ctx context.Context, rawKey string) (*model.APIKey, error) {
	hash := s.hasher.Hash(rawKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.keys {
		if rec.RevokedAt != nil {
			continue
		}
		if keycrypto.Compare(rec.KeyHash, hash) {
			t := s.now().UTC()
			rec.LastUsedAt = &t
			return cloned(rec), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) VerifyAllowRevoked(ctx context.Context, rawKey, projectID string) (*model.APIKey, error) {
	hash := s.hasher.Hash(rawKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.keys {
		if rec.ProjectID != projectID {
			continue
		}
		if keycrypto.Compare(rec.KeyHash, hash) {
			return cloned(rec), nil
		}
	}
	return nil, ErrNotFound
}

// cloned copies a record so callers never share memory with store state.
func cloned(rec *model.APIKey) *model.APIKey {
	c := *rec
	if rec.LastUsedAt != nil {
		t := *rec.LastUsedAt
		c.LastUsedAt = &t
	}
	if rec.RevokedAt != nil {
		t := *rec.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}
