package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/model"
)

// SQLStore is the durable APIKeyStore backend. It speaks sqlite (default),
// postgres, and mysql through sqlx; queries are written once with ?
// placeholders and rebound per driver.
type SQLStore struct {
	db     *sqlx.DB
	hasher *keycrypto.Hasher
	now    func() time.Time
}

// driverName maps the configured driver to the registered database/sql name.
func driverName(driver string) (string, error) {
	switch driver {
	case "sqlite", "":
		return "sqlite", nil
	case "postgres", "pgx":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported store driver %q (want sqlite, postgres, or mysql)", driver)
	}
}

// NewSQLStore connects to the given database and runs migrations.
func NewSQLStore(driver, dsn string, hasher *keycrypto.Hasher) (*SQLStore, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open key store database: %w", err)
	}
	if name == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	}

	s := &SQLStore{db: db, hasher: hasher, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate key store: %w", err)
	}
	return s, nil
}

// OpenSQLite opens the default on-disk sqlite store under dataDir, or an
// in-memory one when dataDir is empty.
func OpenSQLite(dataDir string, hasher *keycrypto.Hasher) (*SQLStore, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "fieldscript.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return NewSQLStore("sqlite", dsn, hasher)
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	const table = `CREATE TABLE IF NOT EXISTS project_api_keys (
		id VARCHAR(36) PRIMARY KEY,
		project_id VARCHAR(128) NOT NULL,
		key_prefix VARCHAR(16) NOT NULL,
		key_hash VARCHAR(64) NOT NULL UNIQUE,
		key_fingerprint VARCHAR(16) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		last_used_at TIMESTAMP NULL,
		revoked_at TIMESTAMP NULL
	)`
	if _, err := s.db.Exec(table); err != nil {
		return fmt.Errorf("create project_api_keys: %w", err)
	}

	// MySQL has no CREATE INDEX IF NOT EXISTS; a duplicate-index error on
	// re-run is harmless there.
	const index = `CREATE INDEX idx_project_api_keys_project ON project_api_keys (project_id)`
	if _, err := s.db.Exec(index); err != nil && !isDuplicateIndexErr(err) {
		return fmt.Errorf("create project index: %w", err)
	}
	return nil
}

func isDuplicateIndexErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

func (s *SQLStore) Create(ctx context.Context, projectID, name string) (string, *model.APIKey, error) {
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

	const q = `INSERT INTO project_api_keys
		(id, project_id, key_prefix, key_hash, key_fingerprint, name, created_at)
		VALUES
		(:id, :project_id, :key_prefix, :key_hash, :key_fingerprint, :name, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, rec); err != nil {
		return "", nil, fmt.Errorf("insert api key: %w", err)
	}
	return raw, rec, nil
}

func (s *SQLStore) List(ctx context.Context, projectID string) ([]model.APIKey, error) {
	var keys []model.APIKey
	q := s.db.Rebind(`SELECT * FROM project_api_keys WHERE project_id = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &keys, q, projectID); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	for i := range keys {
		keys[i].KeyHash = "" // the hash never leaves the store on list
	}
	return keys, nil
}

func (s *SQLStore) Revoke(ctx context.Context, projectID, keyID string) (*model.APIKey, error) {
	// First writer wins: the guarded UPDATE is a no-op when revoked_at is
	// already set, and the follow-up SELECT returns the converged record.
	q := s.db.Rebind(`UPDATE project_api_keys SET revoked_at = ?
		WHERE id = ? AND project_id = ? AND revoked_at IS NULL`)
	if _, err := s.db.ExecContext(ctx, q, s.now().UTC(), keyID, projectID); err != nil {
		return nil, fmt.Errorf("revoke api key: %w", err)
	}

	var rec model.APIKey
	q = s.db.Rebind(`SELECT * FROM project_api_keys WHERE id = ? AND project_id = ?`)
	if err := s.db.GetContext(ctx, &rec, q, keyID, projectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key after revoke: %w", err)
	}
	return &rec, nil
}

func (s *SQLStore) Verify(ctx context.Context, rawKey string) (*model.APIKey, error) {
	hash := s.hasher.Hash(rawKey)

	var rec model.APIKey
	q := s.db.Rebind(`SELECT * FROM project_api_keys WHERE key_hash = ? AND revoked_at IS NULL`)
	if err := s.db.GetContext(ctx, &rec, q, hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("verify api key: %w", err)
	}
	if !keycrypto.Compare(rec.KeyHash, hash) {
		return nil, ErrNotFound
	}

	// Best effort: the advisory last_used_at update must never fail the
	// verification itself.
	now := s.now().UTC()
	uq := s.db.Rebind(`UPDATE project_api_keys SET last_used_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, uq, now, rec.ID); err == nil {
		rec.LastUsedAt = &now
	}
	return &rec, nil
}

func (s *SQLStore) VerifyAllowRevoked(ctx context.Context, rawKey, projectID string) (*model.APIKey, error) {
	hash := s.hasher.Hash(rawKey)

	var rec model.APIKey
	q := s.db.Rebind(`SELECT * FROM project_api_keys WHERE key_hash = ? AND project_id = ?`)
	if err := s.db.GetContext(ctx, &rec, q, hash, projectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("verify api key (allow revoked): %w", err)
	}
	if !keycrypto.Compare(rec.KeyHash, hash) {
		return nil, ErrNotFound
	}
	return &rec, nil
}
