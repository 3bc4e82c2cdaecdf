// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitekv

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

var (
	_ storage.KVStore         = (*Store)(nil)
	_ storage.AgentStateStore = (*Store)(nil)
)

// Store is a sqlite-backed KVStore and AgentStateStore. A single
// connection is used throughout, matching sqlite's own single-writer
// model; reads and writes still serialize through database/sql's
// connection pool rather than an in-process mutex.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite database at path and applies
// the schema migration. path may be ":memory:" for a private, in-process
// database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, kernelerr.New(kernelerr.Validation, errors.New("sqlitekv: path required"))
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, kernelerr.New(kernelerr.Internal, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS kv (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (scope, key)
		);`,
		`CREATE TABLE IF NOT EXISTS agent_state (
			scope TEXT NOT NULL,
			agent_key TEXT NOT NULL,
			value BLOB NOT NULL,
			version INTEGER NOT NULL,
			checksum TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (scope, agent_key)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return kernelerr.New(kernelerr.Internal, fmt.Errorf("sqlitekv: migrate: %w", err))
		}
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// Stats reports row counts and total byte size across both tables.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	var kvCount, agentCount, kvBytes, agentBytes sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM kv`)
	if err := row.Scan(&kvCount, &kvBytes); err != nil {
		return storage.Stats{}, kernelerr.New(kernelerr.Internal, err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM agent_state`)
	if err := row.Scan(&agentCount, &agentBytes); err != nil {
		return storage.Stats{}, kernelerr.New(kernelerr.Internal, err)
	}
	return storage.Stats{
		Backend:    "sqlitekv",
		ItemCount:  kvCount.Int64 + agentCount.Int64,
		TotalBytes: kvBytes.Int64 + agentBytes.Int64,
	}, nil
}

// --- KVStore ---

func (s *Store) Get(ctx context.Context, scope types.Scope, key string) ([]byte, error) {
	var value []byte
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE scope = ? AND key = ?`, scope.Prefix(), key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kernelerr.Newf(kernelerr.NotFound, "sqlitekv: key %q not found", key)
		}
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, scope types.Scope, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		scope.Prefix(), key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, scope types.Scope, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ? AND key = ?`, scope.Prefix(), key)
	if err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	return nil
}

func (s *Store) ListKeys(ctx context.Context, scope types.Scope, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv WHERE scope = ? AND key LIKE ?`,
		scope.Prefix(), escapeLike(prefix)+"%")
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, kernelerr.New(kernelerr.Internal, err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")
	return r.Replace(s)
}

// --- AgentStateStore ---

func (s *Store) Save(ctx context.Context, scope types.Scope, agentKey string, data []byte) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, kernelerr.New(kernelerr.Internal, err)
	}
	defer tx.Rollback()

	var current int64
	row := tx.QueryRowContext(ctx, `SELECT version FROM agent_state WHERE scope = ? AND agent_key = ?`,
		scope.Prefix(), agentKey)
	switch err := row.Scan(&current); {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return 0, kernelerr.New(kernelerr.Internal, err)
	}

	next := current + 1
	sum := checksum(data)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO agent_state (scope, agent_key, value, version, checksum, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(scope, agent_key) DO UPDATE SET
		   value = excluded.value, version = excluded.version,
		   checksum = excluded.checksum, updated_at = excluded.updated_at`,
		scope.Prefix(), agentKey, data, next, sum, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, kernelerr.New(kernelerr.Internal, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, kernelerr.New(kernelerr.Internal, err)
	}
	return next, nil
}

func (s *Store) Load(ctx context.Context, scope types.Scope, agentKey string) ([]byte, error) {
	var data []byte
	var storedChecksum string
	row := s.db.QueryRowContext(ctx, `SELECT value, checksum FROM agent_state WHERE scope = ? AND agent_key = ?`,
		scope.Prefix(), agentKey)
	if err := row.Scan(&data, &storedChecksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kernelerr.Newf(kernelerr.NotFound, "sqlitekv: agent state %q not found", agentKey)
		}
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	if checksum(data) != storedChecksum {
		return nil, kernelerr.Newf(kernelerr.Internal, "sqlitekv: checksum mismatch for agent state %q", agentKey)
	}
	return data, nil
}
