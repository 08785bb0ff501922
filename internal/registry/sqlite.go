package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stakewatch/stakewatch/internal/model"
)

const profileSchema = `
CREATE TABLE IF NOT EXISTS group_profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	profile TEXT NOT NULL,
	synthesized BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_group_profiles_name ON group_profiles(name);
`

// SQLiteStore persists profiles as JSON blobs in a local SQLite database.
// The profile document is opaque to the schema on purpose: the canonical
// schema lives with the external persistence service.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initialises) the profile database at
// dbPath. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile db: %w", err)
	}
	if _, err := db.Exec(profileSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply profile schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.StakeholderGroup, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM group_profiles WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", id, err)
	}
	var profile model.StakeholderGroup
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return &profile, nil
}

func (s *SQLiteStore) Put(ctx context.Context, profile *model.StakeholderGroup) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO group_profiles (id, name, profile, synthesized, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			profile = excluded.profile,
			synthesized = excluded.synthesized,
			updated_at = excluded.updated_at`,
		profile.ID, profile.Name, string(doc), profile.Synthesized, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store profile %s: %w", profile.ID, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*model.StakeholderGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile FROM group_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []*model.StakeholderGroup
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var profile model.StakeholderGroup
		if err := json.Unmarshal([]byte(doc), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile row: %w", err)
		}
		out = append(out, &profile)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
