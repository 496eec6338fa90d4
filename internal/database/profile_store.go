package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
)

// ErrProfileNotFound is returned by a ProfileStore that has no document for the user
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore keeps one opaque JSON document per user
type ProfileStore interface {
	Load(ctx context.Context, userID int64) ([]byte, error)
	Store(ctx context.Context, userID int64, data []byte) error
}

// FileStore keeps each profile in dir/user_<id>.json
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create users directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("user_%d.json", userID))
}

// Load reads the profile document of a user
func (s *FileStore) Load(ctx context.Context, userID int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return data, nil
}

// Store replaces the profile document. The write goes through a temp file
// so a crash never leaves a truncated profile behind.
func (s *FileStore) Store(ctx context.Context, userID int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("user_%d_*.tmp", userID))
	if err != nil {
		return fmt.Errorf("failed to create temp profile file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close profile file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(userID)); err != nil {
		return fmt.Errorf("failed to replace profile file: %w", err)
	}
	return nil
}

// SQLStore keeps profiles in the user_profiles table
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps a connection opened with Connect
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Load reads the profile document of a user
func (s *SQLStore) Load(ctx context.Context, userID int64) ([]byte, error) {
	var data string
	query := s.db.Rebind("SELECT data FROM user_profiles WHERE user_id = ?")
	err := s.db.GetContext(ctx, &data, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return []byte(data), nil
}

// Store upserts the profile document
func (s *SQLStore) Store(ctx context.Context, userID int64, data []byte) error {
	query := s.db.Rebind(`
		INSERT INTO user_profiles (user_id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := s.db.ExecContext(ctx, query, userID, string(data)); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}
