package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ffg-go/internal/database/migrations"
	"ffg-go/internal/ffg"
	"ffg-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase keeps the tree one row per record and the operation
// journal in an append-only table. It implements ffg.Persister and
// ffg.Journal.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var (
	_ ffg.Persister = (*SQLiteDatabase)(nil)
	_ ffg.Journal   = (*SQLiteDatabase)(nil)
)

// NewSQLiteDatabase opens the database at path and applies any pending
// migrations. path can be a file path or ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already migrated connection.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection.
// An in-memory database is pinned to one connection, since every new
// connection would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Tree snapshot

const selectRecords = `
SELECT id, name, kind, size, modified_at, content, parent_id, is_encrypted,
       permissions, owner, last_accessed_by, version, original_id
FROM records
ORDER BY position`

const insertRecord = `
INSERT INTO records (id, position, name, kind, size, modified_at, content, parent_id,
                     is_encrypted, permissions, owner, last_accessed_by, version, original_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Load reads the saved tree. It returns ffg.ErrNoSnapshot if Save was never
// called.
func (s *SQLiteDatabase) Load(ctx context.Context) (*ffg.Tree, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, "SELECT version FROM tree_meta WHERE id = 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ffg.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading tree version: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, selectRecords)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []*model.FileRecord
	for rows.Next() {
		var (
			r        model.FileRecord
			kind     string
			content  sql.NullString
			parentID sql.NullString
		)
		err := rows.Scan(&r.ID, &r.Name, &kind, &r.Size, &r.ModifiedAt, &content, &parentID,
			&r.IsEncrypted, &r.Permissions, &r.Owner, &r.LastAccessedBy, &r.Version, &r.OriginalID)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Kind = model.Kind(kind)
		if content.Valid {
			r.Content = model.StringPtr(content.String)
		}
		if parentID.Valid {
			r.ParentID = parentID.String
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	tree, err := ffg.NewVersionedTree(records, version)
	if err != nil {
		return nil, fmt.Errorf("rebuilding tree: %w", err)
	}
	return tree, nil
}

// Save replaces every stored record with the tree's records in a single
// transaction.
func (s *SQLiteDatabase) Save(ctx context.Context, tree *ffg.Tree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range tree.Records() {
		var content, parentID sql.NullString
		if r.Content != nil {
			content = sql.NullString{String: *r.Content, Valid: true}
		}
		if r.ParentID != model.NoParent {
			parentID = sql.NullString{String: r.ParentID, Valid: true}
		}
		_, err := stmt.ExecContext(ctx, r.ID, i, r.Name, string(r.Kind), r.Size, r.ModifiedAt.UTC(),
			content, parentID, r.IsEncrypted, r.Permissions, r.Owner, r.LastAccessedBy, r.Version, r.OriginalID)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tree_meta (id, version, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version, saved_at = excluded.saved_at`,
		tree.Version(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing tree version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Journal

// Record appends an operation to the journal.
func (s *SQLiteDatabase) Record(ctx context.Context, entry ffg.JournalEntry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO operations (at, operation, detail) VALUES (?, ?, ?)",
		entry.At.UTC(), entry.Operation, entry.Detail)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	return nil
}

// List returns up to limit operations, newest first. A limit <= 0 returns
// all of them.
func (s *SQLiteDatabase) List(ctx context.Context, limit int) ([]ffg.JournalEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, at, operation, detail FROM operations ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var entries []ffg.JournalEntry
	for rows.Next() {
		var e ffg.JournalEntry
		if err := rows.Scan(&e.ID, &e.At, &e.Operation, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return entries, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
