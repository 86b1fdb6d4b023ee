package database

import (
	"fmt"
	"os"
	"path/filepath"

	"ffg-go/internal/config"
	"ffg-go/internal/ffg"
)

// FileName is the database file created inside a data directory.
const FileName = "ffg.db"

// OpenInDir opens (creating if needed) the database file inside dataDir.
func OpenInDir(dataDir string) (*SQLiteDatabase, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data_dir required for sqlite database")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewSQLiteDatabase(filepath.Join(dataDir, FileName))
}

// NewPersisterFromConfig creates the SQLite tree persister for a store of
// type "sqlite".
func NewPersisterFromConfig(cfg config.StoreConfig) (*SQLiteDatabase, error) {
	if cfg.Type != "sqlite" {
		return nil, fmt.Errorf("store type %q is not backed by the database", cfg.Type)
	}
	return OpenInDir(cfg.DataDir)
}

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type. Journals backed by a database also implement io.Closer.
func NewJournalFromConfig(cfg config.JournalConfig) (ffg.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return ffg.NopJournal{}, nil
	case "memory", "sqlite":
		var (
			db  *SQLiteDatabase
			err error
		)
		if cfg.Type == "memory" {
			db, err = NewSQLiteDatabase(":memory:")
		} else {
			db, err = OpenInDir(cfg.DataDir)
		}
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
