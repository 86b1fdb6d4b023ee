package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"ffg-go/internal/config"
	"ffg-go/internal/database"
	"ffg-go/internal/encryption"
	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
	"ffg-go/internal/snapshot"
	"ffg-go/internal/vault"
)

// ErrEncryptionNotSetUp is returned when encryption is configured but no key
// pair exists yet.
var ErrEncryptionNotSetUp = errors.New("encryption is configured but not set up: run 'ffg config init' or 'ffg keys init'")

// Options carries the seams a caller may replace. Zero values select the
// production implementations.
type Options struct {
	Notifier   ffg.Notifier
	Passphrase string // unlocks an encrypted snapshot
	Clock      ffg.Clock
	IDs        ffg.IDGenerator
	LogEcho    io.Writer // mirror of the log file, e.g. os.Stderr
	LogLevel   slog.Level
}

// FFGApp is the application layer between the CLI and FFGService.
// It constructs all dependencies from config and releases them on Close.
type FFGApp struct {
	cfg     *config.Config
	service *ffg.FFGService
	store   *ffg.TreeStore
	gate    *ffg.AccessGate
	journal ffg.Journal
	logger  *slog.Logger
	clock   ffg.Clock
	cmd     *Command
	closers []io.Closer
	logFile *os.File
}

// NewFFGApp creates a fully wired FFGApp from the given config and loads the
// tree, seeding it on first use. cmd identifies the CLI command being run.
// The caller must call Close when done.
//
// An encrypted snapshot opened without a passphrase fails with an error
// matching snapshot.ErrLocked; a wrong passphrase matches
// encryption.ErrWrongPassphrase.
func NewFFGApp(ctx context.Context, cfg *config.Config, cmd *Command, opts Options) (*FFGApp, error) {
	if opts.Notifier == nil {
		opts.Notifier = ffg.NopNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = ffg.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = ffg.UUIDGenerator{}
	}

	logger, logFile, err := newLogger(cfg.LogDir, cmd.ID, opts.LogLevel, opts.LogEcho)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &FFGApp{
		cfg:     cfg,
		logger:  logger,
		clock:   opts.Clock,
		cmd:     cmd,
		logFile: logFile,
	}
	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	persister, sqliteStore, err := a.newPersister(ctx, opts.Passphrase)
	if err != nil {
		return nil, err
	}

	journal, err := a.newJournal(sqliteStore)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	a.journal = journal

	adapter := &slogAdapter{l: logger}
	a.store = ffg.NewTreeStore(persister, adapter)
	err = a.store.Open(ctx, func() *ffg.Tree { return ffg.SeedTree(opts.Clock) })
	switch {
	case errors.Is(err, ffg.ErrPersist):
		// The seed tree is installed; the next successful save will store it.
		logger.Warn("saving seed tree failed", "error", err)
	case err != nil:
		return nil, fmt.Errorf("opening tree: %w", err)
	}

	a.gate = ffg.NewAccessGate(ffg.DefaultRoles(), ffg.Actor{Name: cfg.Access.Actor, RoleID: cfg.Access.Role})
	a.service = ffg.NewFFGService(a.store, a.gate, opts.Notifier, journal, adapter, opts.Clock, opts.IDs, cfg.Service.LatencyDuration())

	logger.Info("command started", "command", cmd.Name, "args", cmd.Args, "store", cfg.Store.Type, "role", cfg.Access.Role)
	ok = true
	return a, nil
}

// newPersister builds the tree persister for the configured store. For the
// sqlite store it also returns the database so the journal can share it.
func (a *FFGApp) newPersister(ctx context.Context, passphrase string) (ffg.Persister, *database.SQLiteDatabase, error) {
	if a.cfg.Store.Type == "sqlite" {
		db, err := database.NewPersisterFromConfig(a.cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("creating database: %w", err)
		}
		a.closers = append(a.closers, db)
		if err := db.CheckMigrations(); err != nil {
			return nil, nil, fmt.Errorf("database schema out of date: %w", err)
		}
		return db, db, nil
	}

	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(ctx); err != nil {
		return nil, nil, fmt.Errorf("vault not usable: %w", err)
	}

	opts := []snapshot.Option{snapshot.WithClock(a.clock)}
	if a.cfg.Store.Compression == "zstd" {
		opts = append(opts, snapshot.WithCompression())
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return nil, nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil {
		if !enc.IsConfigured() {
			return nil, nil, ErrEncryptionNotSetUp
		}
		var dec snapshot.Decrypter
		if passphrase != "" {
			dec, err = enc.Unlock(passphrase)
			if err != nil {
				return nil, nil, fmt.Errorf("unlocking snapshot key: %w", err)
			}
		}
		opts = append(opts, snapshot.WithEncryption(enc, dec))
	}

	return snapshot.NewVaultPersister(v, a.cfg.Store.Slot, opts...), nil, nil
}

// newJournal opens the configured journal, reusing the store database when
// both live in the same data directory.
func (a *FFGApp) newJournal(storeDB *database.SQLiteDatabase) (ffg.Journal, error) {
	jc := a.cfg.Journal
	if storeDB != nil && jc.Type == "sqlite" && filepath.Clean(jc.DataDir) == filepath.Clean(a.cfg.Store.DataDir) {
		return storeDB, nil
	}

	j, err := database.NewJournalFromConfig(jc)
	if err != nil {
		return nil, err
	}
	if c, ok := j.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return j, nil
}

// Service returns the operation layer.
func (a *FFGApp) Service() *ffg.FFGService { return a.service }

// Config returns the configuration the app was built from.
func (a *FFGApp) Config() *config.Config { return a.cfg }

// Roles lists the roles known to the access gate.
func (a *FFGApp) Roles() []model.Role { return a.gate.Roles() }

// Actor returns the configured actor.
func (a *FFGApp) Actor() ffg.Actor { return a.gate.Actor() }

// History returns up to limit journal entries, newest first.
func (a *FFGApp) History(ctx context.Context, limit int) ([]ffg.JournalEntry, error) {
	entries, err := a.journal.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// Fail marks the running command as failed; the status is logged on Close.
func (a *FFGApp) Fail() { a.cmd.Fail() }

// Close logs the command outcome and closes every resource.
func (a *FFGApp) Close() error {
	a.logger.Info("command finished",
		"command", a.cmd.Name,
		"status", a.cmd.Status,
		"elapsed", a.cmd.Elapsed(a.clock.Now()),
		"version", a.store.Snapshot().Version(),
	)
	return a.closeResources()
}

func (a *FFGApp) closeResources() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing: %w", err)
		}
	}
	a.closers = nil

	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	return firstErr
}

// SetupEncryption generates the snapshot key pair for an age-encrypted
// store. It is a no-op when encryption is disabled.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return nil
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}
