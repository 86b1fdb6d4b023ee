package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the main configuration for ffg.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Store      StoreConfig      `toml:"store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Access     AccessConfig     `toml:"access"`
	Service    ServiceConfig    `toml:"service"`
	Journal    JournalConfig    `toml:"journal"`
	Import     ImportConfig     `toml:"import"`
}

// StoreConfig selects where the tree snapshot lives.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type        string `toml:"type"`        // "memory", "file", "sqlite" or "s3"
	Slot        string `toml:"slot"`        // snapshot name inside the vault; defaults to "files"
	Compression string `toml:"compression"` // "none" or "zstd"; ignored for sqlite

	// FileSystem-specific fields (only used when Type == "file")
	FSRoot string `toml:"fs_root,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// Optional overrides for S3-compatible services. When the keys are empty the
	// default AWS credential chain is used.
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// EncryptionConfig selects how snapshots are sealed at rest.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// AccessConfig names the local actor and the role it holds.
type AccessConfig struct {
	Actor string `toml:"actor"`
	Role  string `toml:"role"` // "admin", "editor" or "viewer"
}

// ServiceConfig tunes the operation layer.
type ServiceConfig struct {
	Latency string `toml:"latency"` // Go duration, e.g. "500ms"
}

// JournalConfig selects where the operation history is kept.
type JournalConfig struct {
	Type    string `toml:"type"`               // "none", "memory" or "sqlite"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ImportConfig holds settings for importing host files.
type ImportConfig struct {
	Ignore []string `toml:"ignore"`
}

// DefaultSlot is the snapshot name used when none is configured.
const DefaultSlot = "files"

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// NewConfig creates a new Config rooted at baseDir with working defaults:
// a compressed snapshot in a filesystem vault and a SQLite journal.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type:        "file",
			Slot:        DefaultSlot,
			Compression: "zstd",
			FSRoot:      filepath.Join(baseDir, "vault"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "ffg.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "ffg.key"),
		},
		Access:  AccessConfig{Actor: "local", Role: "admin"},
		Service: ServiceConfig{Latency: "0s"},
		Journal: JournalConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Import:  ImportConfig{Ignore: []string{".git", "**/node_modules", "**/.DS_Store"}},
	}
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseDir, validation.Required),
		validation.Field(&c.Store),
		validation.Field(&c.Encryption),
		validation.Field(&c.Access),
		validation.Field(&c.Service),
		validation.Field(&c.Journal),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In("memory", "file", "sqlite", "s3")),
		validation.Field(&s.Slot, validation.Match(slotPattern).Error("must be letters, digits, '-', '_' or '.'")),
		validation.Field(&s.Compression, validation.In("none", "zstd")),
		validation.Field(&s.FSRoot, validation.When(s.Type == "file", validation.Required)),
		validation.Field(&s.DataDir, validation.When(s.Type == "sqlite", validation.Required)),
		validation.Field(&s.S3Bucket, validation.When(s.Type == "s3", validation.Required)),
		validation.Field(&s.S3SecretKey, validation.When(s.S3AccessKey != "", validation.Required)),
	)
}

func (e EncryptionConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.In("none", "age", "test")),
		validation.Field(&e.PublicKeyPath, validation.When(e.Type == "age", validation.Required)),
		validation.Field(&e.PrivateKeyPath, validation.When(e.Type == "age", validation.Required)),
	)
}

func (a AccessConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Role, validation.Required, validation.In("admin", "editor", "viewer")),
	)
}

func (s ServiceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Latency, validation.By(func(value interface{}) error {
			d, err := parseLatency(value.(string))
			if err != nil {
				return err
			}
			if d < 0 {
				return fmt.Errorf("must not be negative")
			}
			return nil
		})),
	)
}

func (j JournalConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Type, validation.In("none", "memory", "sqlite")),
		validation.Field(&j.DataDir, validation.When(j.Type == "sqlite", validation.Required)),
	)
}

// LatencyDuration returns the parsed latency; an empty value means none.
func (s ServiceConfig) LatencyDuration() time.Duration {
	d, _ := parseLatency(s.Latency)
	return d
}

func parseLatency(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Store.Slot == "" {
		cfg.Store.Slot = DefaultSlot
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path and validates it.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
