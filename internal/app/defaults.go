package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable ffg reads.
const envPrefix = "ffg"

// Env holds the environment overrides:
//   - FFG_CONFIG_PATH: config file location (default: ~/.config/ffg.toml)
//   - FFG_HOME: base directory for ffg data (default: ~/.local/share/ffg)
//   - FFG_PASSPHRASE: unlocks an encrypted snapshot without prompting
type Env struct {
	ConfigPath string `split_words:"true"`
	Home       string
	Passphrase string
}

// LoadEnv reads the FFG_ variables.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// GetDefaults returns application default paths, checking environment variables first.
func GetDefaults() (map[string]string, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	configPath, err := getConfigPath(env)
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir(env)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func getConfigPath(env Env) (string, error) {
	if env.ConfigPath != "" {
		return env.ConfigPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ffg.toml"), nil
}

func getBaseDir(env Env) (string, error) {
	if env.Home != "" {
		return env.Home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ffg"), nil
}
