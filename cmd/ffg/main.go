package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ffg-go/internal/app"
	"ffg-go/internal/config"
	"ffg-go/internal/ffg"
	"ffg-go/internal/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var verbose bool

// printNotification is the CLI's notification channel: one line per toast.
func printNotification(n ffg.Notification) {
	fmt.Printf("[%s] %s: %s\n", n.Level, n.Title, n.Message)
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an FFGApp. The caller must defer app.Close().
// A locked snapshot is retried once with a prompted passphrase.
func newApp(ctx context.Context, name string, args []string) (*app.FFGApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	env, err := app.LoadEnv()
	if err != nil {
		return nil, err
	}

	opts := app.Options{
		Notifier:   ffg.NotifierFunc(printNotification),
		Passphrase: env.Passphrase,
		LogLevel:   slog.LevelInfo,
	}
	if verbose {
		opts.LogEcho = os.Stderr
		opts.LogLevel = slog.LevelDebug
	}

	command := app.NewCommand(name, strings.Join(args, " "), time.Now())
	a, err := app.NewFFGApp(ctx, cfg, command, opts)
	if errors.Is(err, snapshot.ErrLocked) && opts.Passphrase == "" && isTerminal() {
		opts.Passphrase, err = readPassphrase("Snapshot passphrase: ")
		if err != nil {
			return nil, err
		}
		a, err = app.NewFFGApp(ctx, cfg, command, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp adapts a command body that needs a wired app to cobra's RunE.
func withApp(name string, run func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, name, args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := run(ctx, cmd, a, args); err != nil {
			a.Fail()
			return err
		}
		return nil
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassphrase prompts on stderr and reads without echo. When stdin is not
// a terminal it reads one line instead.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !isTerminal() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// readNewPassphrase prompts twice and requires both entries to match.
func readNewPassphrase(prompt string) (string, error) {
	first, err := readPassphrase(prompt)
	if err != nil {
		return "", err
	}
	if !isTerminal() {
		return first, nil
	}
	second, err := readPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	return first, nil
}

var rootCmd = &cobra.Command{
	Use:          "ffg",
	Short:        "File Forge Guardian: a virtual file store",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _ := cmd.Flags().GetString("store")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		switch store {
		case "file":
		case "sqlite":
			cfg.Store.Type = "sqlite"
			cfg.Store.DataDir = cfg.Journal.DataDir
			cfg.Store.FSRoot = ""
		case "memory":
			cfg.Store.Type = "memory"
			cfg.Store.FSRoot = ""
		default:
			return fmt.Errorf("unsupported store %q for init (file, sqlite or memory; edit the file for s3)", store)
		}
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)

		if encrypt {
			if err := setupKeys(cfg); err != nil {
				return err
			}
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Store:       %s (slot %q, compression %s)\n", cfg.Store.Type, cfg.Store.Slot, cfg.Store.Compression)
		switch cfg.Store.Type {
		case "file":
			fmt.Printf("  Root:      %s\n", cfg.Store.FSRoot)
		case "sqlite":
			fmt.Printf("  Data Dir:  %s\n", cfg.Store.DataDir)
		case "s3":
			fmt.Printf("  Bucket:    %s/%s (%s)\n", cfg.Store.S3Bucket, cfg.Store.S3Prefix, cfg.Store.S3Region)
		}
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		fmt.Printf("Actor:       %s (%s)\n", cfg.Access.Actor, cfg.Access.Role)
		fmt.Printf("Latency:     %s\n", cfg.Service.LatencyDuration())
		fmt.Printf("Journal:     %s\n", cfg.Journal.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Encryption.Type == "none" || cfg.Encryption.Type == "" {
			return fmt.Errorf("encryption is disabled in the config")
		}
		return setupKeys(cfg)
	},
}

func setupKeys(cfg *config.Config) error {
	passphrase, err := readNewPassphrase("New snapshot passphrase: ")
	if err != nil {
		return err
	}
	if err := app.SetupEncryption(cfg, passphrase); err != nil {
		return err
	}
	fmt.Printf("Snapshot key pair written to %s\n", cfg.Encryption.PublicKeyPath)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror the log to stderr at debug level")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("store", "file", "Snapshot store: file, sqlite or memory")
	configInitCmd.Flags().Bool("encrypt", false, "Seal snapshots with an age key pair")

	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)

	addFileCommands(rootCmd)
	addContentCommands(rootCmd)
}
