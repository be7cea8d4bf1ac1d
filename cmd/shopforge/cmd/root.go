package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/config"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/entrepeneur4lyf/shopforge/internal/tui"
	"github.com/spf13/cobra"
)

var (
	debug       bool
	configFile  string
	backendURL  string
	dataDir     string
	storeDriver string
	ephemeral   bool
)

var (
	logFile *os.File // For cleanup
	cfg     *config.Config
	// Global app instance shared by every command
	shopApp *app.App
	// appOptions are extra options for NewApp, used by tests
	appOptions []app.Option
)

// setupLogging sends log output to a file for the TUI, which owns the
// terminal, and to stderr for plain commands
func setupLogging(cfg *config.Config, interactive bool, stderr io.Writer) error {
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	if !interactive {
		log.SetFormatter(log.TextFormatter)
		log.SetOutput(stderr)
		return nil
	}

	logDir, err := cfg.Paths().LogsDir()
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(logDir, "shopforge.log")
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	log.SetFormatter(log.LogfmtFormatter)
	log.SetOutput(logFile)
	return nil
}

// cleanupLogging closes the log file if it was opened
func cleanupLogging() {
	if logFile != nil {
		log.SetOutput(os.Stderr)
		logFile.Close()
		logFile = nil
	}
}

// overrides maps flags the user actually set onto config keys
func overrides(cmd *cobra.Command) map[string]any {
	values := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		values["backend.baseURL"] = backendURL
	}
	if flags.Changed("data-dir") {
		values["storage.directory"] = dataDir
	}
	if flags.Changed("store") {
		values["storage.driver"] = storeDriver
	}
	if ephemeral {
		values["storage.driver"] = storage.DriverMemory
	}
	return values
}

// logEvents mirrors app events into the debug log for plain commands
func logEvents(ctx context.Context, a *app.App) {
	events := a.Events.Subscribe(ctx)
	go func() {
		for ev := range events {
			log.Debug("event", "type", ev.Type, "session", ev.SessionID, "product", ev.Payload.ProductID, "count", ev.Payload.Count)
		}
	}()
}

func closeApp() {
	if shopApp != nil {
		if err := shopApp.Close(); err != nil {
			log.Warn("failed to close storage", "err", err)
		}
		shopApp = nil
	}
	cleanupLogging()
}

var rootCmd = &cobra.Command{
	Use:   "shopforge",
	Short: "Conversational shopping assistant for the terminal",
	Long: `ShopForge talks to a shopping assistant backend and keeps your searches,
cart and favorites on this machine.

Usage:
  shopforge                          # Start the interactive interface
  shopforge ask "blue polo shirts"   # One question, results printed
  shopforge cart list                # Inspect the cart

Searches are kept as sessions you can switch between, results can be
narrowed with filters, and products can be added to a cart or favorites.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.Options{
			ConfigFile: configFile,
			Debug:      debug,
			Overrides:  overrides(cmd),
		})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		interactive := cmd == cmd.Root()
		if err := setupLogging(cfg, interactive, cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		shopApp, err = app.NewApp(cmd.Context(), cfg, appOptions...)
		if err != nil {
			return fmt.Errorf("failed to initialize ShopForge: %w", err)
		}
		if !interactive {
			logEvents(cmd.Context(), shopApp)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		statePath, err := cfg.Paths().UIStatePath()
		if err != nil {
			return err
		}
		state, err := loadUIState(statePath)
		if err != nil {
			log.Warn("ignoring unreadable UI state", "file", statePath, "err", err)
			state = config.NewState()
		}
		return tui.Run(cmd.Context(), shopApp, tui.Options{State: state, StatePath: statePath})
	},
}

// loadUIState reads the saved UI state. The configured theme applies until
// one has been saved.
func loadUIState(path string) (*config.State, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		state := config.NewState()
		if cfg.TUI.Theme != "" {
			state.Theme = cfg.TUI.Theme
		}
		return state, nil
	}
	return config.LoadState(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default searches $HOME and $XDG_CONFIG_HOME/shopforge)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Assistant backend URL")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for saved searches, cart and favorites")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Storage driver (file, libsql, memory)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep nothing on disk for this run")

	rootCmd.AddCommand(askCmd, sessionsCmd, filterCmd, cartCmd, favoritesCmd, viewCmd, historyCmd)
}

// Execute runs the root command until it finishes or the process is
// interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Setup cleanup on exit
	defer closeApp()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		closeApp()
		os.Exit(1)
	}
}
