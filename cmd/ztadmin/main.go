// ztadmin administers a user-mode ZeroTier backend: it runs the management
// tool under sudo, controls the service unit, and repairs broken installs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ztgui/ztadmin/internal/config"
	"github.com/ztgui/ztadmin/internal/credential"
	"github.com/ztgui/ztadmin/internal/executor"
	"github.com/ztgui/ztadmin/internal/logging"
	"github.com/ztgui/ztadmin/internal/netdev"
	"github.com/ztgui/ztadmin/internal/service"
	"github.com/ztgui/ztadmin/internal/settings"
	"github.com/ztgui/ztadmin/internal/terminal"
	"github.com/ztgui/ztadmin/internal/ztone"
)

var (
	flagConfigPath string
	flagDebug      bool
	flagLogLevel   string
	flagLogDir     string
	flagNoColor    bool

	app appState
)

// appState holds the wired components shared by all subcommands. It is
// populated by initApp before any RunE fires.
type appState struct {
	cfg        *config.Config
	store      *credential.Store
	exec       executor.Executor
	services   *service.Controller
	client     *ztone.Client
	inspector  *netdev.Inspector
	settings   *settings.Store
	palette    *terminal.Palette
	homeDir    string
	runID      string
	logCloser  io.Closer
	execCloser io.Closer

	// credentialReady records that the sudo password was verified, so a
	// command chain never prompts twice
	credentialReady bool
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default is ztadmin.toml under the user config directory)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "run commands directly on the host without the sandbox hop")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "directory for per-run JSON log files")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.SilenceErrors = true
	rootCmd.PersistentPreRunE = initApp

	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if app.execCloser != nil {
		app.execCloser.Close()
	}
	if app.logCloser != nil {
		app.logCloser.Close()
	}
	if err != nil {
		slog.Error("ztadmin failed", "run_id", app.runID, "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "ztadmin",
	Short:        "Administer a user-mode ZeroTier backend",
	SilenceUsage: true,
}

// initApp loads the config, installs the logger, and wires the component
// graph. It never prompts; credential acquisition is deferred until a
// privileged command actually runs.
func initApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	if flagDebug {
		cfg.Debug = true
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogDir != "" {
		cfg.LogDir = flagLogDir
	}
	app.cfg = cfg

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	app.homeDir = home

	app.store = credential.NewStore()
	app.runID = logging.GenerateRunID()

	closer, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		LogDir: cfg.LogDir,
		RunID:  app.runID,
		Secrets: func() []string {
			return []string{app.store.Secret()}
		},
	})
	if err != nil {
		return err
	}
	app.logCloser = closer

	execOpts := []executor.Option{
		executor.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}
	if cfg.Debug {
		execOpts = append(execOpts, executor.WithoutSandboxHop())
	}
	serial := executor.NewSerialExecutor(executor.NewSudoExecutor(app.store, execOpts...))
	app.exec = serial
	app.execCloser = serial

	app.palette = terminal.NewPalette(terminal.Options{DisableColor: flagNoColor})
	app.settings = settings.New(cfg.SettingsPath)
	app.services = service.NewController(app.exec, cfg.Unit, cfg.BackendDir)
	app.client = ztone.NewClient(app.exec, app.settings, cfg.BackendDir, cfg.BackendTool)
	app.inspector = netdev.NewInspector(app.exec, cfg.BackendDir)

	slog.Debug("ztadmin initialized",
		"unit", cfg.Unit, "backend_dir", cfg.BackendDir, "debug", cfg.Debug)
	return nil
}

// ensureCredential prompts for and verifies the sudo password once per
// process. Commands that need elevation call it before touching the backend.
// Verification runs in the home directory so it works even when the backend
// data directory is gone and recovery is about to reinstall it.
func ensureCredential(cmd *cobra.Command) error {
	if app.credentialReady {
		return nil
	}
	err := credential.Acquire(cmd.Context(), app.exec, app.store, credential.TerminalPrompter{}, app.homeDir)
	if err != nil {
		return err
	}
	app.credentialReady = true
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ztadmin %s\n", buildVersion())
	},
}
