package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viyanta/viyanta-web-sub000/cmd"
	"github.com/viyanta/viyanta-web-sub000/internal/api"
	"github.com/viyanta/viyanta-web-sub000/internal/logger"
	"github.com/viyanta/viyanta-web-sub000/internal/theme"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

const appName = "tablelens"

var (
	Version     = "0.1.0"
	CommitSha   = "unknown"
	FullVersion = Version + "-" + CommitSha
)

var appDir = filepath.Join(xdg.StateHome, appName)

func init() {
	if err := os.MkdirAll(appDir, 0755); err != nil {
		panic(fmt.Sprintf("Error creating state directory: %v", err))
	}

	// Initialize crash reporting
	crashFilePath := filepath.Join(appDir, "crash")
	if f, err := os.Create(crashFilePath); err == nil {
		_ = debug.SetCrashOutput(f, debug.CrashOptions{})
	}
}

// App holds what every subcommand shares once the config is loaded
type App struct {
	configPath string
	logLevel   string

	config *Config
	engine *tablemodel.Engine
	theme  theme.Theme
	logs   io.Closer
}

func (a *App) setup() error {
	config, err := LoadConfigFromFile(a.configPath)
	if err != nil {
		return err
	}

	logs, err := logger.InitLogger(logger.DefaultPath(), a.logLevel)
	if err != nil {
		return err
	}

	engine, err := config.Engine()
	if err != nil {
		return err
	}
	t, err := config.Theme()
	if err != nil {
		return err
	}

	a.config = config
	a.engine = engine
	a.theme = t
	a.logs = logs
	slog.Info("Starting", "version", FullVersion, "config", a.configPath)
	return nil
}

func (a *App) teardown() {
	if a.logs != nil {
		a.logs.Close() // nolint: errcheck
	}
}

func newRootCommand() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Normalize statement text and JSON payloads into typed tables",
		Long: color.New(color.FgHiMagenta).Sprintf(
			"Turn raw statement text and JSON payloads into typed, renderable tables. %s",
			color.New(color.FgBlue).Sprintf("(%s)", FullVersion),
		),
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			app.teardown()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", DefaultConfigPath(), "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "local", Title: "Local input:"},
		&cobra.Group{ID: "remote", Title: "Collaborator:"},
	)

	rootCmd.AddCommand(
		newRenderCommand(app),
		newJSONCommand(app),
		newExportCommand(app),
		newViewCommand(app),
		newCaptureCommand(app),
		newFetchCommand(app),
		newEditCommand(app),
		newServeCommand(app),
		newVersionCommand(),
	)

	rootCmd.SetHelpTemplate(cmd.HelpTemplate)
	rootCmd.SetUsageFunc(func(c *cobra.Command) error {
		return cmd.ColorUsageFunc(c.OutOrStderr(), c)
	})

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		// Skip config and log setup
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintf(c.OutOrStdout(), "%s version: %s\n", appName, FullVersion)
		},
	}
}

func main() {
	api.Version = FullVersion

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("Error executing command", "error", err)
		os.Exit(1)
	}
}
