// Package cli provides the command-line interface for the trade report importer.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-report/internal/config"
	apperrors "trade-report/internal/errors"
	"trade-report/internal/ingest"
	"trade-report/internal/logging"
	"trade-report/internal/store"
	"trade-report/internal/trace"
)

// Version information
var (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies. They are resolved in the root
// command's pre-run once flags are parsed.
type App struct {
	ConfigDir string
	Config    *config.Config
	Logger    zerolog.Logger

	store store.TradeStore
}

// TradeStore opens the SQLite trade store on first use.
func (a *App) TradeStore() (store.TradeStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.Config.Store.Path), 0755); err != nil {
		return nil, apperrors.NewStoreError("create store directory", err)
	}
	st, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("SQLite store initialized")
	a.store = st
	return st, nil
}

// Service builds the ingest service. withStore opens the trade store so
// parsed trades can be saved.
func (a *App) Service(withStore bool) (*ingest.Service, error) {
	var st store.TradeStore
	if withStore {
		var err error
		if st, err = a.TradeStore(); err != nil {
			return nil, err
		}
	}
	return ingest.NewServiceFromConfig(a.Config, st, a.Logger), nil
}

// Close releases the store and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if terr := trace.Shutdown(ctx); terr != nil && err == nil {
		err = terr
	}
	return err
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	app := &App{Logger: zerolog.Nop()}
	defer app.Close(context.Background())
	return NewRootCmd(app).ExecuteContext(ctx)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trade-report",
		Short: "Parse MT4/MT5 trade reports into metrics and trade records",
		Long: `trade-report reads broker performance reports exported from MetaTrader 4/5
(PDF or plain-text dumps) and turns them into either a structured summary with
derived metrics or a list of individual trades that can be stored locally.

Use 'trade-report report summary <file>' for the metrics of a report and
'trade-report report trades <file> --save' to import its trade history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-report)")
	rootCmd.PersistentFlags().String("format", "", "output format: text, json or yaml (default from config)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newImportsCmd(app))

	return rootCmd
}

func (a *App) setup(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.ConfigDir = dir
	a.Config = cfg

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		switch format {
		case FormatText, FormatJSON, FormatYAML:
		default:
			return apperrors.NewValidationError("format", format, "must be text, json or yaml")
		}
	}

	logCfg := logging.LogConfig{
		Level:      cfg.Log.Level,
		Console:    cfg.Log.Console,
		File:       cfg.Log.File,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Color:      cfg.Output.ColorEnabled,
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
	}
	a.Logger = logging.NewLoggerWithConfig(logCfg)

	if err := trace.Init(trace.Config{
		Enabled: cfg.Tracing.Enabled,
		Version: Version,
		Writer:  cmd.ErrOrStderr(),
	}); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to initialize tracing")
	}

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.Logger))
	return nil
}

func (a *App) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd, a.Config.Output.Format, a.Config.Output.ColorEnabled)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			format, _ := cmd.Flags().GetString("format")
			output := NewOutput(cmd, format, false)
			if output.IsStructured() {
				output.Emit(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
				return
			}
			output.Printf("trade-report v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsStructured() {
				return output.Emit(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			path := config.ConfigPath(app.ConfigDir)
			if output.IsStructured() {
				return output.Emit(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Parser")
	output.Printf("  Excerpt length:   %d\n", cfg.Parser.ExcerptLength)
	output.Printf("  Cluster recovery: %v\n", cfg.Parser.ClusterRecovery)
	output.Printf("  Source tag:       %s\n", cfg.Parser.SourceTag)
	output.Printf("  Max pages:        %s\n", pagesLimit(cfg.Parser.MaxPages))
	output.Printf("  Max file size:    %d MB\n", cfg.Input.MaxFileMB)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path:             %s\n", cfg.Store.Path)
	output.Printf("  Owner:            %s\n", cfg.Store.OwnerID)
	output.Println()

	output.Bold("Logging & Output")
	output.Printf("  Log level:        %s\n", cfg.Log.Level)
	output.Printf("  Log file:         %v\n", cfg.Log.File)
	output.Printf("  Output format:    %s\n", cfg.Output.Format)
	output.Printf("  Tracing:          %v\n", cfg.Tracing.Enabled)
	output.Printf("  Batch workers:    %d\n", cfg.Batch.Workers)
}

func pagesLimit(n int) string {
	if n == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}
