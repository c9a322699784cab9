// Package main provides the CLI entrypoint for platemap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/platemap/internal/artifact"
	"github.com/verte-zerg/platemap/internal/config"
	"github.com/verte-zerg/platemap/internal/export"
	"github.com/verte-zerg/platemap/internal/logging"
	"github.com/verte-zerg/platemap/internal/model"
	"github.com/verte-zerg/platemap/internal/plate"
	"github.com/verte-zerg/platemap/internal/session"
	"github.com/verte-zerg/platemap/internal/store"
	"github.com/verte-zerg/platemap/internal/tui"
)

const (
	defaultExportDir = "."
	defaultSink      = "fs"
	defaultLogLevel  = "info"
	defaultS3Region  = "us-east-1"
	defaultS3Prefix  = "platemap"
)

var (
	configPath  string
	plateFlag   string
	exportDir   string
	sinkFlag    string
	historyFlag bool
	logLevel    string
	logFile     string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "platemap",
		Short:         "TUI well plate labelling and export",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/platemap/config.toml)")
	flags.StringVar(&exportDir, "out", defaultExportDir, "directory for the fs export sink")
	flags.StringVar(&sinkFlag, "sink", defaultSink, "export sink: fs, s3 or memory")
	flags.BoolVar(&historyFlag, "history", true, "record exports in the history database")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "", "log file (TUI default $XDG_STATE_HOME/platemap/platemap.log)")
	rootCmd.Flags().StringVar(&plateFlag, "plate", "", "plate to open: 6, 12, 24, 48, 96 or 384")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPlatesCmd())
	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	pt := plate.None
	if cfg.Plate != "" {
		if pt, err = plate.ParseType(cfg.Plate); err != nil {
			return err
		}
	}

	// The alt screen owns the terminal, so the TUI always logs to a file.
	if cfg.LogFile == "" {
		cfg.LogFile = config.DefaultLogPath()
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx := cmd.Context()
	pub, closeFn, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	sess := session.New()
	if err := sess.SelectPlate(pt); err != nil {
		return err
	}
	logger.Info("session started", zap.Stringer("plate", pt), zap.String("sink", cfg.Sink))

	m := tui.NewModel(ctx, sess, pub, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// newPublisher opens the configured sink and, when enabled, the history
// store. The returned func closes the store.
func newPublisher(ctx context.Context, cfg model.Config, logger *zap.Logger) (*export.Publisher, func(), error) {
	sink, err := artifact.Open(ctx, artifact.Config{
		Driver: artifact.Driver(cfg.Sink),
		Dir:    cfg.ExportDir,
		S3: artifact.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open export sink: %w", err)
	}
	if !cfg.History {
		return export.NewPublisher(sink, nil, logger), func() {}, nil
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		// History is optional; exports still work without it.
		logger.Warn("export history disabled", zap.Error(err))
		return export.NewPublisher(sink, nil, logger), func() {}, nil
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", zap.Error(cerr))
		}
	}
	return export.NewPublisher(sink, st, logger), closeFn, nil
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "plate", &plateFlag, fileCfg.Session.Plate)
	applyStringConfig(cmd, "out", &exportDir, fileCfg.Export.Dir)
	applyStringConfig(cmd, "sink", &sinkFlag, fileCfg.Export.Sink)
	applyBoolConfig(cmd, "history", &historyFlag, fileCfg.Export.History)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		Plate:     strings.TrimSpace(plateFlag),
		ExportDir: exportDir,
		Sink:      sinkFlag,
		History:   historyFlag,
		LogLevel:  logLevel,
		LogFile:   logFile,
		S3: model.S3Config{
			Region: defaultS3Region,
			Prefix: defaultS3Prefix,
		},
	}
	s3 := fileCfg.Export.S3
	setString(&cfg.S3.Bucket, s3.Bucket)
	setString(&cfg.S3.Region, s3.Region)
	setString(&cfg.S3.Endpoint, s3.Endpoint)
	setString(&cfg.S3.Prefix, s3.Prefix)
	if s3.PathStyle != nil {
		cfg.S3.PathStyle = *s3.PathStyle
	}

	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	switch artifact.Driver(strings.ToLower(strings.TrimSpace(cfg.Sink))) {
	case artifact.DriverFilesystem, artifact.DriverMemory:
	case artifact.DriverS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("sink s3 requires [export.s3] bucket in the config file")
		}
	default:
		return fmt.Errorf("--sink must be fs, s3 or memory")
	}
	if strings.TrimSpace(cfg.ExportDir) == "" {
		return fmt.Errorf("--out must not be empty")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func syncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		// Best-effort flush; stderr cannot be synced on some platforms.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
