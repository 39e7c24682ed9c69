package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"actcli/internal/config"
	"actcli/internal/dataprocessing"
	apperrors "actcli/internal/errors"
	"actcli/internal/exporter"
	"actcli/internal/files"
	"actcli/internal/infrastructure"
	"actcli/pkg/contracts"
)

// Exit codes shared by every command
const (
	ExitOK     = 0
	ExitFatal  = 1
	ExitConfig = 2
)

// shutdownTimeout bounds telemetry flushing at the end of a run
const shutdownTimeout = 5 * time.Second

// Application represents one command run and the components it needs
type Application struct {
	Command   string
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Paths     *config.Paths
	Files     *files.Manager
	Writer    *exporter.CSVWriter
	Pipeline  *dataprocessing.Pipeline

	started time.Time
}

// Options adjusts NewApplication
type Options struct {
	// ConfigFile is loaded instead of the searched locations when set.
	ConfigFile string
	// OutputDir overrides the configured output directory.
	OutputDir string
	// Verbose forces debug logging.
	Verbose bool
	// Logger replaces the global logger. Tests use it to capture records.
	Logger *slog.Logger
	// TraceWriter receives stdout-exported spans.
	TraceWriter io.Writer
}

// NewApplication loads configuration and wires logging, telemetry, the
// output layout and the pipeline for command.
func NewApplication(command string, opts Options) (*Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to initialize logger", err)
		}
	}
	logger = logger.With(slog.String("command", command))

	paths, err := config.NewPaths(cfg.Output.Dir)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid output directory", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewExportError("failed to create output directories", err)
	}
	paths.LogPathResolution(logger)

	var telemetryOpts []infrastructure.TelemetryOption
	if opts.TraceWriter != nil {
		telemetryOpts = append(telemetryOpts, infrastructure.WithTraceWriter(opts.TraceWriter))
	}
	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger, telemetryOpts...)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}

	manager := files.NewManager(paths, logger)
	return &Application{
		Command:   command,
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		Paths:     paths,
		Files:     manager,
		Writer:    exporter.NewCSVWriter(manager, logger),
		Pipeline:  dataprocessing.NewPipeline(logger, telemetry.Metrics),
		started:   time.Now(),
	}, nil
}

// Run calls fn with a context that is cancelled on SIGINT or SIGTERM, then
// closes the application. fn's error wins over a close error.
func (a *Application) Run(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	a.Logger.InfoContext(ctx, "Command starting",
		slog.String("version", contracts.Version),
		slog.String("output_dir", a.Paths.OutputDir))

	err := fn(ctx)
	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Command failed",
			slog.String("error_type", errorType(err)))
	} else {
		a.Logger.InfoContext(ctx, "Command complete",
			slog.Duration("elapsed", time.Since(a.started)))
	}

	if closeErr := a.Close(ctx); closeErr != nil {
		a.Logger.Warn("Shutdown incomplete", slog.String("error", closeErr.Error()))
		if err == nil {
			err = closeErr
		}
	}
	return err
}

// Close writes the metrics textfile and flushes telemetry
func (a *Application) Close(ctx context.Context) error {
	var errs []error

	a.Telemetry.Metrics.RecordRuntime(ctx, a.started)
	path := a.Config.Telemetry.MetricsTextfile
	if path == "" {
		path = a.Paths.MetricsPath(a.Command)
	}
	if err := a.Telemetry.WriteMetrics(path); err != nil {
		errs = append(errs, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.IsConfigError(err):
		return ExitConfig
	default:
		return ExitFatal
	}
}

func errorType(err error) string {
	if t, ok := apperrors.TypeOf(err); ok {
		return string(t)
	}
	return "UNKNOWN"
}

// DateLayouts are accepted by ParseDate, tried in order
var DateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", files.FilenameDateLayout}

// ParseDate parses a command line date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("invalid date %q", s),
		fmt.Errorf("expected one of %v", DateLayouts))
}
