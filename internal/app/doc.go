// Package app bootstraps the actcli commands.
//
// Every command builds an Application from its flags, then hands its work
// to Run:
//
//	a, err := app.NewApplication("processor", flags.Options())
//	if err != nil {
//	    return app.ExitCode(err)
//	}
//	return app.ExitCode(a.Run(func(ctx context.Context) error { ... }))
//
// NewApplication loads configuration (defaults, YAML file, ACT_* variables),
// installs the slog logger, starts OpenTelemetry tracing and metrics and
// creates the output directories. Run cancels its context on SIGINT and
// SIGTERM, and Close dumps the run's metrics to a Prometheus textfile under
// the metrics directory.
//
// Configuration errors exit with status 2, every other failure with 1.
package app
