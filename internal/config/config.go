package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "actcli/internal/errors"
	"actcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Diurnal   DiurnalConfig   `yaml:"diurnal" envconfig:"DIURNAL"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// IngestConfig controls file selection, reading and resampling
type IngestConfig struct {
	Workers      int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	Strict       bool   `yaml:"strict" envconfig:"STRICT"`
	Gap          string `yaml:"gap" envconfig:"GAP" validate:"oneof=omit nan ffill"`
	GasInterval  string `yaml:"gas_interval" envconfig:"GAS_INTERVAL" validate:"interval"`
	VAPSInterval string `yaml:"vaps_interval" envconfig:"VAPS_INTERVAL" validate:"interval"`
	XLSXSheet    string `yaml:"xlsx_sheet" envconfig:"XLSX_SHEET" validate:"required"`
	XLSXSkipRows int    `yaml:"xlsx_skip_rows" envconfig:"XLSX_SKIP_ROWS" validate:"min=0"`
}

// DiurnalConfig controls the diurnal chart
type DiurnalConfig struct {
	Shaded       bool    `yaml:"shaded" envconfig:"SHADED"`
	Title        string  `yaml:"title" envconfig:"TITLE"`
	XLabel       string  `yaml:"xlabel" envconfig:"XLABEL"`
	WidthInches  float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES" validate:"gt=0"`
	HeightInches float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES" validate:"gt=0"`
}

// OutputConfig contains where rendered reports and charts are written
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" validate:"required"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load builds configuration from defaults, the optional config file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", path)
		}
	}

	// Fields carry no default tags, so variables that are unset leave the
	// file and default values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Ingest.Gap = strings.ToLower(strings.TrimSpace(c.Ingest.Gap))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("interval", isInterval)
	return v
}

func isInterval(fl validator.FieldLevel) bool {
	_, err := domain.ParseInterval(fl.Field().String())
	return err == nil
}

// IntervalFor returns the configured default resample interval for a model
func (c IngestConfig) IntervalFor(m domain.Model) (time.Duration, error) {
	raw := c.GasInterval
	if m == domain.ModelVAPS {
		raw = c.VAPSInterval
	}
	d, err := domain.ParseInterval(raw)
	if err != nil {
		return 0, apperrors.NewConfigError(fmt.Sprintf("bad interval for %s", m), err)
	}
	return d, nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	for _, location := range ConfigFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Ingest: IngestConfig{
			Workers:      DefaultWorkers,
			Gap:          "omit",
			GasInterval:  DefaultGasInterval,
			VAPSInterval: DefaultVAPSInterval,
			XLSXSheet:    DefaultXLSXSheet,
			XLSXSkipRows: DefaultXLSXSkipRows,
		},
		Diurnal: DiurnalConfig{
			Shaded:       true,
			XLabel:       "Hour of Day (local)",
			WidthInches:  DefaultChartWidth,
			HeightInches: DefaultChartHeight,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			TraceExporter: "none",
		},
	}
}
