package config

// Application constants
const (
	AppName   = "actcli"
	EnvPrefix = "ACT"

	// Defaults
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultLogFile      = "logs/actcli.log"
	DefaultWorkers      = 4
	DefaultGasInterval  = "1min"
	DefaultVAPSInterval = "5S"
	DefaultXLSXSheet    = "Sheet1"
	DefaultXLSXSkipRows = 1
	DefaultOutputDir    = "output"
	DefaultChartWidth   = 11.0
	DefaultChartHeight  = 8.5

	// Output layout under the output directory
	ReportsSubdir = "reports"
	ChartsSubdir  = "charts"
	MetricsSubdir = "metrics"
)

// ConfigFileLocations are searched in order when ACT_CONFIG_FILE is unset
var ConfigFileLocations = []string{
	"actcli.yaml",
	"configs/actcli.yaml",
}
