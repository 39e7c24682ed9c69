package domain

import (
	"fmt"
	"strings"
	"time"
)

// Model identifies one of the supported instruments
type Model int

const (
	ModelNOx Model = iota + 1
	ModelSOx
	ModelO3
	ModelVAPS
)

// FileFormat identifies an on-disk instrument output layout
type FileFormat int

const (
	FormatDat FileFormat = iota + 1
	FormatXLSX
	FormatCSV
	FormatVAPSText
)

// DerivedColumn describes a channel computed after load as Minuend - Subtrahend
type DerivedColumn struct {
	Name       string
	Minuend    string
	Subtrahend string
}

// ModelSpec describes how files of one instrument are found, parsed and cleaned
type ModelSpec struct {
	Model           Model
	Name            string
	Instrument      string // substring that identifies the instrument's files
	Extension       string
	Format          FileFormat
	DefaultInterval time.Duration
	Derived         []DerivedColumn
	PositiveOnly    bool // non-positive readings are sensor faults and become missing
	GasChannels     []string
	InternalTemps   []string
	InternalFlows   []string
}

var modelSpecs = map[Model]ModelSpec{
	ModelNOx: {
		Model:           ModelNOx,
		Name:            "nox",
		Instrument:      "42I",
		Extension:       "dat",
		Format:          FormatDat,
		DefaultInterval: time.Minute,
		Derived:         []DerivedColumn{{Name: "no2", Minuend: "nox", Subtrahend: "no"}},
		GasChannels:     []string{"no", "no2", "nox"},
		InternalTemps:   []string{"convt", "intt", "rctt", "pmtt"},
		InternalFlows:   []string{"smplf", "ozonf"},
	},
	ModelSOx: {
		Model:           ModelSOx,
		Name:            "sox",
		Instrument:      "43I",
		Extension:       "dat",
		Format:          FormatDat,
		DefaultInterval: time.Minute,
		GasChannels:     []string{"so2"},
		InternalTemps:   []string{"intt", "rctt"},
		InternalFlows:   []string{"smplfl"},
	},
	ModelO3: {
		Model:           ModelO3,
		Name:            "o3",
		Instrument:      "49I",
		Extension:       "dat",
		Format:          FormatDat,
		DefaultInterval: time.Minute,
		GasChannels:     []string{"o3"},
		InternalTemps:   []string{"bncht", "lmpt"},
		InternalFlows:   []string{"flowa", "flowb"},
	},
	ModelVAPS: {
		Model:           ModelVAPS,
		Name:            "vaps",
		Instrument:      "Vaps",
		Extension:       "txt",
		Format:          FormatVAPSText,
		DefaultInterval: 5 * time.Second,
		PositiveOnly:    true,
	},
}

// ParseModel converts a user supplied model name
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nox", "42i":
		return ModelNOx, nil
	case "sox", "so2", "43i":
		return ModelSOx, nil
	case "o3", "49i":
		return ModelO3, nil
	case "vaps":
		return ModelVAPS, nil
	default:
		options := make([]string, 0, len(modelSpecs))
		for _, m := range Models() {
			options = append(options, m.String())
		}
		return 0, fmt.Errorf("%w: %q (options are %s)", ErrInvalidModel, name, strings.Join(options, ", "))
	}
}

// Models lists every supported model
func Models() []Model {
	return []Model{ModelNOx, ModelSOx, ModelO3, ModelVAPS}
}

// Spec returns the description of the model
func (m Model) Spec() (ModelSpec, bool) {
	spec, ok := modelSpecs[m]
	return spec, ok
}

// String returns the model's short name
func (m Model) String() string {
	if spec, ok := modelSpecs[m]; ok {
		return spec.Name
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// ParseFileFormat converts a format name or file extension
func ParseFileFormat(name string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "dat":
		return FormatDat, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "vaps":
		return FormatVAPSText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}
}

// String returns the format name
func (f FileFormat) String() string {
	switch f {
	case FormatDat:
		return "dat"
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	case FormatVAPSText:
		return "txt"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

var channelLabels = map[string]string{
	"no":     "NO",
	"no2":    "NO2",
	"nox":    "NOx",
	"so2":    "SO2",
	"o3":     "O3",
	"convt":  "T converter",
	"intt":   "T internal",
	"rctt":   "T reactor",
	"pmtt":   "T PMT",
	"bncht":  "T bench",
	"lmpt":   "T lamp",
	"smplf":  "Q sample",
	"smplfl": "Q sample",
	"ozonf":  "Q ozone",
	"flowa":  "Q A",
	"flowb":  "Q B",
}

// ChannelLabel returns a display label for a channel name.
// Unknown channels are returned unchanged.
func ChannelLabel(name string) string {
	if label, ok := channelLabels[strings.ToLower(name)]; ok {
		return label
	}
	return name
}
