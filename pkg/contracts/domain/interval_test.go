package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "1min", want: time.Minute},
		{input: "5S", want: 5 * time.Second},
		{input: "15T", want: 15 * time.Minute},
		{input: "T", want: time.Minute},
		{input: "1H", want: time.Hour},
		{input: "1D", want: 24 * time.Hour},
		{input: "30s", want: 30 * time.Second},
		{input: "1m30s", want: 90 * time.Second},
		{input: " 10 sec ", want: 10 * time.Second},
		{input: "", wantErr: true},
		{input: "0s", wantErr: true},
		{input: "0min", wantErr: true},
		{input: "-5m", wantErr: true},
		{input: "5 fortnights", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInterval)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		input   string
		want    Model
		wantErr bool
	}{
		{input: "nox", want: ModelNOx},
		{input: "NOx", want: ModelNOx},
		{input: "sox", want: ModelSOx},
		{input: "so2", want: ModelSOx},
		{input: "o3", want: ModelO3},
		{input: "VAPS", want: ModelVAPS},
		{input: "co2", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidModel)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModelListsOptions(t *testing.T) {
	_, err := ParseModel("co2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "options are nox, sox, o3, vaps")
}

func TestModelSpecs(t *testing.T) {
	for _, m := range Models() {
		spec, ok := m.Spec()
		assert.True(t, ok, m.String())
		assert.Equal(t, m, spec.Model)
		assert.Positive(t, spec.DefaultInterval)
		assert.NotEmpty(t, spec.Instrument)
	}

	nox, _ := ModelNOx.Spec()
	assert.Equal(t, "42I", nox.Instrument)
	assert.Equal(t, []DerivedColumn{{Name: "no2", Minuend: "nox", Subtrahend: "no"}}, nox.Derived)

	vaps, _ := ModelVAPS.Spec()
	assert.Equal(t, 5*time.Second, vaps.DefaultInterval)
	assert.Equal(t, FormatVAPSText, vaps.Format)
	assert.True(t, vaps.PositiveOnly)
}

func TestParseFileFormat(t *testing.T) {
	f, err := ParseFileFormat(".XLSX")
	assert.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFileFormat("parquet")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestChannelLabel(t *testing.T) {
	assert.Equal(t, "NOx", ChannelLabel("nox"))
	assert.Equal(t, "SO2", ChannelLabel("SO2"))
	assert.Equal(t, "TC1", ChannelLabel("TC1"))
}
