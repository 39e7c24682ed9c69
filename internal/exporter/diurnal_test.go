package exporter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actcli/pkg/contracts/domain"
)

func sampleProfile(t *testing.T) *domain.DiurnalProfile {
	t.Helper()
	k1, err := domain.ParseTimeOfDay("00:05")
	require.NoError(t, err)
	k2, err := domain.ParseTimeOfDay("14:05")
	require.NoError(t, err)

	single := domain.Stats{Count: 1, Mean: 3, Std: math.NaN(), Min: 3, Q25: 3, Median: 3, Q75: 3, Max: 3}
	return &domain.DiurnalProfile{
		Columns: []string{"o3", "so2"},
		Buckets: []domain.DiurnalBucket{
			{Key: k1, Stats: map[string]domain.Stats{"o3": single, "so2": domain.EmptyStats()}},
			{Key: k2, Stats: map[string]domain.Stats{
				"o3":  {Count: 2, Mean: 15, Std: 7.5, Min: 10, Q25: 12.5, Median: 15, Q75: 17.5, Max: 20},
				"so2": single,
			}},
		},
	}
}

func TestEncodeDiurnal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeDiurnal(&buf, sampleProfile(t)))

	assert.Equal(t, strings.Join([]string{
		"time,channel,count,mean,std,min,25%,50%,75%,max",
		"00:05,o3,1,3,,3,3,3,3,3",
		"00:05,so2,0,,,,,,,",
		"14:05,o3,2,15,7.5,10,12.5,15,17.5,20",
		"14:05,so2,1,3,,3,3,3,3,3",
		"",
	}, "\n"), buf.String())
}

func TestDecodeDiurnal(t *testing.T) {
	var buf bytes.Buffer
	want := sampleProfile(t)
	require.NoError(t, EncodeDiurnal(&buf, want))

	got, err := DecodeDiurnal(&buf)
	require.NoError(t, err)

	assert.Equal(t, want.Columns, got.Columns)
	require.Len(t, got.Buckets, 2)
	assert.Equal(t, "14:05", got.Buckets[1].Key.String())
	assert.Equal(t, 15.0, got.Buckets[1].Stats["o3"].Mean)
	assert.True(t, math.IsNaN(got.Buckets[0].Stats["so2"].Mean))
	assert.True(t, math.IsNaN(got.Buckets[0].Stats["o3"].Std))
}

func TestDecodeDiurnalBadTime(t *testing.T) {
	_, err := DecodeDiurnal(strings.NewReader("time,channel,count,mean,std,min,25%,50%,75%,max\n25:99,o3,1,1,1,1,1,1,1,1\n"))
	assert.ErrorContains(t, err, "record 1")
}

func TestEncodeDiurnalEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeDiurnal(&buf, &domain.DiurnalProfile{}))
	assert.Equal(t, "time,channel,count,mean,std,min,25%,50%,75%,max\n", buf.String())
}

func TestCSVWriter_WriteDiurnal(t *testing.T) {
	writer, paths := setupTestEnv(t)

	require.NoError(t, writer.WriteDiurnal("reports/o3_diurnal.csv", sampleProfile(t)))

	content, err := os.ReadFile(filepath.Join(paths.ReportsDir, "o3_diurnal.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "time,channel,count"))
}
