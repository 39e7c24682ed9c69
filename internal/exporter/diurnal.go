package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"actcli/pkg/contracts/domain"
)

// Float is a CSV cell that writes missing values as empty
type Float float64

// MarshalCSV implements gocsv.TypeMarshaller
func (f Float) MarshalCSV() (string, error) {
	return formatFloat(float64(f)), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (f *Float) UnmarshalCSV(s string) error {
	v, err := parseFloat(s)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// DiurnalRecord is one channel's statistics at one time of day
type DiurnalRecord struct {
	Time    string `csv:"time"`
	Channel string `csv:"channel"`
	Count   int    `csv:"count"`
	Mean    Float  `csv:"mean"`
	Std     Float  `csv:"std"`
	Min     Float  `csv:"min"`
	Q25     Float  `csv:"25%"`
	Median  Float  `csv:"50%"`
	Q75     Float  `csv:"75%"`
	Max     Float  `csv:"max"`
}

// DiurnalRecords flattens a profile, bucket by bucket in profile column order
func DiurnalRecords(p *domain.DiurnalProfile) []DiurnalRecord {
	records := make([]DiurnalRecord, 0, len(p.Buckets)*len(p.Columns))
	for _, b := range p.Buckets {
		for _, c := range p.Columns {
			s, ok := b.Stats[c]
			if !ok {
				s = domain.EmptyStats()
			}
			records = append(records, DiurnalRecord{
				Time:    b.Key.String(),
				Channel: c,
				Count:   s.Count,
				Mean:    Float(s.Mean),
				Std:     Float(s.Std),
				Min:     Float(s.Min),
				Q25:     Float(s.Q25),
				Median:  Float(s.Median),
				Q75:     Float(s.Q75),
				Max:     Float(s.Max),
			})
		}
	}
	return records
}

// ProfileFromRecords rebuilds a profile from exported records
func ProfileFromRecords(records []DiurnalRecord) (*domain.DiurnalProfile, error) {
	p := &domain.DiurnalProfile{}
	seenColumn := make(map[string]bool)
	byKey := make(map[domain.TimeOfDay]int)

	for i, r := range records {
		key, err := domain.ParseTimeOfDay(r.Time)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if !seenColumn[r.Channel] {
			seenColumn[r.Channel] = true
			p.Columns = append(p.Columns, r.Channel)
		}
		pos, ok := byKey[key]
		if !ok {
			pos = len(p.Buckets)
			byKey[key] = pos
			p.Buckets = append(p.Buckets, domain.DiurnalBucket{Key: key, Stats: make(map[string]domain.Stats)})
		}
		p.Buckets[pos].Stats[r.Channel] = domain.Stats{
			Count:  r.Count,
			Mean:   float64(r.Mean),
			Std:    float64(r.Std),
			Min:    float64(r.Min),
			Q25:    float64(r.Q25),
			Median: float64(r.Median),
			Q75:    float64(r.Q75),
			Max:    float64(r.Max),
		}
	}
	p.Sort()
	return p, nil
}

// EncodeDiurnal writes a profile as CSV
func EncodeDiurnal(out io.Writer, p *domain.DiurnalProfile) error {
	records := DiurnalRecords(p)
	if len(records) == 0 {
		_, err := io.WriteString(out, diurnalHeader())
		return err
	}
	return gocsv.Marshal(&records, out)
}

// DecodeDiurnal reads records written by EncodeDiurnal
func DecodeDiurnal(in io.Reader) (*domain.DiurnalProfile, error) {
	var records []DiurnalRecord
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, fmt.Errorf("failed to decode diurnal profile: %w", err)
	}
	return ProfileFromRecords(records)
}

// WriteDiurnal writes a profile to filePath
func (w *CSVWriter) WriteDiurnal(filePath string, p *domain.DiurnalProfile) error {
	w.logger.Info("Writing diurnal profile",
		slog.String("file_path", filePath),
		slog.Int("buckets", len(p.Buckets)),
		slog.Int("channels", len(p.Columns)))

	return w.manager.WriteAtomic(filePath, func(out io.Writer) error {
		return EncodeDiurnal(out, p)
	})
}

func diurnalHeader() string {
	return "time,channel,count,mean,std,min,25%,50%,75%,max\n"
}
