package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "actcli/internal/errors"
	"actcli/internal/infrastructure"
)

// FilenameDateLayout is the month-day-year token layout, e.g. 031214
const FilenameDateLayout = "010206"

// Candidate is a file matched by the selector
type Candidate struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Date    *time.Time // nil when the name carries no parseable date
}

// Criteria describes which files to select
type Criteria struct {
	Dir       string
	Substring string
	Extension string // without the dot; a leading dot is tolerated
	Start     *time.Time
	End       *time.Time
}

// Selection is the ordered result of a Select call
type Selection struct {
	Files []Candidate
	// Unparseable lists names excluded from a date-filtered selection
	// because their date token could not be parsed.
	Unparseable []string
}

// Empty reports whether nothing was selected
func (s *Selection) Empty() bool {
	return s == nil || len(s.Files) == 0
}

// Names returns the selected file names in order
func (s *Selection) Names() []string {
	names := make([]string, len(s.Files))
	for i, f := range s.Files {
		names[i] = f.Name
	}
	return names
}

// Paths returns the selected file paths in order
func (s *Selection) Paths() []string {
	paths := make([]string, len(s.Files))
	for i, f := range s.Files {
		paths[i] = f.Path
	}
	return paths
}

// Selector lists instrument files in a directory
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a selector that logs to logger
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Selector{logger: infrastructure.WithComponent(logger, "selector")}
}

// Select lists the regular files in c.Dir whose name contains c.Substring
// and ends in c.Extension, in natural order, narrowed to the inclusive
// [Start, End] day range when either bound is set.
//
// An empty selection is not an error: it is logged at WARN and returned.
// A directory that cannot be listed is a READ_FAILURE.
func (s *Selector) Select(ctx context.Context, c Criteria) (*Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := "." + strings.TrimPrefix(strings.TrimSpace(c.Extension), ".")
	pattern := fmt.Sprintf("*%s*%s", c.Substring, ext)

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, apperrors.NewReadFailure(c.Dir, err)
	}

	var matched []Candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, c.Substring) || !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.DebugContext(ctx, "Skipping file that vanished during listing",
				slog.String("file", name), slog.String("error", err.Error()))
			continue
		}

		cand := Candidate{
			Name:    name,
			Path:    filepath.Join(c.Dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if d, err := ParseFilenameDate(name); err == nil {
			cand.Date = &d
		}
		matched = append(matched, cand)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return NaturalLess(matched[i].Name, matched[j].Name)
	})

	sel := &Selection{}
	if c.Start == nil && c.End == nil {
		sel.Files = matched
	} else {
		for _, cand := range matched {
			if cand.Date == nil {
				sel.Unparseable = append(sel.Unparseable, cand.Name)
				s.logger.DebugContext(ctx, "Excluding file without a date token",
					slog.String("file", cand.Name),
					slog.String("error_type", string(apperrors.ErrTypeUnparseableFilename)))
				continue
			}
			if inRange(*cand.Date, c.Start, c.End) {
				sel.Files = append(sel.Files, cand)
			}
		}
	}

	if sel.Empty() {
		s.logger.WarnContext(ctx, "There were no files found",
			slog.String("dir", c.Dir),
			slog.String("pattern", pattern),
			slog.String("error_type", string(apperrors.ErrTypeNoFiles)))
		return sel, nil
	}

	s.logger.InfoContext(ctx, "Files selected",
		slog.String("dir", c.Dir),
		slog.String("pattern", pattern),
		slog.Int("matched", len(matched)),
		slog.Int("selected", len(sel.Files)),
		slog.Int("unparseable", len(sel.Unparseable)))

	return sel, nil
}

// ParseFilenameDate extracts the month-day-year date from the second
// whitespace separated token of a file name. When that token is the last
// one, its extension is ignored: "42I 031214.dat" and "42I 031214 0000.dat"
// both give 2014-03-12.
func ParseFilenameDate(name string) (time.Time, error) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return time.Time{}, apperrors.NewUnparseableFilenameError(name, nil)
	}
	token := fields[1]
	if len(fields) == 2 {
		if dot := strings.IndexByte(token, '.'); dot >= 0 {
			token = token[:dot]
		}
	}
	d, err := time.Parse(FilenameDateLayout, token)
	if err != nil {
		return time.Time{}, apperrors.NewUnparseableFilenameError(name, err)
	}
	return d, nil
}

// inRange compares at day granularity; both bounds are inclusive
func inRange(d time.Time, start, end *time.Time) bool {
	day := truncateDay(d)
	if start != nil && day.Before(truncateDay(*start)) {
		return false
	}
	if end != nil && day.After(truncateDay(*end)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
