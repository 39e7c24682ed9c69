package app

import (
	"context"
	"fmt"
	"log/slog"

	"actcli/internal/dataprocessing"
	apperrors "actcli/internal/errors"
	"actcli/pkg/contracts/domain"
)

// Ingest runs the pipeline for req. A selection that matched nothing is
// logged and returned with Report.NoFiles set. A run in which every selected
// file failed to read is an error.
func (a *Application) Ingest(ctx context.Context, req dataprocessing.Request) (*dataprocessing.Result, error) {
	result, err := a.Pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if result.Report.NoFiles {
		a.Logger.WarnContext(ctx, "No files found",
			slog.String("dir", req.Dir),
			slog.String("model", req.Model.String()),
			slog.String("error_type", string(apperrors.ErrTypeNoFiles)))
		return result, nil
	}
	if len(result.Report.Unparseable) > 0 {
		a.Logger.WarnContext(ctx, "Files excluded by unparseable date",
			slog.Int("count", len(result.Report.Unparseable)),
			slog.Any("files", result.Report.Unparseable))
	}
	if result.Report.FilesRead == 0 {
		return nil, apperrors.NewReadFailure(req.Dir,
			fmt.Errorf("none of %d selected files could be read", result.Report.FilesSelected))
	}
	return result, nil
}

// DaySelection returns the calendar days named by the request: the inclusive
// range when both dates are set, otherwise everything.
func DaySelection(req dataprocessing.Request) (domain.DateSelection, error) {
	if req.Start == nil || req.End == nil {
		return domain.NewDateSelection()
	}
	sel, err := domain.NewDateSelection(*req.Start, *req.End)
	if err != nil {
		return sel, apperrors.NewConfigError("invalid date selection", err)
	}
	return sel, nil
}
