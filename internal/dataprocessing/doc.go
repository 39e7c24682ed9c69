// Package dataprocessing turns instrument output files into analysis tables.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Reader: parses .dat, .xlsx, .csv and VAPS .txt files into domain.Table
// 2. Processor: merges tables, removes duplicate timestamps and resamples
// 3. Analytics: builds diurnal profiles with per-minute-of-day statistics
// 4. Pipeline: selects a model's files and runs the steps above
//
// # Usage
//
//	p := dataprocessing.NewPipeline(logger, metrics)
//	res, err := p.Run(ctx, dataprocessing.Request{
//	    Dir:   "/data/2014",
//	    Model: domain.ModelNOx,
//	})
//	if err != nil {
//	    return err
//	}
//	profile, err := dataprocessing.Aggregate(res.Table, domain.DateSelection{})
//
// # Data Flow
//
//	Files → Selector → Reader → Model rules → Merge → Resample → Aggregate
//
// # Error Handling
//
// Failures are typed with internal/errors:
//
//	- Unreadable files are READ_FAILURE and skipped unless the run is strict
//	- Malformed rows are skipped and counted per file in ReadResult
//	- Bad models, formats and intervals are CONFIG errors
//
// Tables are never modified in place; every step returns a new table.
package dataprocessing
