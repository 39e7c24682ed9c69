// Package files finds instrument output files and writes rendered artefacts.
//
// Selector lists files in an explicit directory by instrument substring and
// extension, orders them naturally (digit runs compared as numbers, so f2
// sorts before f10) and narrows them to an inclusive day range using the
// month-day-year token in the file name:
//
//	sel, err := files.NewSelector(logger).Select(ctx, files.Criteria{
//	    Dir:       "/data/station",
//	    Substring: "42I",
//	    Extension: "dat",
//	    Start:     &start,
//	    End:       &end,
//	})
//
// Manager writes reports and charts under the configured output directory,
// replacing the target atomically.
package files
