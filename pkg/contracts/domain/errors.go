package domain

import "errors"

// Sentinel errors for invalid caller input. Internal packages wrap these into
// configuration errors; callers can test for them with errors.Is.
var (
	ErrInvalidModel         = errors.New("unsupported instrument model")
	ErrInvalidFormat        = errors.New("unsupported file format")
	ErrInvalidInterval      = errors.New("invalid resample interval")
	ErrInvalidDateSelection = errors.New("dates are not properly configured")
	ErrUnknownColumn        = errors.New("unknown column")
)
