package dataprocessing

import (
	"fmt"

	"actcli/pkg/contracts/domain"
)

// ApplyModelRules adds the model's derived channels to a freshly read
// table. A derived channel replaces any column of the same name.
func ApplyModelRules(t *domain.Table, spec domain.ModelSpec) (*domain.Table, error) {
	out := t
	for _, d := range spec.Derived {
		minuend, ok := out.Column(d.Minuend)
		if !ok {
			return nil, fmt.Errorf("cannot derive %s: column %q missing", d.Name, d.Minuend)
		}
		subtrahend, ok := out.Column(d.Subtrahend)
		if !ok {
			return nil, fmt.Errorf("cannot derive %s: column %q missing", d.Name, d.Subtrahend)
		}

		derived := make([]float64, len(minuend))
		for i := range minuend {
			derived[i] = minuend[i] - subtrahend[i]
		}

		var err error
		if out, err = out.WithColumn(d.Name, derived); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropNonPositive marks non-positive values missing for models whose
// sensors report faults that way. It runs on resampled means, so a bucket
// mixing a fault with good readings keeps their average.
func DropNonPositive(t *domain.Table, spec domain.ModelSpec) *domain.Table {
	if !spec.PositiveOnly {
		return t
	}
	return t.Map(func(_ string, v float64) float64 {
		if v <= 0 {
			return nan
		}
		return v
	})
}
