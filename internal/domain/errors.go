package domain

import "fmt"

// ValidationError reports an input score outside its allowed range. The
// affected region or request is skipped; the rest of the run is unaffected.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

// MissingDataError reports a region present in one source table but absent
// from the other. The region is excluded from the index table until the
// source data is resolved; the build itself continues.
type MissingDataError struct {
	FIPS    string
	Dataset string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("region %s missing from %s dataset", e.FIPS, e.Dataset)
}
