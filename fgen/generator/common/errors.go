package common

import "errors"

// Configuration errors fail a whole run before any filesystem side effect.
var (
	ErrNoValidLevels  = errors.New("no valid folder levels configured")
	ErrEmptyNameList  = errors.New("name list is empty")
	ErrEmptyTable     = errors.New("table data is empty")
	ErrNoValidColumns = errors.New("no valid table columns configured")
)

// IsConfigurationError reports whether err terminates a run with zero side
// effects, as opposed to a per-record or per-file accounting failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoValidLevels) ||
		errors.Is(err, ErrEmptyNameList) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrNoValidColumns)
}
