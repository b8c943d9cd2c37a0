package directory

import "errors"

// Directory domain errors
var (
	ErrPersonNotFound = errors.New("person not found")
	ErrDNIExists      = errors.New("DNI already registered")

	// ErrLookupUnavailable - the directory itself could not be reached (or
	// timed out). Distinguishable from a plain not-found.
	ErrLookupUnavailable = errors.New("employee directory unavailable")

	// ErrSheetInvalid - an imported master-list worksheet has no usable
	// header row.
	ErrSheetInvalid = errors.New("master list sheet format invalid")
)
