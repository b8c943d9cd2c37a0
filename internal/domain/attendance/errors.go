package attendance

import "errors"

// Attendance domain errors
var (
	// ErrFormatInvalid - the uploaded grid has no recognizable header row.
	// Fatal to that file only; other files in the batch are unaffected.
	ErrFormatInvalid = errors.New("unrecognized sheet format: header row \"Codigo\" not found")

	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrCodeAmbiguous - the employee code appears in more than one loaded
	// file, so an edit must name the source file it targets.
	ErrCodeAmbiguous = errors.New("employee code present in multiple files, source file required")
	ErrFileNotFound  = errors.New("source file not loaded")
	ErrInvalidCode   = errors.New("attendance code not in vocabulary")
	ErrInvalidDay    = errors.New("day outside the current period")
)
