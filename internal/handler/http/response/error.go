package response

import (
	"errors"
	"net/http"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/spreadsheet"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrFormatInvalid):
		BadRequest(w, "Attendance sheet format invalid: header row with 'Codigo' not found", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrCodeAmbiguous):
		Conflict(w, "Employee code present in multiple files, specify source_file")
	case errors.Is(err, attendance.ErrFileNotFound):
		NotFound(w, "Source file not loaded")
	case errors.Is(err, attendance.ErrInvalidCode):
		BadRequest(w, "Unknown attendance code", nil)
	case errors.Is(err, attendance.ErrInvalidDay):
		BadRequest(w, "Day outside the current period", nil)

	// Directory domain errors
	case errors.Is(err, directory.ErrPersonNotFound):
		NotFound(w, "Person not found")
	case errors.Is(err, directory.ErrDNIExists):
		Conflict(w, "DNI already registered")
	case errors.Is(err, directory.ErrSheetInvalid):
		BadRequest(w, "Master list sheet format invalid", nil)

	// Spreadsheet decoding errors
	case errors.Is(err, spreadsheet.ErrNoWorksheet):
		BadRequest(w, "Workbook has no worksheet", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
