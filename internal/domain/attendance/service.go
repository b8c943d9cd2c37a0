package attendance

import (
	"context"
)

// Service defines the attendance session operations: spreadsheet ingestion,
// record listing and edits, source-file removal and shared settings.
type Service interface {
	// Import ingests one decoded worksheet grid. Structural failures return
	// ErrFormatInvalid and add zero records; row-level rejections are
	// tallied inside the result and never abort the file.
	Import(ctx context.Context, grid [][]string, sourceFile string) (ImportResult, error)

	// List retrieves current records with search/month filter and pagination.
	List(ctx context.Context, filter ListFilter) (ListRecordResponse, error)

	// Months returns the distinct period labels currently loaded.
	Months(ctx context.Context) []string

	// Files returns the currently loaded source files.
	Files(ctx context.Context) []FileInfo

	// EditDay replaces a single day's code on one record and recomputes its
	// derived fields. The counter transition is O(1) per edit.
	EditDay(ctx context.Context, employeeCode string, req EditDayRequest) (RecordResponse, error)

	// UpdateRecord changes a record's payroll type, pension scheme, bonus
	// or site, then recomputes its financials. Counts are unaffected.
	UpdateRecord(ctx context.Context, employeeCode string, req UpdateRecordRequest) (RecordResponse, error)

	// RemoveFile drops every record whose provenance is the given source
	// file and returns how many were removed. Rows of that file still in
	// flight in a concurrent import are discarded on commit.
	RemoveFile(ctx context.Context, sourceFile string) (int, error)

	// Settings returns the current session settings.
	Settings(ctx context.Context) SettingsResponse

	// UpdateSettings changes shared settings. A late-penalty change
	// recomputes every record's attendance deduction; days-in-period never
	// shrinks.
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// Snapshot returns deep copies of the records matching the filter
	// (pagination ignored), in stable insertion order, plus the settings
	// they were computed under. Aggregation and export read through this.
	Snapshot(ctx context.Context, filter ListFilter) ([]Record, Settings)
}
