package directory

import "context"

// LookupService is the validation/enrichment dependency of the attendance
// pipeline: resolve a (DNI, name) pair to an active master-list entry.
type LookupService interface {
	// Lookup tries an exact DNI match among active entries first, then an
	// AND-combined name-token match. The outcome is always a LookupResult;
	// infrastructure failures surface as LookupUnavailable, never as an
	// error return.
	Lookup(ctx context.Context, dni, name string) LookupResult
}

// Service defines master-list management operations.
type Service interface {
	LookupService

	Create(ctx context.Context, req CreatePersonRequest) (PersonResponse, error)
	Get(ctx context.Context, id string) (PersonResponse, error)
	List(ctx context.Context, filter ListFilter) (ListPersonResponse, error)
	Update(ctx context.Context, id string, req UpdatePersonRequest) (PersonResponse, error)
	Delete(ctx context.Context, id string) error

	// ImportSheet ingests a header-keyed master-list worksheet; rows
	// missing DNI, name or occupation are skipped, not fatal.
	ImportSheet(ctx context.Context, grid [][]string) (SheetImportResult, error)

	// ExportRows returns header plus one row per person for the
	// master-list spreadsheet export.
	ExportRows(ctx context.Context) ([][]string, error)
}
