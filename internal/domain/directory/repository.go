package directory

import "context"

// Repository defines data access for the persisted employee master list.
type Repository interface {
	Create(ctx context.Context, person Person) (Person, error)
	GetByID(ctx context.Context, id string) (Person, error)

	// GetActiveByDNI retrieves the active entry with the exact DNI.
	// Returns ErrPersonNotFound when there is none.
	GetActiveByDNI(ctx context.Context, dni string) (Person, error)

	// SearchActiveByName retrieves active entries whose name contains every
	// token (case-insensitive, AND-combined).
	SearchActiveByName(ctx context.Context, tokens []string) ([]Person, error)

	// List retrieves entries matching the filter with a total count.
	List(ctx context.Context, filter ListFilter) ([]Person, int64, error)

	Update(ctx context.Context, person Person) (Person, error)
	Delete(ctx context.Context, id string) error
}
