package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/database"
)

const personColumns = `id, dni, name, occupation, salary, hire_date, active,
	site, employer, business_line, phone, email, created_at, updated_at`

type directoryRepositoryImpl struct {
	db *database.DB
}

func NewDirectoryRepository(db *database.DB) directory.Repository {
	return &directoryRepositoryImpl{db: db}
}

// Create implements directory.Repository.
func (r *directoryRepositoryImpl) Create(ctx context.Context, person directory.Person) (directory.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO people (
			id, dni, name, occupation, salary, hire_date, active,
			site, employer, business_line, phone, email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + personColumns

	row := q.QueryRow(ctx, query,
		person.ID, person.DNI, person.Name, person.Occupation, person.Salary,
		nullableDate(person.HireDate), person.Active, person.Site,
		person.Employer, person.BusinessLine, person.Phone, person.Email,
	)
	created, err := scanPerson(row)
	if err != nil {
		if isUniqueViolation(err) {
			return directory.Person{}, directory.ErrDNIExists
		}
		return directory.Person{}, fmt.Errorf("failed to create person with dni %s: %w", person.DNI, err)
	}
	return created, nil
}

// GetByID implements directory.Repository.
func (r *directoryRepositoryImpl) GetByID(ctx context.Context, id string) (directory.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1`

	person, err := scanPerson(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Person{}, directory.ErrPersonNotFound
		}
		return directory.Person{}, fmt.Errorf("failed to get person with id %s: %w", id, err)
	}
	return person, nil
}

// GetActiveByDNI implements directory.Repository.
func (r *directoryRepositoryImpl) GetActiveByDNI(ctx context.Context, dni string) (directory.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + personColumns + ` FROM people WHERE dni = $1 AND active = TRUE`

	person, err := scanPerson(q.QueryRow(ctx, query, dni))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Person{}, directory.ErrPersonNotFound
		}
		return directory.Person{}, fmt.Errorf("failed to get active person with dni %s: %w", dni, err)
	}
	return person, nil
}

// SearchActiveByName implements directory.Repository.
func (r *directoryRepositoryImpl) SearchActiveByName(ctx context.Context, tokens []string) ([]directory.Person, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"active = TRUE"}
	args := make([]any, 0, len(tokens))
	for i, tok := range tokens {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", i+1))
		args = append(args, "%"+tok+"%")
	}

	query := `SELECT ` + personColumns + ` FROM people WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search people by name: %w", err)
	}
	defer rows.Close()

	return collectPeople(rows)
}

// List implements directory.Repository.
func (r *directoryRepositoryImpl) List(ctx context.Context, filter directory.ListFilter) ([]directory.Person, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	var args []any
	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions,
			fmt.Sprintf("(dni ILIKE %s OR name ILIKE %s OR occupation ILIKE %s OR site ILIKE %s)", p, p, p, p))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM people WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count people: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := `SELECT ` + personColumns + ` FROM people WHERE ` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people, err := collectPeople(rows)
	if err != nil {
		return nil, 0, err
	}
	return people, total, nil
}

// Update implements directory.Repository.
func (r *directoryRepositoryImpl) Update(ctx context.Context, person directory.Person) (directory.Person, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE people
		SET dni = $1, name = $2, occupation = $3, salary = $4, hire_date = $5,
			active = $6, site = $7, employer = $8, business_line = $9,
			phone = $10, email = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING ` + personColumns

	row := q.QueryRow(ctx, query,
		person.DNI, person.Name, person.Occupation, person.Salary,
		nullableDate(person.HireDate), person.Active, person.Site,
		person.Employer, person.BusinessLine, person.Phone, person.Email,
		person.ID,
	)
	updated, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Person{}, directory.ErrPersonNotFound
		}
		if isUniqueViolation(err) {
			return directory.Person{}, directory.ErrDNIExists
		}
		return directory.Person{}, fmt.Errorf("failed to update person with id %s: %w", person.ID, err)
	}
	return updated, nil
}

// Delete implements directory.Repository.
func (r *directoryRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrPersonNotFound
	}
	return nil
}

func scanPerson(row pgx.Row) (directory.Person, error) {
	var p directory.Person
	var hireDate *time.Time
	err := row.Scan(
		&p.ID, &p.DNI, &p.Name, &p.Occupation, &p.Salary, &hireDate, &p.Active,
		&p.Site, &p.Employer, &p.BusinessLine, &p.Phone, &p.Email,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return directory.Person{}, err
	}
	if hireDate != nil {
		p.HireDate = *hireDate
	}
	return p, nil
}

func collectPeople(rows pgx.Rows) ([]directory.Person, error) {
	var people []directory.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return people, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
