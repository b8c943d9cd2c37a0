package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
)

// fakeRepo is an in-memory directory.Repository. failWith makes every call
// return that error, standing in for a database outage.
type fakeRepo struct {
	people   map[string]directory.Person
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{people: make(map[string]directory.Person)}
}

func (r *fakeRepo) Create(ctx context.Context, person directory.Person) (directory.Person, error) {
	if r.failWith != nil {
		return directory.Person{}, r.failWith
	}
	for _, p := range r.people {
		if p.DNI == person.DNI {
			return directory.Person{}, directory.ErrDNIExists
		}
	}
	r.people[person.ID] = person
	return person, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (directory.Person, error) {
	if r.failWith != nil {
		return directory.Person{}, r.failWith
	}
	p, ok := r.people[id]
	if !ok {
		return directory.Person{}, directory.ErrPersonNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetActiveByDNI(ctx context.Context, dni string) (directory.Person, error) {
	if r.failWith != nil {
		return directory.Person{}, r.failWith
	}
	for _, p := range r.people {
		if p.DNI == dni && p.Active {
			return p, nil
		}
	}
	return directory.Person{}, directory.ErrPersonNotFound
}

func (r *fakeRepo) SearchActiveByName(ctx context.Context, tokens []string) ([]directory.Person, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []directory.Person
	for _, p := range r.people {
		if !p.Active {
			continue
		}
		name := strings.ToLower(p.Name)
		all := true
		for _, tok := range tokens {
			if !strings.Contains(name, tok) {
				all = false
				break
			}
		}
		if all {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(ctx context.Context, filter directory.ListFilter) ([]directory.Person, int64, error) {
	if r.failWith != nil {
		return nil, 0, r.failWith
	}
	var out []directory.Person
	for _, p := range r.people {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Update(ctx context.Context, person directory.Person) (directory.Person, error) {
	if r.failWith != nil {
		return directory.Person{}, r.failWith
	}
	if _, ok := r.people[person.ID]; !ok {
		return directory.Person{}, directory.ErrPersonNotFound
	}
	r.people[person.ID] = person
	return person, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.people[id]; !ok {
		return directory.ErrPersonNotFound
	}
	delete(r.people, id)
	return nil
}

func newTestService(repo directory.Repository) directory.Service {
	return NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedPerson(t *testing.T, svc directory.Service, dni, name string, active bool) directory.PersonResponse {
	t.Helper()
	p, err := svc.Create(context.Background(), directory.CreatePersonRequest{
		DNI:        dni,
		Name:       name,
		Occupation: "Operaria",
		Salary:     decimal.NewFromInt(1500),
		Active:     &active,
	})
	require.NoError(t, err)
	return p
}

// ========================================
// LOOKUP
// ========================================

func TestLookupByDNI(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE MAMANI", true)

	res := svc.Lookup(context.Background(), "45678901", "OTRO NOMBRE")
	require.Equal(t, directory.LookupFound, res.Status)
	assert.Equal(t, "ROSA QUISPE MAMANI", res.Person.Name, "DNI match wins over the name")
}

func TestLookupFallsBackToName(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE MAMANI", true)

	res := svc.Lookup(context.Background(), "", "quispe rosa")
	require.Equal(t, directory.LookupFound, res.Status)
	assert.Equal(t, "45678901", res.Person.DNI)
}

func TestLookupAmbiguousName(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE MAMANI", true)
	seedPerson(t, svc, "41111111", "ROSA QUISPE FLORES", true)

	res := svc.Lookup(context.Background(), "", "rosa quispe")
	assert.Equal(t, directory.LookupNotFound, res.Status)
	assert.Contains(t, res.Reason, "need a DNI")
}

func TestLookupIgnoresInactive(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE MAMANI", false)

	res := svc.Lookup(context.Background(), "45678901", "ROSA QUISPE MAMANI")
	assert.Equal(t, directory.LookupNotFound, res.Status)
}

func TestLookupUnavailableOnRepoFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("dial tcp: connection refused")
	svc := newTestService(repo)

	res := svc.Lookup(context.Background(), "45678901", "")
	assert.Equal(t, directory.LookupUnavailable, res.Status)
	assert.Contains(t, res.Reason, directory.ErrLookupUnavailable.Error())
	assert.Contains(t, res.Reason, "connection refused")
}

// ========================================
// CRUD
// ========================================

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), directory.CreatePersonRequest{
		DNI:        "123", // not 8 digits
		Name:       "ROSA",
		Occupation: "Operaria",
	})
	assert.Error(t, err)
}

func TestCreateDuplicateDNI(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE", true)

	_, err := svc.Create(context.Background(), directory.CreatePersonRequest{
		DNI:        "45678901",
		Name:       "OTRA ROSA",
		Occupation: "Operaria",
	})
	assert.ErrorIs(t, err, directory.ErrDNIExists)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(newFakeRepo())
	created := seedPerson(t, svc, "45678901", "ROSA QUISPE", true)

	salary := decimal.NewFromInt(1800)
	updated, err := svc.Update(context.Background(), created.ID, directory.UpdatePersonRequest{
		Salary: &salary,
	})
	require.NoError(t, err)
	assert.True(t, salary.Equal(updated.Salary))

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, directory.ErrPersonNotFound)
}

// ========================================
// SHEET IMPORT / EXPORT
// ========================================

func masterGrid() [][]string {
	return [][]string{
		{"DNI", "Nombre", "Ocupación", "Salario", "Fecha Ingreso", "Activo", "Sede", "Planta", "Celular", "Correo", "Rubro"},
		{"45678901", "ROSA QUISPE", "Operaria", "1,500.00", "2023-04-10", "Sí", "Planta Norte", "Textiles SAC", "987654321", "rosa@example.com", "Textil"},
		{"41234567", "LUIS HUAMAN", "Supervisor", "2500", "", "No", "", "", "", "", ""},
		{"", "SIN DNI", "Operario", "1000", "", "Sí", "", "", "", "", ""},
	}
}

func TestImportSheet(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	res, err := svc.ImportSheet(context.Background(), masterGrid())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 4")

	rosa, err := repo.GetActiveByDNI(context.Background(), "45678901")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(rosa.Salary))
	assert.Equal(t, "Textil", rosa.BusinessLine)
	assert.Equal(t, "2023-04-10", rosa.HireDate.Format("2006-01-02"))
}

func TestImportSheetUpdatesExisting(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedPerson(t, svc, "45678901", "ROSA QUISPE", true)

	res, err := svc.ImportSheet(context.Background(), masterGrid())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	list, err := svc.List(context.Background(), directory.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount, "matching DNI updates in place")
}

func TestImportSheetNoHeader(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.ImportSheet(context.Background(), [][]string{{"45678901", "ROSA"}})
	assert.ErrorIs(t, err, directory.ErrSheetInvalid)
}

func TestExportRows(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedPerson(t, svc, "45678901", "ROSA QUISPE", true)

	rows, err := svc.ExportRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "DNI", rows[0][0])
	assert.Equal(t, "45678901", rows[1][0])
	assert.Equal(t, "Sí", rows[1][5])
}
