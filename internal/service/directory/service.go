package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/database"
	"github.com/planilla-hr/planilla-backend-go/internal/repository/postgresql"
)

const hireDateLayout = "2006-01-02"

type service struct {
	repo   directory.Repository
	db     *database.DB
	logger *slog.Logger
}

// NewService creates the master-list service on top of a repository. db may
// be nil, in which case sheet-import upserts run without a transaction.
func NewService(repo directory.Repository, db *database.DB, logger *slog.Logger) directory.Service {
	return &service{repo: repo, db: db, logger: logger}
}

// ========================================
// LOOKUP
// ========================================

func (s *service) Lookup(ctx context.Context, dni, name string) directory.LookupResult {
	if dni != "" {
		person, err := s.repo.GetActiveByDNI(ctx, dni)
		switch {
		case err == nil:
			return found(person)
		case !errors.Is(err, directory.ErrPersonNotFound):
			return unavailable(err)
		}
	}

	tokens := nameTokens(name)
	if len(tokens) == 0 {
		return directory.LookupResult{
			Status: directory.LookupNotFound,
			Reason: "no DNI and no usable name to match",
		}
	}

	matches, err := s.repo.SearchActiveByName(ctx, tokens)
	if err != nil {
		return unavailable(err)
	}
	if len(matches) == 0 {
		return directory.LookupResult{
			Status: directory.LookupNotFound,
			Reason: "no active directory entry matched",
		}
	}
	if len(matches) > 1 {
		return directory.LookupResult{
			Status: directory.LookupNotFound,
			Reason: fmt.Sprintf("name matched %d active entries, need a DNI", len(matches)),
		}
	}
	return found(matches[0])
}

func found(p directory.Person) directory.LookupResult {
	return directory.LookupResult{Status: directory.LookupFound, Person: &p}
}

func unavailable(err error) directory.LookupResult {
	return directory.LookupResult{
		Status: directory.LookupUnavailable,
		Reason: fmt.Sprintf("%s: %v", directory.ErrLookupUnavailable, err),
	}
}

func nameTokens(name string) []string {
	var tokens []string
	for _, t := range strings.Fields(name) {
		tokens = append(tokens, strings.ToLower(t))
	}
	return tokens
}

// ========================================
// CRUD
// ========================================

func (s *service) Create(ctx context.Context, req directory.CreatePersonRequest) (directory.PersonResponse, error) {
	if err := req.Validate(); err != nil {
		return directory.PersonResponse{}, err
	}

	person := directory.Person{
		ID:           uuid.NewString(),
		DNI:          req.DNI,
		Name:         strings.TrimSpace(req.Name),
		Occupation:   strings.TrimSpace(req.Occupation),
		Salary:       req.Salary,
		Active:       true,
		Site:         req.Site,
		Employer:     req.Employer,
		BusinessLine: req.BusinessLine,
		Phone:        req.Phone,
		Email:        req.Email,
	}
	if req.Active != nil {
		person.Active = *req.Active
	}
	if req.HireDate != "" {
		d, _ := time.Parse(hireDateLayout, req.HireDate)
		person.HireDate = d
	}

	created, err := s.repo.Create(ctx, person)
	if err != nil {
		return directory.PersonResponse{}, err
	}

	s.logger.Info("person created",
		slog.String("id", created.ID),
		slog.String("dni", created.DNI))
	return toPersonResponse(created), nil
}

func (s *service) Get(ctx context.Context, id string) (directory.PersonResponse, error) {
	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return directory.PersonResponse{}, err
	}
	return toPersonResponse(person), nil
}

func (s *service) List(ctx context.Context, filter directory.ListFilter) (directory.ListPersonResponse, error) {
	filter.Normalize()

	people, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return directory.ListPersonResponse{}, err
	}

	resp := directory.ListPersonResponse{
		Data:       make([]directory.PersonResponse, 0, len(people)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, p := range people {
		resp.Data = append(resp.Data, toPersonResponse(p))
	}
	return resp, nil
}

func (s *service) Update(ctx context.Context, id string, req directory.UpdatePersonRequest) (directory.PersonResponse, error) {
	if err := req.Validate(); err != nil {
		return directory.PersonResponse{}, err
	}

	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return directory.PersonResponse{}, err
	}

	applyUpdate(&person, req)

	updated, err := s.repo.Update(ctx, person)
	if err != nil {
		return directory.PersonResponse{}, err
	}
	return toPersonResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("person deleted", slog.String("id", id))
	return nil
}

func applyUpdate(p *directory.Person, req directory.UpdatePersonRequest) {
	if req.DNI != nil {
		p.DNI = *req.DNI
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Occupation != nil {
		p.Occupation = strings.TrimSpace(*req.Occupation)
	}
	if req.Salary != nil {
		p.Salary = *req.Salary
	}
	if req.HireDate != nil {
		d, _ := time.Parse(hireDateLayout, *req.HireDate)
		p.HireDate = d
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.Site != nil {
		p.Site = *req.Site
	}
	if req.Employer != nil {
		p.Employer = *req.Employer
	}
	if req.BusinessLine != nil {
		p.BusinessLine = *req.BusinessLine
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
}

// ========================================
// SPREADSHEET IMPORT / EXPORT
// ========================================

// sheetHeaders is the master-list worksheet layout, shared by import and
// export. Import matches them case-insensitively.
var sheetHeaders = []string{
	"DNI", "Nombre", "Ocupación", "Salario", "Fecha Ingreso",
	"Activo", "Sede", "Planta", "Celular", "Correo", "Rubro",
}

func (s *service) ImportSheet(ctx context.Context, grid [][]string) (directory.SheetImportResult, error) {
	if len(grid) == 0 {
		return directory.SheetImportResult{}, directory.ErrSheetInvalid
	}

	cols := make(map[string]int, len(grid[0]))
	for i, h := range grid[0] {
		cols[normalizeHeader(h)] = i
	}
	if _, ok := cols["dni"]; !ok {
		return directory.SheetImportResult{}, directory.ErrSheetInvalid
	}

	var result directory.SheetImportResult
	for i, row := range grid[1:] {
		cell := func(header string) string {
			idx, ok := cols[header]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		dni := cell("dni")
		name := cell("nombre")
		occupation := cell("ocupacion")
		if dni == "" && name == "" {
			continue
		}
		if dni == "" || name == "" || occupation == "" {
			result.Skipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: dni, name and occupation are required", i+2))
			continue
		}

		salary, err := decimal.NewFromString(strings.ReplaceAll(cell("salario"), ",", ""))
		if err != nil {
			salary = decimal.Zero
		}

		person := directory.Person{
			DNI:          dni,
			Name:         name,
			Occupation:   occupation,
			Salary:       salary,
			Active:       !strings.EqualFold(cell("activo"), "No"),
			Site:         cell("sede"),
			Employer:     cell("planta"),
			BusinessLine: cell("rubro"),
			Phone:        cell("celular"),
			Email:        cell("correo"),
		}
		if d, perr := time.Parse(hireDateLayout, cell("fecha ingreso")); perr == nil {
			person.HireDate = d
		}

		if err := s.upsert(ctx, person); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Imported++
	}

	s.logger.Info("master list imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// upsert matches an existing active entry by DNI and updates it, creating a
// new entry otherwise. With a database attached the read and write share one
// transaction.
func (s *service) upsert(ctx context.Context, person directory.Person) error {
	if s.db == nil {
		return s.upsertRow(ctx, person)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return s.upsertRow(txCtx, person)
	})
}

func (s *service) upsertRow(ctx context.Context, person directory.Person) error {
	existing, err := s.repo.GetActiveByDNI(ctx, person.DNI)
	switch {
	case err == nil:
		person.ID = existing.ID
		person.CreatedAt = existing.CreatedAt
		_, err = s.repo.Update(ctx, person)
		return err
	case errors.Is(err, directory.ErrPersonNotFound):
		person.ID = uuid.NewString()
		_, err = s.repo.Create(ctx, person)
		return err
	default:
		return err
	}
}

func (s *service) ExportRows(ctx context.Context) ([][]string, error) {
	filter := directory.ListFilter{Limit: 200}
	filter.Normalize()

	rows := [][]string{sheetHeaders}
	for {
		people, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, p := range people {
			active := "Sí"
			if !p.Active {
				active = "No"
			}
			hireDate := ""
			if !p.HireDate.IsZero() {
				hireDate = p.HireDate.Format(hireDateLayout)
			}
			rows = append(rows, []string{
				p.DNI, p.Name, p.Occupation, p.Salary.String(), hireDate,
				active, p.Site, p.Employer, p.Phone, p.Email, p.BusinessLine,
			})
		}
		if int64(len(rows)-1) >= total || len(people) == 0 {
			return rows, nil
		}
		filter.Page++
	}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(h)
}

func toPersonResponse(p directory.Person) directory.PersonResponse {
	hireDate := ""
	if !p.HireDate.IsZero() {
		hireDate = p.HireDate.Format(hireDateLayout)
	}
	return directory.PersonResponse{
		ID:           p.ID,
		DNI:          p.DNI,
		Name:         p.Name,
		Occupation:   p.Occupation,
		Salary:       p.Salary,
		HireDate:     hireDate,
		Active:       p.Active,
		Site:         p.Site,
		Employer:     p.Employer,
		BusinessLine: p.BusinessLine,
		Phone:        p.Phone,
		Email:        p.Email,
	}
}
