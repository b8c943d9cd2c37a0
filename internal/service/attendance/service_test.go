package attendance

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
)

// fakeLookup resolves DNIs out of a fixed map and lets a test hook run in
// the middle of an import.
type fakeLookup struct {
	people map[string]*directory.Person
	// status forces every lookup's outcome when non-empty.
	status directory.LookupStatus
	hook   func()
}

func (f *fakeLookup) Lookup(ctx context.Context, dni, name string) directory.LookupResult {
	if f.hook != nil {
		f.hook()
	}
	if f.status == directory.LookupUnavailable {
		return directory.LookupResult{Status: directory.LookupUnavailable, Reason: "directory lookup unavailable"}
	}
	if p, ok := f.people[dni]; ok {
		return directory.LookupResult{Status: directory.LookupFound, Person: p}
	}
	return directory.LookupResult{Status: directory.LookupNotFound}
}

func testPeople() map[string]*directory.Person {
	return map[string]*directory.Person{
		"45678901": {
			DNI:          "45678901",
			Name:         "ROSA QUISPE MAMANI",
			Occupation:   "Operaria de Planta",
			Salary:       decimal.NewFromInt(1600),
			Active:       true,
			Site:         "Planta Norte",
			BusinessLine: "Textil",
		},
		"41234567": {
			DNI:    "41234567",
			Name:   "LUIS HUAMAN",
			Salary: decimal.Zero,
			Active: true,
		},
	}
}

func newTestService(lookup directory.LookupService) attendance.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(lookup, logger, time.Second)
}

func mustImport(t *testing.T, svc attendance.Service, grid [][]string, sourceFile string) attendance.ImportResult {
	t.Helper()
	res, err := svc.Import(context.Background(), grid, sourceFile)
	require.NoError(t, err)
	return res
}

// ========================================
// IMPORT
// ========================================

func TestImport(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	res := mustImport(t, svc, sampleGrid(), "agosto_planta.xlsx")

	assert.Equal(t, "agosto_planta", res.ReportName)
	assert.Equal(t, "AGOSTO", res.Month)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 0, res.Rejected)
	assert.Equal(t, 28, res.DaysInPeriod, "a 3-day file never shrinks the default period")

	list, err := svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list.Data, 2)

	rosa := list.Data[0]
	assert.Equal(t, "ROSA QUISPE MAMANI", rosa.Name, "directory name wins over the file")
	assert.Equal(t, "Operaria de Planta", rosa.Occupation)
	assert.True(t, decimal.NewFromInt(1600).Equal(rosa.MonthlySalary), "directory salary overrides the file")
	assert.True(t, decimal.NewFromInt(50).Equal(rosa.DailySalary), "daily salary stays as the file gave it")
	assert.Equal(t, "Planta Norte", rosa.Site)
	// 1 late x 5 + 1 absence x 50
	assert.True(t, decimal.NewFromInt(55).Equal(rosa.AttendanceDeduction))

	luis := list.Data[1]
	assert.True(t, decimal.NewFromInt(2500).Equal(luis.MonthlySalary), "zero directory salary falls back to the file")
}

func TestImportUnknownDNIRejected(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	grid := [][]string{
		{"Codigo", "Nombre", "DNI", "Ocupacion", "Sueldo", "Diario", "Dia 1"},
		{"E001", "ROSA QUISPE", "45678901", "Operaria", "1500", "50", "PU"},
		{"E003", "NADIE", "99999999", "", "1000", "33", "PU"},
	}
	res := mustImport(t, svc, grid, "julio.xlsx")

	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "99999999", res.Errors[0].Key)
	assert.Equal(t, 2, res.Errors[0].Row)
}

func TestImportLookupUnavailableIsNotNotFound(t *testing.T) {
	svc := newTestService(&fakeLookup{status: directory.LookupUnavailable})

	res := mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 2, res.Rejected)
	for _, e := range res.Errors {
		assert.Contains(t, e.Reason, "unavailable")
	}
}

func TestImportMissingHeader(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	_, err := svc.Import(context.Background(), [][]string{{"MES DE MAYO"}}, "mayo.xlsx")
	assert.ErrorIs(t, err, attendance.ErrFormatInvalid)

	list, err := svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount, "a structurally invalid file adds no records")
}

func julioGrid() [][]string {
	return [][]string{
		{"PLANILLA MES DE JULIO 2025"},
		{},
		{"Codigo", "Nombre", "DNI", "Ocupacion", "Sueldo", "Diario", "Dia 1", "Dia 2"},
		{"E001", "ROSA QUISPE", "45678901", "Operaria", "1500", "50", "PU", "PU"},
	}
}

func TestImportConsolidatesAcrossFiles(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	mustImport(t, svc, julioGrid(), "julio.xlsx")
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	list, err := svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalCount, "the same code in two files is two records")

	assert.Equal(t, []string{"JULIO", "AGOSTO"}, svc.Months(context.Background()))
	assert.Equal(t, []attendance.FileInfo{
		{Name: "agosto.xlsx", Records: 2},
		{Name: "julio.xlsx", Records: 1},
	}, svc.Files(context.Background()))

	list, err = svc.List(context.Background(), attendance.ListFilter{Month: "JULIO"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "julio.xlsx", list.Data[0].SourceFile)

	removed, err := svc.RemoveFile(context.Background(), "julio.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"AGOSTO"}, svc.Months(context.Background()))

	list, err = svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount, "the other month's records survive the removal")
}

func TestImportReimportReplacesWithinFile(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	mustImport(t, svc, sampleGrid(), "agosto.xlsx")
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	list, err := svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount, "re-importing a file replaces its own records only")
}

func TestImportDiscardedWhenFileRemovedMidFlight(t *testing.T) {
	lookup := &fakeLookup{people: testPeople()}
	svc := newTestService(lookup)

	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	// The second pass of the same file triggers the removal from inside a
	// lookup, after the import captured its generation.
	var once sync.Once
	lookup.hook = func() {
		once.Do(func() {
			_, err := svc.RemoveFile(context.Background(), "agosto.xlsx")
			require.NoError(t, err)
		})
	}

	res := mustImport(t, svc, sampleGrid(), "agosto.xlsx")
	assert.Equal(t, 0, res.Accepted, "rows of a removed file are discarded on commit")

	list, err := svc.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

// ========================================
// EDITS
// ========================================

func TestEditDayCounterTransition(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	// E001 starts PU/TA/FA. Turn the absence into an on-time day.
	rec, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 3, Code: "PU"})
	require.NoError(t, err)

	assert.Equal(t, 2, rec.OnTime)
	assert.Equal(t, 1, rec.Late)
	assert.Equal(t, 0, rec.Absent)
	assert.Equal(t, "PU", rec.Days[3])
	// Only the late penalty remains: 1 x 5.
	assert.True(t, decimal.NewFromInt(5).Equal(rec.AttendanceDeduction))
}

func TestEditDayMatchesRecount(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	edits := []attendance.EditDayRequest{
		{Day: 1, Code: "TA"},
		{Day: 2, Code: "DE"},
		{Day: 3, Code: "NL"},
		{Day: 1, Code: "FA"},
		{Day: 15, Code: "PU"},
		{Day: 15, Code: "PU"},
	}
	for _, e := range edits {
		_, err := svc.EditDay(context.Background(), "E001", e)
		require.NoError(t, err)
	}

	records, _ := svc.Snapshot(context.Background(), attendance.ListFilter{Search: "E001"})
	require.Len(t, records, 1)
	assert.Equal(t, records[0].Recount(), records[0].Counts,
		"incremental transitions must equal a full recount")
}

func TestEditDayNonWorkingToAbsence(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	records, _ := svc.Snapshot(context.Background(), attendance.ListFilter{Search: "E001"})
	require.Len(t, records, 1)
	before := records[0].Financials.AttendanceDeduction

	// Day 10 is unset and reads as NL; turning it into an absence must cost
	// exactly one daily rate.
	rec, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 10, Code: "FA"})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Absent)
	assert.True(t, before.Add(rec.DailySalary).Equal(rec.AttendanceDeduction))
}

func TestEditDayValidation(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	_, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 1, Code: "XX"})
	assert.Error(t, err)

	_, err = svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 99, Code: "PU"})
	assert.ErrorIs(t, err, attendance.ErrInvalidDay)

	_, err = svc.EditDay(context.Background(), "E404", attendance.EditDayRequest{Day: 1, Code: "PU"})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestEditTargetsOneFileWhenCodeRepeats(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, julioGrid(), "julio.xlsx")
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	// E001 exists in both months; a bare code cannot pick one.
	_, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 1, Code: "FA"})
	assert.ErrorIs(t, err, attendance.ErrCodeAmbiguous)

	bonus := decimal.NewFromInt(100)
	_, err = svc.UpdateRecord(context.Background(), "E001", attendance.UpdateRecordRequest{Bonus: &bonus})
	assert.ErrorIs(t, err, attendance.ErrCodeAmbiguous)

	rec, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{
		Day: 1, Code: "FA", SourceFile: "julio.xlsx",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Absent)
	assert.Equal(t, "julio.xlsx", rec.SourceFile)

	records, _ := svc.Snapshot(context.Background(), attendance.ListFilter{Month: "AGOSTO", Search: "E001"})
	require.Len(t, records, 1)
	assert.Equal(t, attendance.Code("PU"), records[0].DayCode(1), "the other file's record is untouched")
}

func TestEditUniqueCodeNeedsNoSourceFile(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	rec, err := svc.EditDay(context.Background(), "E001", attendance.EditDayRequest{Day: 1, Code: "TA"})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Late)
}

func TestUpdateRecord(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	scheme := "afp"
	bonus := decimal.NewFromInt(100)
	rec, err := svc.UpdateRecord(context.Background(), "E001", attendance.UpdateRecordRequest{
		PensionScheme: &scheme,
		Bonus:         &bonus,
	})
	require.NoError(t, err)

	// 1600 x 0.117 under the directory-enriched salary.
	assert.True(t, decimal.RequireFromString("187.2").Equal(rec.PensionDeduction))
	assert.True(t, bonus.Equal(rec.Bonus))
}

// ========================================
// FILES AND SETTINGS
// ========================================

func TestRemoveFileCascade(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	removed, err := svc.RemoveFile(context.Background(), "agosto.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.Empty(t, svc.Files(context.Background()))
	assert.Empty(t, svc.Months(context.Background()))

	_, err = svc.RemoveFile(context.Background(), "agosto.xlsx")
	assert.ErrorIs(t, err, attendance.ErrFileNotFound)
}

func TestUpdateSettingsPenaltyRecomputesAll(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	penalty := decimal.NewFromInt(20)
	_, err := svc.UpdateSettings(context.Background(), attendance.UpdateSettingsRequest{
		LatePenalty: &penalty,
	})
	require.NoError(t, err)

	records, _ := svc.Snapshot(context.Background(), attendance.ListFilter{Search: "E001"})
	require.Len(t, records, 1)
	// 1 late x 20 + 1 absence x 50
	assert.True(t, decimal.NewFromInt(70).Equal(records[0].Financials.AttendanceDeduction))
}

func TestUpdateSettingsDaysNeverShrink(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})

	smaller := 10
	resp, err := svc.UpdateSettings(context.Background(), attendance.UpdateSettingsRequest{
		DaysInPeriod: &smaller,
	})
	require.NoError(t, err)
	assert.Equal(t, 28, resp.DaysInPeriod)

	bigger := 31
	resp, err = svc.UpdateSettings(context.Background(), attendance.UpdateSettingsRequest{
		DaysInPeriod: &bigger,
	})
	require.NoError(t, err)
	assert.Equal(t, 31, resp.DaysInPeriod)
}

func TestListFilterAndPagination(t *testing.T) {
	svc := newTestService(&fakeLookup{people: testPeople()})
	mustImport(t, svc, sampleGrid(), "agosto.xlsx")

	list, err := svc.List(context.Background(), attendance.ListFilter{Search: "rosa"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "E001", list.Data[0].EmployeeCode)

	list, err = svc.List(context.Background(), attendance.ListFilter{Month: "TODOS"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)

	list, err = svc.List(context.Background(), attendance.ListFilter{Month: "SETIEMBRE"})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)

	list, err = svc.List(context.Background(), attendance.ListFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "E002", list.Data[0].EmployeeCode)
	assert.Equal(t, 2, list.TotalCount)
}
