package attendance

import (
	"sort"
	"strings"
	"sync"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
)

// recordStore holds the session's attendance records keyed by (source file,
// employee code), plus the shared settings. Employee codes are only unique
// within one imported file; the same code imported from two files is two
// records, which is what lets a July and an August file consolidate instead
// of overwriting each other. One mutex serializes every mutation, which
// gives the single-writer-per-record discipline the edit path relies on.
//
// Each source file carries a generation counter. Removing a file bumps its
// generation, so an import that started before the removal finds a stale
// generation at commit time and its late rows are discarded instead of
// resurrecting the file.
type recordStore struct {
	mu       sync.Mutex
	records  map[string]*attendance.Record
	order    []string // record keys in insertion order
	files    map[string]*fileState
	settings attendance.Settings
}

// recordKey builds the composite store key. "\x00" cannot appear in a file
// name or an employee code, so the key is unambiguous.
func recordKey(sourceFile, employeeCode string) string {
	return sourceFile + "\x00" + employeeCode
}

type fileState struct {
	generation uint64
	loaded     bool
}

func newRecordStore() *recordStore {
	return &recordStore{
		records:  make(map[string]*attendance.Record),
		files:    make(map[string]*fileState),
		settings: attendance.DefaultSettings(),
	}
}

// Settings returns a copy of the current settings.
func (s *recordStore) Settings() attendance.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings applies fn to the settings under the lock and returns the
// result. fn also receives every record so a penalty change can recompute
// derived fields in the same critical section.
func (s *recordStore) UpdateSettings(fn func(*attendance.Settings, []*attendance.Record)) attendance.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings, s.all())
	return s.settings
}

// Generation returns the current generation of a source file, registering
// the file if it has never been seen.
func (s *recordStore) Generation(sourceFile string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileState(sourceFile).generation
}

// GrowDays widens the period, never shrinking it.
func (s *recordStore) GrowDays(days int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if days > s.settings.DaysInPeriod {
		s.settings.DaysInPeriod = days
	}
	return s.settings.DaysInPeriod
}

// Commit adds the imported records if the source file's generation still
// matches the one captured when the import started. A duplicate employee
// code within the same file replaces the earlier row; the same code from a
// different file is left untouched.
func (s *recordStore) Commit(sourceFile string, generation uint64, records []*attendance.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.fileState(sourceFile)
	if fs.generation != generation {
		return false
	}
	fs.loaded = true

	for _, rec := range records {
		key := recordKey(rec.SourceFile, rec.EmployeeCode)
		if _, exists := s.records[key]; !exists {
			s.order = append(s.order, key)
		}
		s.records[key] = rec
	}
	return true
}

// Mutate runs fn on one record under the lock. With an empty sourceFile the
// code must be unique across loaded files; otherwise the exact (file, code)
// record is targeted. Returns attendance.ErrRecordNotFound when nothing
// matches and attendance.ErrCodeAmbiguous when the bare code matches more
// than one file.
func (s *recordStore) Mutate(employeeCode, sourceFile string, fn func(*attendance.Record) error) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.find(employeeCode, sourceFile)
	if err != nil {
		return attendance.Record{}, err
	}
	if err := fn(rec); err != nil {
		return attendance.Record{}, err
	}
	return rec.Clone(), nil
}

func (s *recordStore) find(employeeCode, sourceFile string) (*attendance.Record, error) {
	if sourceFile != "" {
		rec, ok := s.records[recordKey(sourceFile, employeeCode)]
		if !ok {
			return nil, attendance.ErrRecordNotFound
		}
		return rec, nil
	}

	var match *attendance.Record
	for _, key := range s.order {
		rec := s.records[key]
		if rec.EmployeeCode != employeeCode {
			continue
		}
		if match != nil {
			return nil, attendance.ErrCodeAmbiguous
		}
		match = rec
	}
	if match == nil {
		return nil, attendance.ErrRecordNotFound
	}
	return match, nil
}

// RemoveFile bumps the file's generation and drops every record sharing its
// provenance. Returns attendance.ErrFileNotFound when the file was never
// loaded.
func (s *recordStore) RemoveFile(sourceFile string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.files[sourceFile]
	if !ok || !fs.loaded {
		return 0, attendance.ErrFileNotFound
	}
	fs.generation++
	fs.loaded = false

	removed := 0
	kept := s.order[:0]
	for _, key := range s.order {
		if s.records[key].SourceFile == sourceFile {
			delete(s.records, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
	return removed, nil
}

// Files lists the loaded source files with their record counts.
func (s *recordStore) Files() []attendance.FileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range s.records {
		counts[rec.SourceFile]++
	}

	var infos []attendance.FileInfo
	for name, fs := range s.files {
		if fs.loaded {
			infos = append(infos, attendance.FileInfo{Name: name, Records: counts[name]})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Months lists the distinct period labels in first-seen order.
func (s *recordStore) Months() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var months []string
	for _, key := range s.order {
		m := s.records[key].Month
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	return months
}

// Snapshot returns deep copies of the records matching the filter in
// insertion order, together with the settings they were computed under.
func (s *recordStore) Snapshot(filter attendance.ListFilter) ([]attendance.Record, attendance.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []attendance.Record
	for _, key := range s.order {
		rec := s.records[key]
		if matchesFilter(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	return out, s.settings
}

func (s *recordStore) fileState(sourceFile string) *fileState {
	fs, ok := s.files[sourceFile]
	if !ok {
		fs = &fileState{}
		s.files[sourceFile] = fs
	}
	return fs
}

func (s *recordStore) all() []*attendance.Record {
	out := make([]*attendance.Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

func matchesFilter(rec *attendance.Record, filter attendance.ListFilter) bool {
	if filter.Month != "" && filter.Month != "TODOS" && rec.Month != filter.Month {
		return false
	}
	if filter.Search == "" {
		return true
	}
	term := strings.ToLower(filter.Search)
	for _, field := range []string{rec.EmployeeCode, rec.Name, rec.DNI, rec.Occupation} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
