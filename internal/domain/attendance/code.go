package attendance

// Code is a two-letter day-status token from the fixed vocabulary.
type Code string

const (
	CodePuntual        Code = "PU" // on time
	CodeTardanza       Code = "TA" // late
	CodeFalta          Code = "FA" // absence
	CodeNoLaborable    Code = "NL" // non-working day
	CodeAsistio        Code = "AS" // present (alternate on-time marker)
	CodeDescansoMedico Code = "DM" // medical leave
	CodePermiso        Code = "PE" // permit
	CodeVacaciones     Code = "VA" // vacation
	CodeDiaExtra       Code = "DE" // extra day worked
	CodeJustificado    Code = "JU" // justified absence
)

// Category describes how a code contributes to the per-record counters.
type Category int

const (
	CategoryNeutral Category = iota
	CategoryOnTime
	CategoryLate
	CategoryAbsence
	CategoryExtraDay
)

var categories = map[Code]Category{
	CodePuntual:        CategoryOnTime,
	CodeAsistio:        CategoryOnTime,
	CodeTardanza:       CategoryLate,
	CodeFalta:          CategoryAbsence,
	CodeDiaExtra:       CategoryExtraDay,
	CodeNoLaborable:    CategoryNeutral,
	CodeDescansoMedico: CategoryNeutral,
	CodePermiso:        CategoryNeutral,
	CodeVacaciones:     CategoryNeutral,
	CodeJustificado:    CategoryNeutral,
}

// Category returns the counting category of the code. Tokens outside the
// vocabulary are neutral: they settle in the day mapping as-is but never
// move a counter.
func (c Code) Category() Category {
	return categories[c]
}

// Valid reports whether the code belongs to the vocabulary.
func (c Code) Valid() bool {
	_, ok := categories[c]
	return ok
}

// AllCodes returns the vocabulary in its display order.
func AllCodes() []Code {
	return []Code{
		CodePuntual, CodeTardanza, CodeFalta, CodeNoLaborable, CodeAsistio,
		CodeDescansoMedico, CodePermiso, CodeVacaciones, CodeDiaExtra, CodeJustificado,
	}
}

// FontColor returns the hex font colour used for the code in exported day
// cells. Codes without a dedicated colour render black.
func (c Code) FontColor() string {
	switch c {
	case CodePuntual:
		return "00B050"
	case CodeTardanza:
		return "FF0000"
	case CodeFalta:
		return "C00000"
	case CodeNoLaborable:
		return "7F7F7F"
	default:
		return "000000"
	}
}
