package editor

import (
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/table-api/internal/types"
)

// Column names a table column; values match the JSON keys of types.Row.
type Column string

const (
	ColumnName      Column = "name"
	ColumnAge       Column = "age"
	ColumnGender    Column = "gender"
	ColumnCity      Column = "city"
	ColumnBirthDate Column = "birthDate"
	ColumnEducation Column = "education"
)

// Columns lists the table columns in display order.
var Columns = []Column{
	ColumnName, ColumnAge, ColumnGender, ColumnCity, ColumnBirthDate, ColumnEducation,
}

// displayDateLayout is how birth dates are rendered in read mode.
const displayDateLayout = "January 2, 2006"

type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// Sorting is the single-column sort state.
type Sorting struct {
	Column    Column
	Direction SortDirection
}

func (m *Model) Sorting() Sorting { return m.sorting }

// ToggleSort cycles a column through ascending, descending and unsorted.
// Switching to another column starts it at ascending.
func (m *Model) ToggleSort(col Column) {
	if m.sorting.Column != col || m.sorting.Direction == SortNone {
		m.sorting = Sorting{Column: col, Direction: SortAsc}
		return
	}
	if m.sorting.Direction == SortAsc {
		m.sorting.Direction = SortDesc
		return
	}
	m.sorting = Sorting{}
}

// SetFilter sets the global keyword filter.
func (m *Model) SetFilter(keyword string) { m.filter = keyword }

func (m *Model) Filter() string { return m.filter }

// Visible returns the rows to display: filtered by the global keyword,
// then sorted.
func (m *Model) Visible() []types.Row {
	keyword := strings.ToLower(strings.TrimSpace(m.filter))

	out := make([]types.Row, 0, len(m.rows))
	for _, row := range m.rows {
		if keyword == "" || matches(row, keyword) {
			out = append(out, row)
		}
	}

	sortRows(out, m.sorting)
	return out
}

// Cell renders a column the way read mode displays it.
func Cell(row types.Row, col Column) string {
	switch col {
	case ColumnName:
		return row.Name
	case ColumnAge:
		return strconv.Itoa(int(row.Age))
	case ColumnGender:
		return row.Gender
	case ColumnCity:
		return row.City
	case ColumnBirthDate:
		if t, err := time.Parse(types.DateLayout, row.BirthDate); err == nil {
			return t.Format(displayDateLayout)
		}
		return row.BirthDate
	case ColumnEducation:
		return row.Education
	}
	return ""
}

// matches reports whether any cell contains keyword (already lower-cased).
// Birth dates match in both the ISO and the display form.
func matches(row types.Row, keyword string) bool {
	for _, col := range Columns {
		if strings.Contains(strings.ToLower(Cell(row, col)), keyword) {
			return true
		}
	}
	return strings.Contains(row.BirthDate, keyword)
}

// compare returns -1, 0 or 1. Age compares numerically, birth dates as ISO
// strings (which sort chronologically), everything else case-insensitively.
func compare(a, b types.Row, col Column) int {
	switch col {
	case ColumnAge:
		switch {
		case a.Age < b.Age:
			return -1
		case a.Age > b.Age:
			return 1
		}
		return 0
	case ColumnBirthDate:
		return strings.Compare(a.BirthDate, b.BirthDate)
	}
	return strings.Compare(strings.ToLower(Cell(a, col)), strings.ToLower(Cell(b, col)))
}
