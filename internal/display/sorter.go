package display

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agbru/procwatch/internal/sample"
)

// SortColumn selects the field rows are ordered by.
type SortColumn int

const (
	SortByCPU SortColumn = iota
	SortByMEM
	SortByPID
	SortByName
	SortByState
	numSortColumns
)

var columnNames = [...]string{"CPU", "MEM", "PID", "NAME", "STATE"}

// Sorter orders rows by one column. Ties are broken by ascending pid so the
// table does not jitter between frames.
type Sorter struct {
	Column     SortColumn
	Descending bool
}

// NewSorter returns the default ordering: highest CPU first.
func NewSorter() *Sorter {
	return &Sorter{Column: SortByCPU, Descending: true}
}

// Toggle flips the direction when col is already selected, otherwise it
// selects col in descending order.
func (s *Sorter) Toggle(col SortColumn) {
	if s.Column == col {
		s.Descending = !s.Descending
		return
	}
	s.Column = col
	s.Descending = true
}

// Next selects the following column, wrapping around.
func (s *Sorter) Next() {
	s.Column = (s.Column + 1) % numSortColumns
}

func (s *Sorter) ColumnName() string {
	if s.Column < 0 || s.Column >= numSortColumns {
		return columnNames[SortByCPU]
	}
	return columnNames[s.Column]
}

func (s *Sorter) Sort(rows []sample.ProcessSample) {
	slices.SortStableFunc(rows, func(a, b sample.ProcessSample) int {
		var c int
		switch s.Column {
		case SortByMEM:
			c = cmp.Compare(a.MemPercent, b.MemPercent)
		case SortByPID:
			c = cmp.Compare(a.PID, b.PID)
		case SortByName:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortByState:
			c = strings.Compare(a.State.String(), b.State.String())
		default:
			c = cmp.Compare(a.CPUPercent, b.CPUPercent)
		}
		if s.Descending {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.PID, b.PID)
		}
		return c
	})
}
