package extract

import "fmt"

// ColumnSpec lists the cell indices read from each row, in field order.
// It is the single place where a variant's layout on the source page is described.
type ColumnSpec []int

// Default layouts of the source page. Column 3 of both tables is skipped.
var (
	CandidateColumns = ColumnSpec{0, 1, 2, 4, 5, 6}
	PartyColumns     = ColumnSpec{0, 1, 2, 4, 5, 6, 7, 8, 9, 10, 11}
)

// MaxIndex returns the highest index in the spec, or -1 when empty
func (c ColumnSpec) MaxIndex() int {
	max := -1
	for _, idx := range c {
		if idx > max {
			max = idx
		}
	}
	return max
}

// Validate checks the spec against the number of fields the variant expects
func (c ColumnSpec) Validate(width int) error {
	if len(c) == 0 {
		return fmt.Errorf("column spec is empty")
	}
	if len(c) != width {
		return fmt.Errorf("column spec has %d indices, expected %d", len(c), width)
	}
	seen := make(map[int]bool, len(c))
	for _, idx := range c {
		if idx < 0 {
			return fmt.Errorf("column index %d is negative", idx)
		}
		if seen[idx] {
			return fmt.Errorf("column index %d is repeated", idx)
		}
		seen[idx] = true
	}
	return nil
}
