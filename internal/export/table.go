package export

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// WriteTable renders at most maxRows evenly spaced samples, always including
// the first and the last.
func WriteTable[T dynamo.Scalar](w io.Writer, res *integrators.Result[T], maxRows int) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Header(res)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, n := range SampleIndices(res.Len(), maxRows) {
		t.Row(Row(res, n)...)
	}

	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

// SampleIndices picks up to max indices out of n, evenly spaced.
func SampleIndices(n, max int) []int {
	if n == 0 {
		return nil
	}
	if max <= 0 || n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if max == 1 {
		return []int{n - 1}
	}
	idx := make([]int, max)
	for k := range idx {
		idx[k] = k * (n - 1) / (max - 1)
	}
	return idx
}
