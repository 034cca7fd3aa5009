package render

import (
	"fmt"
	"strings"

	"github.com/tmonheim/chainview/pkg/alignment"
)

// Marker characters for the middle row of a text alignment.
const (
	markMatch    = '|'
	markMismatch = '.'
	markGap      = ' '
)

// FormatAlignment renders display lines as classic three-row text blocks:
//
//	Query      10  ACGT--AC  17
//	               |||.  ||
//	Sbjct      20  ACGATTAC  27
func FormatAlignment(lines []alignment.Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "Query  %6d  %s  %d\n", l.QueryStart, l.Query, l.QueryEnd)
		fmt.Fprintf(&sb, "               %s\n", markers(l.Cells))
		fmt.Fprintf(&sb, "Sbjct  %6d  %s  %d\n", l.SubjectStart, l.Subject, l.SubjectEnd)
	}
	return sb.String()
}

func markers(cells []alignment.Cell) string {
	marks := make([]byte, len(cells))
	for i, c := range cells {
		switch c {
		case alignment.CellMatch:
			marks[i] = markMatch
		case alignment.CellMismatch:
			marks[i] = markMismatch
		default:
			marks[i] = markGap
		}
	}
	return string(marks)
}
