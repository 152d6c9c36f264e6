package managers

import (
	"fmt"
	"strings"
)

// warnf reports recoverable conditions without aborting the caller
func warnf(format string, args ...any) {
	fmt.Printf("warning: "+format+"\n", args...)
}

// tableString renders an aligned-column diagnostic table for the manager
// String() summaries
func tableString(title string, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i, h := range headers {
		fmt.Fprintf(&b, "| %-*s ", widths[i], h)
	}
	b.WriteString("|\n")
	for i := range headers {
		fmt.Fprintf(&b, "|%s", strings.Repeat("-", widths[i]+2))
	}
	b.WriteString("|\n")
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(&b, "| %-*s ", widths[i], cell)
		}
		b.WriteString("|\n")
	}
	return b.String()
}

func dimsString(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
