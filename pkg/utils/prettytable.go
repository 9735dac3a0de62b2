package utils

import (
	"bytes"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/utils/term"
)

const minColumnWidth = 8

type Row []string

type PrettyTable struct {
	rows []Row
}

func (t *PrettyTable) AddRow(c ...string) {
	t.rows = append(t.rows, c)
}

// Render lays out the table with borders. Columns covered by limitWidths are
// at most that wide (-1 means unlimited), the first column after them takes
// the rest of the terminal width. Longer cells are wrapped.
func (t *PrettyTable) Render(limitWidths []int) string {
	if len(t.rows) == 0 {
		return ""
	}
	cols := len(t.rows[0])

	maxWidth := func(col int, maxW int) int {
		w := 0
		for _, l := range t.rows {
			if len(l[col]) > w {
				w = len(l[col])
			}
		}
		if maxW != -1 && maxW < w {
			w = maxW
		}
		return w
	}
	subStr := func(str string, s int, e int) string {
		if s > len(str) {
			s = len(str)
		}
		if e > len(str) {
			e = len(str)
		}
		return str[s:e]
	}

	widths := make([]int, cols)
	widthSum := 0
	for i := 0; i < cols; i++ {
		if i < len(limitWidths) {
			widths[i] = maxWidth(i, limitWidths[i])
		} else {
			widths[i] = maxWidth(i, -1)
		}
		widthSum += widths[i]
	}
	if len(limitWidths) < cols {
		i := len(limitWidths)
		rest := term.GetWidth() - (widthSum - widths[i]) - (cols-1)*3 - 4
		if rest < minColumnWidth {
			rest = minColumnWidth
		}
		if rest < widths[i] {
			widths[i] = rest
		}
	}
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = 1
		}
	}

	hsep := "+-"
	for i := 0; i < cols; i++ {
		hsep += strings.Repeat("-", widths[i])
		if i != cols-1 {
			hsep += "-+-"
		}
	}
	hsep += "-+\n"

	buf := bytes.NewBuffer(nil)
	buf.WriteString(hsep)
	pos := make([]int, cols)
	for _, l := range t.rows {
		for i := 0; i < cols; i++ {
			pos[i] = 0
		}

		for first := true; ; first = false {
			anyLess := false
			for i := 0; i < cols; i++ {
				if pos[i] < len(l[i]) {
					anyLess = true
				}
			}
			if !anyLess && !first {
				break
			}

			buf.WriteString("| ")
			for i := 0; i < cols; i++ {
				x := subStr(l[i], pos[i], pos[i]+widths[i])
				newLine := strings.IndexRune(x, '\n')
				if newLine != -1 {
					x = x[:newLine]
					pos[i] += 1
				}
				pos[i] += len(x)
				buf.WriteString(x)
				buf.WriteString(strings.Repeat(" ", widths[i]-len(x)))
				if i != cols-1 {
					buf.WriteString(" | ")
				}
			}
			buf.WriteString(" |\n")
			if !anyLess {
				break
			}
		}
		buf.WriteString(hsep)
	}
	return buf.String()
}
