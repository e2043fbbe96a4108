package tui

import (
	"fmt"
	"io"
	"strings"
)

// renderRow writes one numbered list entry: a title line marked when
// selected, a dimmed detail line, then any pre-styled extra lines
func renderRow(w io.Writer, selected bool, index int, title, detail string, extra ...string) {
	var b strings.Builder
	if selected {
		b.WriteString(SelectedStyle.Render(fmt.Sprintf("  ➤ %d. %s", index+1, title)))
	} else {
		b.WriteString(NormalStyle.Render(fmt.Sprintf("    %d. %s", index+1, title)))
	}
	b.WriteString("\n" + DimStyle.Render("      "+detail))
	for _, line := range extra {
		b.WriteString("\n" + line)
	}
	fmt.Fprint(w, b.String())
}
