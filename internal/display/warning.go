package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Locations  []string // Directories involved (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow. Color is suppressed
// automatically when the output is not a terminal.
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Locations) > 0 {
		b.WriteString("    ")
		if len(w.Locations) == 1 {
			b.WriteString("Location:\n")
		} else {
			b.WriteString("Locations:\n")
		}

		for i, loc := range w.Locations {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, loc))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	color.New(color.FgYellow).Fprint(out, b.String())
}
