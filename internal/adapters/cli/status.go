package cli

import (
	"fmt"

	"github.com/fatih/color"
)

// colorStatus renders a document, attempt or step status. width pads the
// plain text before coloring so tabular output stays aligned.
func colorStatus(status string, width int) string {
	text := status
	if width > 0 {
		text = fmt.Sprintf("%-*s", width, status)
	}

	switch status {
	case "approved":
		return color.New(color.FgGreen).Sprint(text)
	case "rejected", "cancelled":
		return color.New(color.FgRed).Sprint(text)
	case "pending", "pending_approval", "in_progress":
		return color.New(color.FgYellow).Sprint(text)
	default:
		return text
	}
}
