package outwriter

import (
	"os"

	"github.com/huangsam/chartwire/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableLabelWidth calculates the maximum width of a category label in table
// output based on terminal width and the number of series columns.
func GetMaxTableLabelWidth(cfg *contract.Config, seriesCount int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for each value column with borders/padding
	baseWidth := 14*seriesCount + 10

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}
