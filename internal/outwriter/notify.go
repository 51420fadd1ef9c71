package outwriter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
)

// ConsoleNotifier prints transient notifications to the console.
type ConsoleNotifier struct {
	W         io.Writer
	UseColors bool

	mu    sync.Mutex
	count int
}

var _ contract.Notifier = &ConsoleNotifier{} // Compile-time check

// NewConsoleNotifier creates a notifier on stderr.
func NewConsoleNotifier(useColors bool) *ConsoleNotifier {
	return &ConsoleNotifier{W: os.Stderr, UseColors: useColors}
}

// Error implements the Notifier interface.
func (n *ConsoleNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++

	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	if n.UseColors {
		line = contract.ErrorColor.Sprint(line)
	}
	_, _ = fmt.Fprintln(n.W, line)
}

// Count returns the number of notifications shown.
func (n *ConsoleNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// PrintAlert prints a configuration alert for a target.
func PrintAlert(w io.Writer, target, message string, useColors bool) {
	header := fmt.Sprintf("⚠️  %s", target)
	if useColors {
		header = contract.AlertColor.Sprint(header)
	}
	_, _ = fmt.Fprintf(w, "%s\n%s\n", header, message)
}
