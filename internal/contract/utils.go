package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/chartwire/internal/logging"
)

// Color variables for console output.
var (
	AlertColor  = color.New(color.FgRed, color.Bold) // AlertColor marks configuration alerts.
	ErrorColor  = color.New(color.FgMagenta)         // ErrorColor marks transient notifications.
	HeaderColor = color.New(color.FgCyan, color.Bold)
	MutedColor  = color.New(color.FgHiBlack)
)

// validIdentifier matches render targets and SQL identifiers.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is safe to use as a target or SQL identifier.
func IsIdentifier(s string) bool {
	return validIdentifier.MatchString(s)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logging.Error().Err(err).Msg(msg)
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning.
func LogWarn(msg string, err error) {
	logging.Warn().Err(err).Msg(msg)
}

// GetHostDBFilePath returns the path to the SQLite DB file backing the host.
func GetHostDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chartwire_host.db"
	}
	return filepath.Join(homeDir, ".chartwire_host.db")
}

// TruncateLabel truncates a label to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
