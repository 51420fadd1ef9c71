package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/internal/logging"
)

// ParseStyle converts an inline CSS style string such as
// "background-color: #fff; font-size: 12px" into a map keyed by camelCase names.
// Lines that do not split into exactly one name and one value are skipped. It never fails; on a parse panic it logs and returns an empty map.
func ParseStyle(styleText string) (result map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn().Str("style", styleText).Err(fmt.Errorf("%v", r)).Msg("Failed to parse style")
			result = map[string]string{}
		}
	}()

	result = make(map[string]string)
	for _, line := range strings.Split(styleText, ";") {
		pair := strings.Split(line, ":")
		if len(pair) != 2 {
			continue
		}
		result[camelCase(strings.TrimSpace(pair[0]))] = strings.TrimSpace(pair[1])
	}
	return result
}

// camelCase replaces every "-x" with "X", leaving a trailing dash untouched.
func camelCase(name string) string {
	if !strings.Contains(name, "-") {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '-' && i+1 < len(name) {
			b.WriteString(strings.ToUpper(name[i+1 : i+2]))
			i++
			continue
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
