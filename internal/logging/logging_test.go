package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitJSONWritesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "debug", Format: "json", Output: buf})
	defer Init(DefaultConfig())

	Warn().Str("series", "Sales").Err(errors.New("boom")).Msg("fetch failed")

	out := buf.String()
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "Sales")
	assert.Contains(t, out, "boom")
}

func TestLevelFiltersEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "error", Format: "json", Output: buf})
	defer Init(DefaultConfig())

	Debug().Msg("hidden")
	assert.NotContains(t, buf.String(), "hidden")
}
