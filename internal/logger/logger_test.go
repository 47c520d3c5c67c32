package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		" INFO ":  INFO,
		"warning": WARN,
		"WARN":    WARN,
		"error":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, WARN)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %s", "warn")
	l.Error("shown %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "logger_test.go:")
	assert.Equal(t, 2, strings.Count(out, "\n"))

	l.SetLevel(DEBUG)
	assert.Equal(t, DEBUG, l.GetLevel())
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestInitLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := InitLogger(&Config{Level: INFO, EnableFile: true, LogDir: dir, LogFile: "test.log"})
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	defer Close()

	l.Info("hello %s", "file")
	assert.Same(t, l, GetLogger())
}
