package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarning},
		{"WARNING", LevelWarning},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	got, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, LevelInfo, got)
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "debug", Format: "json", Output: &buf, SampleRate: 1}))
	t.Cleanup(func() { _ = Setup(Options{Level: "info", SampleRate: 100}) })

	Debug("compiled", "ruleSet", "emp")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "compiled", entry["msg"])
	assert.Equal(t, "emp", entry["ruleSet"])
	assert.Equal(t, LevelDebug, GetLevel())
	assert.Equal(t, 1, SampleRate())
}

func TestSetup_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "warn", Format: "text", Output: &buf, SampleRate: 1}))
	t.Cleanup(func() { _ = Setup(Options{Level: "info", SampleRate: 100}) })

	Info("hidden")
	Warn("shown", "field", "age")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"), out)
}

func TestSetup_Invalid(t *testing.T) {
	assert.Error(t, Setup(Options{Level: "nope"}))
	assert.Error(t, Setup(Options{Format: "xml"}))
}

func TestCounters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Output: &buf, SampleRate: 1}))
	t.Cleanup(func() { _ = Setup(Options{SampleRate: 100}) })

	malformed := MalformedRules.Load()
	warnings := TotalWarnings.Load()
	WarnMalformedRule("a|b", errors.New("bad"))
	assert.Equal(t, malformed+1, MalformedRules.Load())
	assert.Equal(t, warnings+1, TotalWarnings.Load())

	validated, invalid := RecordsValidated.Load(), InvalidReports.Load()
	CountValidation(true)
	CountValidation(false)
	assert.Equal(t, validated+2, RecordsValidated.Load())
	assert.Equal(t, invalid+1, InvalidReports.Load())

	notFound := Total404Errors.Load()
	WarnHttp4xx(404)
	assert.Equal(t, notFound+1, Total404Errors.Load())

	files := FilesGenerated.Load()
	CountFile()
	assert.Equal(t, files+1, FilesGenerated.Load())
}
