package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Level is the slog level used across the module
type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug // -4
	LevelInfo    = slog.LevelInfo  // 0
	LevelWarning = slog.LevelWarn  // 4
	LevelError   = slog.LevelError // 8
	LevelFatal   = slog.Level(12)  // 12
)

var (
	Logger          *slog.Logger
	errorSampleRate int32 = 100 // one in N warnings and errors reaches the handler
	programLevel          = new(slog.LevelVar)
)

// Counters for the metrics endpoint (incremented regardless of sampling)
var (
	TotalErrors    atomic.Int64
	TotalWarnings  atomic.Int64
	Total5xxErrors atomic.Int64
	Total4xxErrors atomic.Int64
	Total400Errors atomic.Int64
	Total404Errors atomic.Int64
	Total422Errors atomic.Int64
	SlowRequests   atomic.Int64

	MalformedRules   atomic.Int64
	RecordsValidated atomic.Int64
	InvalidReports   atomic.Int64
	FilesGenerated   atomic.Int64
)

// Options configures the process-wide logger
type Options struct {
	Level      string    // TRACE, DEBUG, INFO, WARN, ERROR, FATAL
	Format     string    // json or text
	Output     io.Writer // defaults to stdout
	SampleRate int       // 1 logs every warning and error
}

func init() {
	// LOG_LEVEL and ERROR_SAMPLE_RATE apply until Setup is called
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = LevelInfo
	}
	programLevel.Set(level)

	if rate, err := strconv.Atoi(os.Getenv("ERROR_SAMPLE_RATE")); err == nil && rate > 0 {
		atomic.StoreInt32(&errorSampleRate, int32(rate))
	}

	setHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
}

// Setup replaces the handler installed at startup.
// Empty fields keep their current values.
func Setup(opts Options) error {
	if opts.Level != "" {
		level, err := ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		programLevel.Set(level)
	}
	if opts.SampleRate > 0 {
		atomic.StoreInt32(&errorSampleRate, int32(opts.SampleRate))
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: programLevel}
	switch strings.ToLower(opts.Format) {
	case "", "json":
		setHandler(slog.NewJSONHandler(out, handlerOpts))
	case "text":
		setHandler(slog.NewTextHandler(out, handlerOpts))
	default:
		return fmt.Errorf("unknown log format: %s", opts.Format)
	}
	return nil
}

func setHandler(h slog.Handler) {
	Logger = slog.New(h)
	slog.SetDefault(Logger)
}

// SetLevel changes the minimum level at runtime
func SetLevel(level slog.Level) {
	programLevel.Set(level)
}

// GetLevel returns the minimum level
func GetLevel() slog.Level {
	return programLevel.Level()
}

// SampleRate returns the current warning/error sample rate
func SampleRate() int {
	return int(atomic.LoadInt32(&errorSampleRate))
}

// ParseLevel maps a case-insensitive level name onto a Level.
// An empty name means INFO.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(levelStr) {
	case "", "INFO":
		return LevelInfo, nil
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", levelStr)
	}
}

// shouldSample lets one in every errorSampleRate calls through
func shouldSample() bool {
	rate := atomic.LoadInt32(&errorSampleRate)
	if rate <= 1 {
		return true
	}
	return rand.Intn(int(rate)) == 0
}

// Trace is never sampled
func Trace(msg string, args ...any) {
	Logger.Log(context.Background(), LevelTrace, msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn always counts the warning but only writes a sampled subset
func Warn(msg string, args ...any) {
	TotalWarnings.Add(1)
	if shouldSample() {
		Logger.Warn(msg, args...)
	}
}

// Error always counts the error but only writes a sampled subset
func Error(msg string, args ...any) {
	TotalErrors.Add(1)
	if shouldSample() {
		Logger.Error(msg, args...)
	}
}

// Fatal logs and exits with status 1
func Fatal(msg string, args ...any) {
	Logger.Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}

// WarnMalformedRule counts a rule string that failed to parse
func WarnMalformedRule(rule string, err error) {
	MalformedRules.Add(1)
	Warn("malformed rule", "rule", rule, "error", err)
}

// CountValidation records one validated record and whether its report was invalid
func CountValidation(valid bool) {
	RecordsValidated.Add(1)
	if !valid {
		InvalidReports.Add(1)
	}
}

// CountFile records one generated or patched project file
func CountFile() {
	FilesGenerated.Add(1)
}

// ErrorHttp5xx increments the 5xx counters
func ErrorHttp5xx() {
	Total5xxErrors.Add(1)
	TotalErrors.Add(1)
}

// WarnHttp4xx increments the 4xx counters
func WarnHttp4xx(status int) {
	Total4xxErrors.Add(1)
	TotalWarnings.Add(1)

	switch status {
	case 400:
		Total400Errors.Add(1)
	case 404:
		Total404Errors.Add(1)
	case 422:
		Total422Errors.Add(1)
	}
}

// WarnSlowRequest increments the slow request counter
func WarnSlowRequest() {
	SlowRequests.Add(1)
	TotalWarnings.Add(1)
}
