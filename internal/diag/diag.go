package diag

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter collects the warnings and errors raised while translating a
// netlist. Diagnostics are written immediately to the configured writer and
// counted so callers can decide whether the pipeline may continue.
type Reporter struct {
	mu       sync.Mutex
	log      *zap.Logger
	errors   int
	warnings int
}

// NewReporter builds a Reporter emitting to w. format selects the encoding:
// "json" produces one JSON object per diagnostic, anything else a plain text
// line.
func NewReporter(w io.Writer, format string) *Reporter {
	encCfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.WarnLevel)
	return &Reporter{log: zap.New(core)}
}

// Warning reports a recoverable problem. at names the offending module, net
// or cell so the message is actionable.
func (r *Reporter) Warning(at, msg string) {
	r.mu.Lock()
	r.warnings++
	r.mu.Unlock()
	r.log.Warn(msg, zap.String("at", at))
}

// Warningf is Warning with a format string.
func (r *Reporter) Warningf(at, format string, args ...interface{}) {
	r.Warning(at, fmt.Sprintf(format, args...))
}

// Error reports a problem that invalidates the compilation result.
func (r *Reporter) Error(at, msg string) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
	r.log.Error(msg, zap.String("at", at))
}

// Errorf reports an error without a dedicated scope.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
	r.log.Error(fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error-level diagnostic was emitted.
func (r *Reporter) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors > 0
}

// ErrorCount returns the number of error diagnostics emitted so far.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

// WarningCount returns the number of warning diagnostics emitted so far.
func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings
}
