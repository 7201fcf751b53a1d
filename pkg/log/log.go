// Package log is cmd/qrsdp's process logger: a thin wrapper over the
// standard log package that prefixes a component name and appends
// key=value pairs to each line, matching the teacher's top-level
// cmd/*/main.go convention (plain log.Printf/log.Fatalf, e.g.
// backend/cmd/dex-server/main.go) rather than the teacher's fuller
// field-accumulating Logger interface (WithField chaining, Debug/Fatal
// levels) — nothing in this repo's call sites uses any of that. The
// library packages that log (pkg/book, pkg/sink, pkg/session) call the
// standard log package directly rather than this one (SPEC_FULL.md
// "AMBIENT STACK / Logging").
package log

import (
	"fmt"
	"log"
	"strings"
)

// Logger emits leveled, component-prefixed lines via the standard log
// package.
type Logger struct {
	name string
}

// NewLogger returns a Logger prefixed with name.
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

// Info logs an informational line.
func (l *Logger) Info(msg string, kv ...interface{}) { l.emit("INFO", msg, kv...) }

// Warn logs a warning line.
func (l *Logger) Warn(msg string, kv ...interface{}) { l.emit("WARN", msg, kv...) }

// Error logs an error line.
func (l *Logger) Error(msg string, kv ...interface{}) { l.emit("ERROR", msg, kv...) }

func (l *Logger) emit(level, msg string, kv ...interface{}) {
	log.Printf("[%s] %s: %s%s", level, l.name, msg, formatFields(kv))
}

// formatFields renders trailing key=value pairs, dropping a dangling
// unpaired final argument rather than panicking on it.
func formatFields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
