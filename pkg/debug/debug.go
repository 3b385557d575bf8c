// Package debug provides conditional debug logging and operator warnings for
// procmap.
//
// Debug logging is enabled by setting the PROCMAP_DEBUG environment variable:
//
//	PROCMAP_DEBUG=1 procmap export --out map.svg
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Warnf and Errorf are always active. They are the operator-facing log for
// recoverable problems (bad fit bounds, missing render targets) that must not
// interrupt the animation loop.
//
// Usage:
//
//	import "github.com/vanderheijden86/procmap/pkg/debug"
//
//	func relayout() {
//	    defer debug.LogEnterExit("relayout")()
//	    debug.Log("laying out %d stages", n)
//	}
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[PROCMAP_DEBUG] "

var (
	mu sync.Mutex
	// enabled is true when PROCMAP_DEBUG env var is set
	enabled bool
	// out receives both debug and operator messages
	out io.Writer = os.Stderr
	// logger writes to out with [PROCMAP_DEBUG] prefix
	logger *log.Logger
	// ops writes warnings and errors regardless of enabled
	ops = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	if os.Getenv("PROCMAP_DEBUG") != "" {
		enabled = true
		logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(out, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug and operator output. The TUI points this at a log
// file so the alternate screen is left alone.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
	ops.SetOutput(w)
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Trace is an alias for LogEnterExit for convenience.
var Trace = LogEnterExit

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}

// Warnf reports a recoverable problem to the operator log.
func Warnf(format string, args ...any) {
	ops.Printf("warning: %s", fmt.Sprintf(format, args...))
}

// Errorf reports a skipped operation to the operator log.
func Errorf(format string, args ...any) {
	ops.Printf("error: %s", fmt.Sprintf(format, args...))
}
