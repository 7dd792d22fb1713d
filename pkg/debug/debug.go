// Package debug is readtree's trace log. It is silent unless READTREE_DEBUG
// is set:
//
//	READTREE_DEBUG=1 readtree outline.yaml 2>trace.log
//
// Lines go to stderr with a microsecond timestamp. The full-screen UI moves
// them to a file with SetOutput.
package debug

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

var (
	on  atomic.Bool
	out = log.New(os.Stderr, "[readtree] ", log.Ltime|log.Lmicroseconds)
)

func init() {
	on.Store(os.Getenv("READTREE_DEBUG") != "")
}

func Enabled() bool { return on.Load() }

// SetEnabled turns tracing on or off regardless of the environment.
func SetEnabled(e bool) { on.Store(e) }

// SetOutput sends trace lines to w. It does not enable tracing.
func SetOutput(w io.Writer) { out.SetOutput(w) }

// Log writes one printf-style trace line.
func Log(format string, args ...any) {
	if on.Load() {
		out.Printf(format, args...)
	}
}

// LogTiming records how long name took.
func LogTiming(name string, d time.Duration) {
	if on.Load() {
		out.Printf("%s took %v", name, d)
	}
}

// LogEnterExit traces entry now and exit, with elapsed time, when the
// returned function runs.
//
//	defer debug.LogEnterExit("Refresh")()
func LogEnterExit(name string) func() {
	if !on.Load() {
		return func() {}
	}
	out.Printf("-> %s", name)
	start := time.Now()
	return func() { out.Printf("<- %s (%v)", name, time.Since(start)) }
}
