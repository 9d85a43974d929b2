// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger; tests redirect or mute it.
var Logf func(format string, v ...any) = log.Printf

// Debugf logs only when verbose logging is enabled. The import path uses
// it for per-item detail that would swamp normal output.
var Debugf func(format string, v ...any) = func(string, ...any) {}

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// SetVerbose routes Debugf through the package logger when on, and back to
// a no-op when off.
func SetVerbose(on bool) {
	if on {
		Debugf = func(format string, v ...any) { Logf(format, v...) }
		return
	}
	Debugf = func(string, ...any) {}
}
