// Package monitoring holds the diagnostic side channel: the package logger
// and periodic progress reporting. Nothing here may influence results.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// (stderr) and may be replaced by SetLogger; tests use it to capture or
// mute run diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
