// Package logging provides a minimal logging seam for code built on
// top of p2pnet. No other package in this module imports it: identity,
// handshake and session return typed errors and never log.
package logging

import "log"

// Logger is satisfied by anything that can format and emit a line.
type Logger interface {
	Printf(format string, v ...any)
}

// StdLogger routes through the standard library's global logger.
type StdLogger struct{}

// NewStdLogger returns a Logger backed by the standard library "log" package.
func NewStdLogger() Logger {
	return StdLogger{}
}

func (StdLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Nop discards everything. Useful in tests that don't want stdout noise.
type Nop struct{}

func (Nop) Printf(string, ...any) {}
