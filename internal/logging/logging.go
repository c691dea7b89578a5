// Package logging constructs the process-wide zap logger. No globals: the
// logger is built once in main and passed down explicitly.
package logging

import "go.uber.org/zap"

// New returns a development (console, debug-level) logger when verbose is
// true, otherwise a production JSON logger at info level.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
