// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// Generator is the tool name that is written into generated files.
const Generator = "sieverom"

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
