// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and both console and JSON encodings.
//
// # Run Correlation
//
// An update cycle touches several subsystems (fetcher, reconciliation engine,
// replica sync). The WithRunID helper attaches a unique run_id to the logger
// at the start of a cycle so the whole cycle can be traced as one unit.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("cycle started")
//
//	// At the start of an update cycle:
//	l := logger.WithRunID(log)
//	l.Info("fetching market history")
package logger
