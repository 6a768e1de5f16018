// Package logging provides structured logging built on log/slog.
//
// The logger emits JSON by default, suitable for log aggregation, and
// supports a text format for local development. Context helpers carry
// cycle, tenant, and rule identifiers through evaluation so every log
// line in a cycle is correlatable.
//
// Example:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	logger.Info("cycle started", "cycle_id", cycleID)
package logging
