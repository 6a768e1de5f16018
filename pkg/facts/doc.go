// Package facts defines read-only access to the performance fact store:
// time-bucketed advertising aggregates that evaluators consume. The engine
// never writes facts; ingestion is a separate pipeline.
//
// Two implementations are provided: an in-memory source for embedding and
// tests, and a SQLite-backed source in the sqlitestore subpackage.
package facts
