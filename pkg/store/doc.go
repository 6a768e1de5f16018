// Package store persists the engine's outputs: alerts, queued actions, and
// rule run telemetry. Rows are write-once from the engine's perspective;
// dashboards and the downstream applier read them, and the applier owns all
// action status transitions after queuing.
//
// Duplicate action suppression is the store's responsibility: InsertAction
// enforces uniqueness on the idempotency key and reports whether the row was
// actually inserted, which is the engine's only cross-invocation defense
// against overlapping cycles.
//
// Two backends are provided: MemoryStore for tests and embedding, and
// SQLiteStore for durable single-instance deployments. SQLiteStore also
// serves rule and governance records so a deployment can run entirely from
// one database file.
package store
