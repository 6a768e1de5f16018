// Package scheduler runs evaluation cycles and retention pruning on cron
// schedules. Cycle ticks never overlap; a tick arriving mid-cycle is
// dropped with a warning.
package scheduler
