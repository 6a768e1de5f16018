// Saturn is a batch rule evaluation and governance engine for advertising
// automation.
//
// It periodically evaluates tenant-configured automation rules against
// ingested performance facts, producing:
//   - Alerts for dashboards (budget depletion, spend spikes, keyword
//     opportunities, wasted-spend terms)
//   - Vetted, idempotent mutation actions for a downstream applier
//
// Every candidate action passes through governance guardrails: tenant kill
// switches, plan entitlements, protected entities, daily quotas, and bid
// clamps.
//
// Usage:
//
//	# Run one evaluation cycle and exit
//	saturn run
//
//	# Start the cron-driven daemon with the metrics endpoint
//	saturn serve
//
//	# Validate a configuration file
//	saturn validate --config /path/to/saturn.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
