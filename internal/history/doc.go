// Package history persists what the service did: one row per generation
// run and an audit trail of operator actions.
//
// Recorder is a scenes.Observer that writes each finished batch and cleanup
// to SQLite and, when configured, to InfluxDB. The repositories are used
// directly by the API to list runs and audit entries and by the API and
// CLI to record scene CRUD actions.
package history
