// Package influxdb records scene generation metrics in InfluxDB v2.
//
// Two measurements are written:
//
//	scene_generation  tags: run_id, trigger  fields: created, skipped, failed, total, duration_ms
//	scene_cleanup     fields: deleted, failed
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.WriteGenerationRun(influxdb.GenerationRun{RunID: report.RunID, Created: 12})
//
// Writes are non-blocking and batched (batch_size, flush_interval).
// Asynchronous write failures are delivered to the SetOnError callback.
// A nil *Client is a valid disabled client: writes are dropped and Close
// returns nil.
package influxdb
