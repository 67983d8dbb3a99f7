package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementGeneration = "scene_generation"
	MeasurementCleanup    = "scene_cleanup"
)

// GenerationRun is the summary of one generation batch.
type GenerationRun struct {
	RunID     string
	Trigger   string
	Created   int
	Skipped   int
	Failed    int
	Total     int
	Duration  time.Duration
	StartedAt time.Time
}

// Cleanup is the summary of one DeleteGeneratedScenes call. Source names
// the process that ran it ("daemon", "cli").
type Cleanup struct {
	Source  string
	Deleted int
	Failed  int
	At      time.Time
}

// WriteGenerationRun records a scene_generation point tagged with the run
// ID and trigger. The write is non-blocking.
//
// Example line protocol:
//
//	scene_generation,run_id=6f1c...,trigger=api created=12i,skipped=3i,failed=0i,total=15i,duration_ms=840i
func (c *Client) WriteGenerationRun(run GenerationRun) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(generationPoint(run))
}

// WriteCleanup records a scene_cleanup point tagged with its source.
//
//	scene_cleanup,source=daemon deleted=14i,failed=1i
func (c *Client) WriteCleanup(cleanup Cleanup) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(cleanupPoint(cleanup))
}

func generationPoint(run GenerationRun) *write.Point {
	tags := map[string]string{"run_id": run.RunID}
	if run.Trigger != "" {
		tags["trigger"] = run.Trigger
	}
	return write.NewPoint(
		MeasurementGeneration,
		tags,
		map[string]any{
			"created":     run.Created,
			"skipped":     run.Skipped,
			"failed":      run.Failed,
			"total":       run.Total,
			"duration_ms": run.Duration.Milliseconds(),
		},
		stamp(run.StartedAt),
	)
}

func cleanupPoint(cleanup Cleanup) *write.Point {
	source := cleanup.Source
	if source == "" {
		source = "unknown"
	}
	return write.NewPoint(
		MeasurementCleanup,
		map[string]string{"source": source},
		map[string]any{
			"deleted": cleanup.Deleted,
			"failed":  cleanup.Failed,
		},
		stamp(cleanup.At),
	)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
