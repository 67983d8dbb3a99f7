package history

import (
	"context"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/influxdb"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// writeTimeout bounds each observer write. Observer callbacks carry no
// context of their own.
const writeTimeout = 5 * time.Second

// Logger is the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics receives run summaries. *influxdb.Client implements it.
type Metrics interface {
	WriteGenerationRun(run influxdb.GenerationRun)
	WriteCleanup(cleanup influxdb.Cleanup)
}

// Recorder is a scenes.Observer that persists finished batches and
// cleanups. Failures are logged and never reach the engine.
type Recorder struct {
	runs    RunRepository
	audit   AuditRepository
	metrics Metrics
	source  string
	logger  Logger
}

var _ scenes.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder. metrics may be nil. source is recorded
// on cleanup audit entries, which carry no trigger of their own.
func NewRecorder(runs RunRepository, audit AuditRepository, metrics Metrics, source string) *Recorder {
	return &Recorder{
		runs:    runs,
		audit:   audit,
		metrics: metrics,
		source:  source,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// SceneCreated is a no-op: the run row carries every created scene.
func (r *Recorder) SceneCreated(scenes.GenerationResult) {}

// GenerationComplete stores the report, audits the run and writes metrics.
func (r *Recorder) GenerationComplete(report scenes.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.runs.Save(ctx, report); err != nil {
		r.logger.Error("failed to store generation run", "run_id", report.RunID, "error", err)
	}

	r.writeAudit(ctx, &AuditLog{
		Action:     ActionGenerate,
		EntityType: EntityGenerationRun,
		EntityID:   report.RunID,
		Source:     report.Trigger,
		Details: map[string]any{
			"created": report.Summary.Created,
			"skipped": report.Summary.Skipped,
			"failed":  report.Summary.Failed,
			"total":   report.Summary.Total,
		},
	})

	if r.metrics != nil {
		r.metrics.WriteGenerationRun(influxdb.GenerationRun{
			RunID:     report.RunID,
			Trigger:   report.Trigger,
			Created:   report.Summary.Created,
			Skipped:   report.Summary.Skipped,
			Failed:    report.Summary.Failed,
			Total:     report.Summary.Total,
			Duration:  time.Duration(report.DurationMS) * time.Millisecond,
			StartedAt: report.StartedAt,
		})
	}
}

// ScenesDeleted audits the cleanup and writes metrics.
func (r *Recorder) ScenesDeleted(report scenes.DeleteReport) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	failed := make([]string, 0, len(report.Failed))
	for _, f := range report.Failed {
		failed = append(failed, f.Scene)
	}
	r.writeAudit(ctx, &AuditLog{
		Action:     ActionCleanup,
		EntityType: EntityScene,
		Source:     r.source,
		Details: map[string]any{
			"deleted": report.Deleted,
			"failed":  failed,
		},
	})

	if r.metrics != nil {
		r.metrics.WriteCleanup(influxdb.Cleanup{
			Source:  r.source,
			Deleted: len(report.Deleted),
			Failed:  len(report.Failed),
			At:      time.Now(),
		})
	}
}

// RecordAction audits an operator action on a scene.
func (r *Recorder) RecordAction(ctx context.Context, action, scene, source string, details map[string]any) {
	r.writeAudit(ctx, &AuditLog{
		Action:     action,
		EntityType: EntityScene,
		EntityID:   scene,
		Source:     source,
		Details:    details,
	})
}

func (r *Recorder) writeAudit(ctx context.Context, log *AuditLog) {
	if err := r.audit.Create(ctx, log); err != nil {
		r.logger.Error("failed to write audit log", "action", log.Action, "entity_id", log.EntityID, "error", err)
	}
}
