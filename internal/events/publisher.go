package events

import (
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/mqtt"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// Logger is the logging interface used by this package.
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

// Publisher sends JSON payloads. *mqtt.Client implements it.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// Envelope is the payload of every published event.
type Envelope struct {
	Event     string    `json:"event"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// MQTTPublisher publishes engine notifications. Publish failures are
// logged; the engine never sees them.
type MQTTPublisher struct {
	pub    Publisher
	source string
	topics mqtt.Topics
	logger Logger
	now    func() time.Time
}

var _ scenes.Observer = (*MQTTPublisher)(nil)

// NewMQTTPublisher creates a publisher. source identifies this production
// in every envelope.
func NewMQTTPublisher(pub Publisher, source string) *MQTTPublisher {
	return &MQTTPublisher{
		pub:    pub,
		source: source,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the publisher.
func (p *MQTTPublisher) SetLogger(logger Logger) {
	if logger != nil {
		p.logger = logger
	}
}

func (p *MQTTPublisher) SceneCreated(result scenes.GenerationResult) {
	p.publish(p.topics.SceneCreated(), scenes.EventSceneCreated, result)
}

func (p *MQTTPublisher) GenerationComplete(report scenes.Report) {
	p.publish(p.topics.GenerationComplete(), scenes.EventGenerationComplete, report)
}

func (p *MQTTPublisher) ScenesDeleted(report scenes.DeleteReport) {
	p.publish(p.topics.ScenesDeleted(), scenes.EventScenesDeleted, report)
}

func (p *MQTTPublisher) publish(topic, event string, data any) {
	env := Envelope{
		Event:     event,
		Source:    p.source,
		Timestamp: p.now().UTC(),
		Data:      data,
	}
	if err := p.pub.PublishJSON(topic, env); err != nil {
		p.logger.Warn("failed to publish event", "topic", topic, "error", err)
		return
	}
	p.logger.Debug("event published", "topic", topic)
}
